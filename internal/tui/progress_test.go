package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/phaseslice/internal/pipeline"
)

func TestModel_Events(t *testing.T) {
	m := newModel("rendering", 3, nil)

	m.apply(pipeline.Event{Kind: pipeline.Started, Index: 0, Path: "../Data_000000"})
	m.apply(pipeline.Event{Kind: pipeline.Started, Index: 1, Path: "../Data_000001"})
	if len(m.running) != 2 {
		t.Fatalf("expected 2 running, got %d", len(m.running))
	}

	m.apply(pipeline.Event{Kind: pipeline.Finished, Index: 0, Output: "Data_000000_Slice_z_Phase.png", Elapsed: time.Second})
	m.apply(pipeline.Event{Kind: pipeline.Failed, Index: 1, Path: "../Data_000001", Err: errors.New("missing")})

	if m.finished != 1 || m.failed != 1 || len(m.running) != 0 {
		t.Errorf("finished=%d failed=%d running=%d", m.finished, m.failed, len(m.running))
	}

	view := m.View()
	for _, want := range []string{"rendering", "2/3", "1 failed", "Data_000000_Slice_z_Phase.png", "missing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_LogIsBounded(t *testing.T) {
	m := newModel("rendering", 20, nil)
	for i := 0; i < 20; i++ {
		m.apply(pipeline.Event{Kind: pipeline.Finished, Index: i, Output: "out.png"})
	}
	if len(m.log) != maxLog {
		t.Errorf("log has %d lines, want %d", len(m.log), maxLog)
	}
}

func TestModel_DoneQuits(t *testing.T) {
	m := newModel("rendering", 1, nil)
	next, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(model).done {
		t.Error("model not marked done")
	}
	if !strings.Contains(next.(model).View(), "done") {
		t.Error("view should report done")
	}
}
