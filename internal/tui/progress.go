// Package tui shows render progress as a bubbletea program.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/phaseslice/internal/console"
	"github.com/san-kum/phaseslice/internal/pipeline"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const maxLog = 8

type eventMsg pipeline.Event

type doneMsg struct{ err error }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	title    string
	total    int
	finished int
	failed   int
	running  map[int]string
	log      []string
	frame    int
	start    time.Time
	elapsed  time.Duration
	done     bool
	err      error
	cancel   context.CancelFunc
	width    int
}

func newModel(title string, total int, cancel context.CancelFunc) model {
	return model{
		title:   title,
		total:   total,
		running: make(map[int]string),
		start:   time.Now(),
		cancel:  cancel,
		width:   80,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			if m.done {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		m.elapsed = time.Since(m.start)
		return m, tick()
	case eventMsg:
		m.apply(pipeline.Event(msg))
	case doneMsg:
		m.done = true
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) apply(e pipeline.Event) {
	switch e.Kind {
	case pipeline.Started:
		m.running[e.Index] = e.Path
	case pipeline.Finished:
		delete(m.running, e.Index)
		m.finished++
		m.push(green.Render("ok  ") + white.Render(e.Output) + dim.Render(fmt.Sprintf(" %s", e.Elapsed.Round(time.Millisecond))))
	case pipeline.Failed:
		delete(m.running, e.Index)
		m.failed++
		m.push(red.Render("err ") + white.Render(e.Path) + dim.Render(": "+e.Err.Error()))
	}
}

func (m *model) push(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(console.Title.Render(m.title))
	b.WriteString("\n\n")

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.finished+m.failed) / float64(m.total)
	}
	barWidth := min(max(m.width-30, 10), 50)
	b.WriteString(console.ProgressBar(frac, barWidth))
	b.WriteString(cyan.Render(fmt.Sprintf(" %d/%d", m.finished+m.failed, m.total)))
	if m.failed > 0 {
		b.WriteString(red.Render(fmt.Sprintf("  %d failed", m.failed)))
	}
	b.WriteString(dim.Render(fmt.Sprintf("  %s", m.elapsed.Round(100*time.Millisecond))))
	b.WriteString("\n\n")

	idx := make([]int, 0, len(m.running))
	for i := range m.running {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		b.WriteString(console.StatusRunning.Render(console.Spinner(m.frame)) + " " + white.Render(m.running[i]) + "\n")
	}
	for _, line := range m.log {
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(dim.Render("done"))
	} else {
		b.WriteString(console.KeyHint.Render("q: cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// Run drives work while showing progress for total snapshots. work receives
// a context canceled by the user and the observer to register on the
// pipeline.
func Run(ctx context.Context, title string, total int, work func(ctx context.Context, obs pipeline.Observer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, total, cancel))
	obs := pipeline.ObserverFunc(func(e pipeline.Event) {
		p.Send(eventMsg(e))
	})

	errc := make(chan error, 1)
	go func() {
		err := work(ctx, obs)
		errc <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("tui: %w", err)
	}
	return <-errc
}
