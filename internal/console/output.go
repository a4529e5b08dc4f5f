package console

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const ruleWidth = 67

// Banner echoes the invocation before any work starts.
func Banner(w io.Writer, args []string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, GradientText("Command-line arguments:", "#00ffff", "#ff00ff"))
	fmt.Fprintln(w, Separator(ruleWidth))
	fmt.Fprintln(w, strings.Join(args, " "))
	fmt.Fprintln(w, Separator(ruleWidth))
	fmt.Fprintln(w)
}

// ScenarioHeader names a scenario and frames its description.
func ScenarioHeader(w io.Writer, name, description string, steps int) {
	fmt.Fprintf(w, "%s %s\n", Title.Render("scenario: "+name), Subtle.Render(fmt.Sprintf("(%d steps)", steps)))
	if description != "" {
		fmt.Fprintln(w, Panel.Render(description))
	}
}

type Summary struct {
	RunID     string
	Rendered  int
	Failed    int
	Elapsed   time.Duration
	OutputDir string
	Means     []float64
}

func (s Summary) Write(w io.Writer) {
	status := StatusOK.Render("done")
	if s.Failed > 0 {
		status = StatusFailed.Render(fmt.Sprintf("%d failed", s.Failed))
	}
	fmt.Fprintf(w, "%s %s %s\n", status,
		MetricLabel.Render("rendered:"), MetricValue.Render(fmt.Sprintf("%d", s.Rendered)))
	fmt.Fprintf(w, "%s %s\n", MetricLabel.Render("elapsed:"), s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "%s %s\n", MetricLabel.Render("output:"), s.OutputDir)
	if s.RunID != "" {
		fmt.Fprintf(w, "%s %s\n", MetricLabel.Render("run:"), s.RunID)
	}
	if len(s.Means) > 1 {
		fmt.Fprintf(w, "%s %s\n", MetricLabel.Render("mean:"), Sparkline(s.Means, 40))
	}
}
