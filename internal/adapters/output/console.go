// Package output holds the run reporters: a styled console summary, a
// JSON/YAML report file and Prometheus textfile metrics.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
	"github.com/mrinfinityjs/pyrewall/pkg/sanitize"
)

var (
	colorPrimary = lipgloss.Color("#00ff41")
	colorAmber   = lipgloss.Color("#ffb000")
	colorRed     = lipgloss.Color("#ff3333")
	colorCyan    = lipgloss.Color("#00b8ff")
	colorMuted   = lipgloss.Color("#707070")
	colorBorder  = lipgloss.Color("#1a3a1a")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(18)
	valueStyle = lipgloss.NewStyle().Bold(true)

	outcomeStyles = map[domain.ActionOutcome]lipgloss.Style{
		domain.OutcomeDispatched: lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		domain.OutcomeSimulated:  lipgloss.NewStyle().Foreground(colorCyan),
		domain.OutcomeFailed:     lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		domain.OutcomeSkipped:    lipgloss.NewStyle().Foreground(colorAmber),
	}
)

// ConsoleReporter prints a human-readable run summary.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Report(summary domain.ScanSummary) error {
	_, err := io.WriteString(r.w, RenderSummary(summary)+"\n")
	return err
}

// RenderSummary formats the summary block followed by one row per action.
func RenderSummary(s domain.ScanSummary) string {
	title := "pyrewall scan"
	if s.DryRun {
		title += " (dry run)"
	}

	stats := []string{
		row("source", sanitize.Field(s.Source, sanitize.DefaultMaxLength)),
		row("filter", s.Filter),
		row("rule", fmt.Sprintf("%d hits within %s", s.Threshold, s.Window)),
		row("lines scanned", fmt.Sprint(s.LinesScanned)),
		row("lines matched", fmt.Sprint(s.LinesMatched)),
		row("addresses", fmt.Sprint(s.UniqueAddresses)),
		row("violations", fmt.Sprint(s.Violations)),
		row("elapsed", s.Duration().Round(time.Millisecond).String()),
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteByte('\n')
	b.WriteString(boxStyle.Render(strings.Join(stats, "\n")))

	if len(s.Results) == 0 {
		return b.String()
	}

	b.WriteByte('\n')
	for _, res := range s.Results {
		b.WriteByte('\n')
		b.WriteString(actionLine(res))
	}
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func actionLine(r domain.ActionResult) string {
	style, ok := outcomeStyles[r.Outcome]
	if !ok {
		style = lipgloss.NewStyle()
	}

	line := fmt.Sprintf("%-10s %-39s %-16s hits=%d from %s",
		style.Render(string(r.Outcome)),
		sanitize.Address(r.Violation.Address),
		r.Action.SetName,
		r.Violation.HitCount,
		r.Violation.WindowStart.Format(time.Stamp),
	)
	if r.Reason != "" {
		line += lipgloss.NewStyle().Foreground(colorMuted).Render("  " + sanitize.Field(r.Reason, sanitize.DefaultMaxLength))
	}
	return line
}
