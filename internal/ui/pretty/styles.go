// Package pretty renders diagnostics and run summaries for terminals.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by IsColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the lipgloss styles used by the text and summary output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	FilePath   lipgloss.Style
	Location   lipgloss.Style
	RuleID     lipgloss.Style
	Category   lipgloss.Style
	Message    lipgloss.Style
	Suggestion lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return plainStyles()
	}

	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	red, yellow, blue, green, grey := "9", "11", "12", "10", "8"

	return &Styles{
		Error:   fg(red).Bold(true),
		Warning: fg(yellow).Bold(true),
		Info:    fg(blue).Bold(true),

		FilePath:   lipgloss.NewStyle().Bold(true),
		Location:   fg(grey),
		RuleID:     fg(grey),
		Category:   fg("13"),
		Message:    lipgloss.NewStyle(),
		Suggestion: fg(green).Italic(true),
		SourceLine: fg("7"),
		Caret:      fg(red).Bold(true),

		DiffHeader:  lipgloss.NewStyle().Bold(true),
		DiffHunk:    fg("14"),
		DiffAdd:     fg(green),
		DiffRemove:  fg(red),
		DiffContext: fg(grey),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		SummaryValue: lipgloss.NewStyle(),
		Success:      fg(green).Bold(true),
		Failure:      fg(red).Bold(true),

		TableHeader:    fg("7").Bold(true),
		TableSeparator: fg(grey),
		TableErrorRow:  fg(red),
		TableWarnRow:   fg(yellow),

		Dim:  fg(grey),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

func plainStyles() *Styles {
	p := lipgloss.NewStyle()
	return &Styles{
		Error: p, Warning: p, Info: p,
		FilePath: p, Location: p, RuleID: p, Category: p, Message: p,
		Suggestion: p, SourceLine: p, Caret: p,
		DiffHeader: p, DiffHunk: p, DiffAdd: p, DiffRemove: p, DiffContext: p,
		SummaryTitle: p, SummaryValue: p, Success: p, Failure: p,
		TableHeader: p, TableSeparator: p, TableErrorRow: p, TableWarnRow: p,
		Dim: p, Bold: p,
	}
}

// IsColorEnabled resolves a color mode for writer. In auto mode color is
// on only for terminals, and NO_COLOR turns it off.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
