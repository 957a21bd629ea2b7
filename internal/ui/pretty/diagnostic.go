package pretty

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/lint"
)

// maxSuggestions limits the alternatives printed under a diagnostic.
const maxSuggestions = 3

const contextIndent = "        "

// FormatDiagnostic renders one diagnostic:
//
//	path:line:col  severity  message  (RULE_ID, CATEGORY)
//	        source line
//	        ^^^^
//	    Suggestion: a, b
//
// sourceLine is the full line the typo starts on. It is only printed when
// showContext is set.
func (s *Styles) FormatDiagnostic(diag *lint.Diagnostic, showContext bool, sourceLine string) string {
	var b strings.Builder

	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(diag.FilePath), diag.StartLine, diag.StartColumn)
	tag := s.RuleID.Render("("+diag.RuleID) + s.RuleID.Render(", ") + s.Category.Render(string(diag.Category)) + s.RuleID.Render(")")

	fmt.Fprintf(&b, "  %s  %s  %s  %s\n", location, s.FormatSeverity(diag.Severity), s.Message.Render(diag.Message), tag)

	if showContext && sourceLine != "" {
		width := 1
		if diag.EndLine == diag.StartLine && diag.EndColumn > diag.StartColumn {
			end := min(diag.EndColumn-1, len(sourceLine))
			start := min(diag.StartColumn-1, end)
			width = max(1, runewidth.StringWidth(sourceLine[start:end]))
		}
		b.WriteString(s.FormatSourceContext(sourceLine, diag.StartColumn, width))
	}

	if len(diag.Suggestions) > 0 {
		shown := diag.Suggestions[:min(len(diag.Suggestions), maxSuggestions)]
		b.WriteString("    " + s.Dim.Render("Suggestion:") + " " + s.Suggestion.Render(strings.Join(shown, ", ")) + "\n")
	}

	return b.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render("error")
	case config.SeverityWarning:
		return s.Warning.Render("warning")
	case config.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext prints line and a caret run under it. column is the
// 1-based byte column of the typo and width its display width. Tabs are
// expanded to single spaces so the caret lines up.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	line = strings.ReplaceAll(strings.TrimRight(line, "\r\n"), "\t", " ")

	var b strings.Builder
	b.WriteString(contextIndent + s.SourceLine.Render(line) + "\n")

	if column < 1 {
		return b.String()
	}
	prefix := line[:min(column-1, len(line))]
	pad := runewidth.StringWidth(prefix)
	b.WriteString(contextIndent + strings.Repeat(" ", pad) + s.Caret.Render(strings.Repeat("^", max(width, 1))) + "\n")

	return b.String()
}

// FormatFileHeader formats the header of a file's diagnostics.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch issueCount {
	case 0:
	case 1:
		header += s.Dim.Render(" (1 issue)")
	default:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
