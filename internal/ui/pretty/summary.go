package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/runner"
	"github.com/yaklabco/gramlint/pkg/typo"
)

const summaryDividerWidth = 40

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line, e.g.
// "5 issues (2 errors, 3 warnings) in 2 files, 4 fixable".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	fixed := ""
	if stats.DiagnosticsFixed > 0 {
		fixed = s.Success.Render(fmt.Sprintf("%d fixed in %d %s",
			stats.DiagnosticsFixed, stats.FilesModified, plural(stats.FilesModified, "file", "files")))
	}

	if stats.DiagnosticsTotal == 0 {
		msg := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, "file", "files")))
		if fixed != "" {
			msg += ", " + fixed
		}
		return msg + "\n"
	}

	head := fmt.Sprintf("%d %s", stats.DiagnosticsTotal, plural(stats.DiagnosticsTotal, "issue", "issues"))
	if breakdown := s.severityBreakdown(stats.DiagnosticsBySeverity); breakdown != "" {
		head += " (" + breakdown + ")"
	}

	parts := []string{head, fmt.Sprintf("in %d %s", stats.FilesWithIssues, plural(stats.FilesWithIssues, "file", "files"))}
	if stats.DiagnosticsFixable > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d fixable", stats.DiagnosticsFixable)))
	}
	if fixed != "" {
		parts = append(parts, fixed)
	}

	// The first two parts read as one phrase.
	return parts[0] + " " + strings.Join(parts[1:], ", ") + "\n"
}

func (s *Styles) severityBreakdown(counts map[config.Severity]int) string {
	var parts []string
	if n := counts[config.SeverityError]; n > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", n, plural(n, "error", "errors"))))
	}
	if n := counts[config.SeverityWarning]; n > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", n, plural(n, "warning", "warnings"))))
	}
	if n := counts[config.SeverityInfo]; n > 0 {
		parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", n)))
	}
	return strings.Join(parts, ", ")
}

// FormatSummary formats run statistics as a block with a per-category
// breakdown.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var b strings.Builder

	row := func(label string, value string) {
		fmt.Fprintf(&b, "  %-19s%s\n", label+":", value)
	}

	b.WriteString("\n" + s.SummaryTitle.Render("Summary") + "\n")
	b.WriteString(strings.Repeat("-", summaryDividerWidth) + "\n")

	row("Files checked", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesWithIssues > 0 {
		row("Files with issues", s.Failure.Render(strconv.Itoa(stats.FilesWithIssues)))
	}
	if stats.FilesModified > 0 {
		row("Files modified", s.Success.Render(strconv.Itoa(stats.FilesModified)))
	}
	if stats.FilesErrored > 0 {
		row("Files failed", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}
	b.WriteString("\n")

	row("Total issues", s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)))
	for _, cat := range sortedCategories(stats.DiagnosticsByCategory) {
		row("  "+string(cat), s.Category.Render(strconv.Itoa(stats.DiagnosticsByCategory[cat])))
	}
	if stats.TyposSuppressed > 0 {
		row("Suppressed", s.Dim.Render(strconv.Itoa(stats.TyposSuppressed)))
	}
	if stats.FragmentsSkipped > 0 {
		row("Skipped fragments", s.Warning.Render(strconv.Itoa(stats.FragmentsSkipped)))
	}
	b.WriteString("\n")

	switch {
	case stats.DiagnosticsBySeverity[config.SeverityError] > 0:
		b.WriteString(s.Failure.Render("Check failed with errors"))
	case stats.DiagnosticsTotal > 0:
		b.WriteString(s.Warning.Render("Check completed with warnings"))
	default:
		b.WriteString(s.Success.Render("Check passed"))
	}
	b.WriteString("\n")

	return b.String()
}

// sortedCategories orders categories by count, then name.
func sortedCategories(counts map[typo.Category]int) []typo.Category {
	out := make([]typo.Category, 0, len(counts))
	for cat, n := range counts {
		if n > 0 {
			out = append(out, cat)
		}
	}
	slices.SortFunc(out, func(a, b typo.Category) int {
		if d := counts[b] - counts[a]; d != 0 {
			return d
		}
		return strings.Compare(string(a), string(b))
	})
	return out
}
