package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/gramlint/internal/ui/pretty"
	"github.com/yaklabco/gramlint/pkg/analysis"
)

const (
	tableWidth   = 90
	keyColWidth  = 58
	numColWidth  = 9
	maxKeyLength = 56
)

// padRight pads to a display width. Call it before applying styles.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// padLeft pads to a display width. Call it before applying styles.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// SummaryRenderer formats results as aggregated tables: by category, by
// rule and by file.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if report.Totals.Issues == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("No issues found"))
		return nil
	}

	r.renderTable("Categories", "Category", report.ByCategory, false)
	r.renderTable("Rules", "Rule", report.ByRule, false)
	r.renderTable("Files", "File", report.ByFile, true)
	r.renderTotals(report.Totals)

	return nil
}

func (r *SummaryRenderer) renderTable(title, keyHeader string, groups []analysis.Group, trimLeft bool) {
	if len(groups) == 0 {
		return
	}

	separator := r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth))

	fmt.Fprintln(r.out, r.styles.Bold.Render(title))
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "%s %s %s %s %s\n",
		r.styles.TableHeader.Render(padRight(keyHeader, keyColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Warnings", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Fixable", numColWidth)),
	)
	fmt.Fprintln(r.out, separator)

	for _, group := range groups {
		key := truncateKey(group.Key, trimLeft)

		padded := padRight(key, keyColWidth)
		switch {
		case group.Errors > 0:
			padded = r.styles.TableErrorRow.Render(padded)
		case group.Warnings > 0:
			padded = r.styles.TableWarnRow.Render(padded)
		}

		fmt.Fprintf(r.out, "%s %s %s %s %s\n",
			padded,
			padLeft(strconv.Itoa(group.Issues), numColWidth),
			padLeft(strconv.Itoa(group.Errors), numColWidth),
			padLeft(strconv.Itoa(group.Warnings), numColWidth),
			padLeft(strconv.Itoa(group.Fixable), numColWidth),
		)
	}
	fmt.Fprintln(r.out)
}

// truncateKey shortens long keys. Paths keep their tail.
func truncateKey(key string, trimLeft bool) string {
	if runewidth.StringWidth(key) <= maxKeyLength {
		return key
	}
	if !trimLeft {
		return runewidth.Truncate(key, maxKeyLength, "…")
	}
	runes := []rune(key)
	for runewidth.StringWidth(string(runes)) > maxKeyLength-1 {
		runes = runes[1:]
	}
	return "…" + string(runes)
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	issues := fmt.Sprintf("%d %s", totals.Issues, plural(totals.Issues, "issue", "issues"))

	var severities []string
	if totals.Errors > 0 {
		severities = append(severities, r.styles.Error.Render(
			fmt.Sprintf("%d %s", totals.Errors, plural(totals.Errors, "error", "errors"))))
	}
	if totals.Warnings > 0 {
		severities = append(severities, r.styles.Warning.Render(
			fmt.Sprintf("%d %s", totals.Warnings, plural(totals.Warnings, "warning", "warnings"))))
	}
	if totals.Infos > 0 {
		severities = append(severities, r.styles.Info.Render(fmt.Sprintf("%d info", totals.Infos)))
	}
	if len(severities) > 0 {
		issues += " (" + strings.Join(severities, ", ") + ")"
	}

	line := fmt.Sprintf("%s in %d %s", issues, totals.FilesWithIssues, plural(totals.FilesWithIssues, "file", "files"))
	if totals.Fixable > 0 {
		line += fmt.Sprintf(", %d fixable", totals.Fixable)
	}
	if totals.Suppressed > 0 {
		line += fmt.Sprintf(", %d suppressed", totals.Suppressed)
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+line)
}
