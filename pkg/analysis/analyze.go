package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/lint"
	"github.com/yaklabco/gramlint/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// grouper accumulates one view.
type grouper struct {
	groups  map[string]*Group
	related map[string]map[string]struct{}
}

func newGrouper() *grouper {
	return &grouper{
		groups:  make(map[string]*Group),
		related: make(map[string]map[string]struct{}),
	}
}

func (g *grouper) add(key, related string, severity config.Severity, fixable bool) {
	grp, ok := g.groups[key]
	if !ok {
		grp = &Group{Key: key}
		g.groups[key] = grp
		g.related[key] = make(map[string]struct{})
	}

	grp.Issues++
	switch severity {
	case config.SeverityError:
		grp.Errors++
	case config.SeverityInfo:
		grp.Infos++
	default:
		grp.Warnings++
	}
	if fixable {
		grp.Fixable++
	}
	g.related[key][related] = struct{}{}
}

func (g *grouper) build(opts Options) []Group {
	out := make([]Group, 0, len(g.groups))
	for key, grp := range g.groups {
		for r := range g.related[key] {
			grp.Related = append(grp.Related, r)
		}
		slices.Sort(grp.Related)
		out = append(out, *grp)
	}
	sortGroups(out, opts.SortBy, opts.SortDesc)
	return out
}

func relativePath(path, workDir string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return path
	}
	return rel
}

func newEntry(path string, severity config.Severity, diag *lint.Diagnostic) DiagnosticEntry {
	entry := DiagnosticEntry{
		FilePath:    path,
		RuleID:      diag.RuleID,
		Category:    string(diag.Category),
		Severity:    string(severity),
		Message:     diag.Message,
		Text:        diag.Text,
		StartLine:   diag.StartLine,
		StartColumn: diag.StartColumn,
		EndLine:     diag.EndLine,
		EndColumn:   diag.EndColumn,
		StartOffset: diag.Offset.Start,
		EndOffset:   diag.Offset.End,
		Suggestions: diag.Suggestions,
		Fixable:     diag.HasFix(),
	}
	for _, edit := range diag.FixEdits {
		entry.Fixes = append(entry.Fixes, FixEntry{
			StartOffset: edit.StartOffset,
			EndOffset:   edit.EndOffset,
			NewText:     edit.NewText,
		})
	}
	return entry
}

// Analyze computes the views selected by opts in one pass over result.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}
	if result == nil {
		return report
	}

	byFile, byRule, byCategory := newGrouper(), newGrouper(), newGrouper()

	for _, file := range result.Files {
		report.Totals.Files++
		path := relativePath(file.Path, opts.WorkingDir)

		if file.Error != nil {
			report.Totals.FilesFailed++
			report.Errors = append(report.Errors, FileError{FilePath: path, Message: file.Error.Error()})
			continue
		}
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}

		report.Totals.Suppressed += file.Result.Suppressed
		if file.Result.Written {
			report.Totals.FilesModified++
		}
		if file.Result.HasIssues() {
			report.Totals.FilesWithIssues++
		}

		for i := range file.Result.Diagnostics {
			diag := &file.Result.Diagnostics[i]
			severity := cmp.Or(diag.Severity, config.SeverityWarning)
			fixable := diag.HasFix()

			report.Totals.Issues++
			switch severity {
			case config.SeverityError:
				report.Totals.Errors++
			case config.SeverityInfo:
				report.Totals.Infos++
			default:
				report.Totals.Warnings++
			}
			if fixable {
				report.Totals.Fixable++
			}

			byFile.add(path, diag.RuleID, severity, fixable)
			byRule.add(diag.RuleID, path, severity, fixable)
			byCategory.add(string(diag.Category), path, severity, fixable)

			if opts.IncludeDiagnostics {
				report.Diagnostics = append(report.Diagnostics, newEntry(path, severity, diag))
			}
		}
	}

	if opts.IncludeByFile {
		report.ByFile = byFile.build(opts)
	}
	if opts.IncludeByRule {
		report.ByRule = byRule.build(opts)
	}
	if opts.IncludeByCategory {
		report.ByCategory = byCategory.build(opts)
	}

	return report
}

func sortGroups(groups []Group, sortBy SortField, desc bool) {
	slices.SortFunc(groups, func(left, right Group) int {
		var result int
		switch sortBy {
		case SortByAlpha:
		case SortBySeverity:
			result = cmp.Or(
				cmp.Compare(right.Errors, left.Errors),
				cmp.Compare(right.Warnings, left.Warnings),
				cmp.Compare(right.Issues, left.Issues),
			)
		default:
			result = cmp.Compare(left.Issues, right.Issues)
			if desc {
				result = -result
			}
		}
		// Ties fall back to the key so output is stable.
		return cmp.Or(result, cmp.Compare(left.Key, right.Key))
	})
}
