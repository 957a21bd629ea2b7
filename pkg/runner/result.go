package runner

import (
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/lint"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// FileOutcome is the result for one file.
type FileOutcome struct {
	Path string

	// Result is nil when Error is set.
	Result *lint.PipelineResult

	Error error
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int

	// FilesSkipped counts files whose fixes were not written, e.g. because
	// they changed on disk during the run.
	FilesSkipped int

	FilesErrored    int
	FilesWithIssues int
	FilesModified   int

	DiagnosticsTotal   int
	DiagnosticsFixable int

	// DiagnosticsFixed counts edits applied over all passes.
	DiagnosticsFixed int

	DiagnosticsBySeverity map[config.Severity]int
	DiagnosticsByCategory map[typo.Category]int

	// TyposSuppressed counts typos dropped by context or user filters.
	TyposSuppressed int

	// FragmentsSkipped counts fragments a malformed rule kept from the engine.
	FragmentsSkipped int
}

// Result is the outcome of a run.
type Result struct {
	// Files are sorted by path.
	Files []FileOutcome

	Stats Stats
}

// HasFailures reports whether any error-severity diagnostic was found.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[config.SeverityError] > 0
}

// HasIssues reports whether any diagnostic was found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// HasErrors reports whether any file could not be processed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[config.Severity]int),
		DiagnosticsByCategory: make(map[typo.Category]int),
	}
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	pr := outcome.Result
	if pr == nil {
		return
	}

	r.Stats.FilesProcessed++
	if pr.Skipped {
		r.Stats.FilesSkipped++
	}
	if pr.Written {
		r.Stats.FilesModified++
	}
	r.Stats.DiagnosticsFixed += pr.TotalEditsApplied

	if pr.FileResult == nil {
		return
	}

	r.Stats.DiagnosticsTotal += pr.IssueCount()
	r.Stats.DiagnosticsFixable += pr.FixableCount()
	r.Stats.TyposSuppressed += pr.Suppressed
	r.Stats.FragmentsSkipped += len(pr.SkippedFragments)
	if pr.HasIssues() {
		r.Stats.FilesWithIssues++
	}

	for _, diag := range pr.Diagnostics {
		severity := diag.Severity
		if severity == "" {
			severity = config.SeverityWarning
		}
		r.Stats.DiagnosticsBySeverity[severity]++
		r.Stats.DiagnosticsByCategory[diag.Category]++
	}
}
