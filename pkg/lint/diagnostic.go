// Package lint checks whole files: it classifies content, runs the grammar
// checker, filters the typos and converts them to diagnostics. The
// pipeline adds fixing, dry-run diffs and safe writes on top.
package lint

import (
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/fix"
	"github.com/yaklabco/gramlint/pkg/source"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// Diagnostic is a typo placed in a file, ready for reporting.
type Diagnostic struct {
	// RuleID is the engine rule that fired, e.g. "EN_A_VS_AN".
	RuleID string

	Category typo.Category

	// Message is the engine's description of the problem.
	Message string

	Severity config.Severity

	FilePath string

	// StartLine and StartColumn are 1-based. Columns count bytes.
	StartLine   int
	StartColumn int

	// EndLine and EndColumn point just past the last byte.
	EndLine   int
	EndColumn int

	// Offset is the byte range in the file.
	Offset span.Range

	// Text is the source text the typo covers.
	Text string

	// Suggestions are replacement candidates, best first.
	Suggestions []string

	// FixEdits apply the first suggestion. Empty when there is none.
	FixEdits []fix.TextEdit
}

// HasFix reports whether the diagnostic can be fixed automatically.
func (d *Diagnostic) HasFix() bool {
	return len(d.FixEdits) > 0
}

// Suggestion returns the first suggestion, or "".
func (d *Diagnostic) Suggestion() string {
	if len(d.Suggestions) == 0 {
		return ""
	}
	return d.Suggestions[0]
}

// DiagnosticBuilder constructs a Diagnostic from a typo.
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnostic starts a diagnostic for t, positioned in snap.
func NewDiagnostic(snap *source.Snapshot, t typo.Typo) *DiagnosticBuilder {
	start, end := snap.Span(t.Location.Absolute)
	return &DiagnosticBuilder{
		diag: Diagnostic{
			RuleID:      t.Info.RuleID,
			Category:    t.Info.Category,
			Message:     t.Info.Message,
			FilePath:    snap.Path,
			StartLine:   start.Line,
			StartColumn: start.Column,
			EndLine:     end.Line,
			EndColumn:   end.Column,
			Offset:      t.Location.Absolute,
			Text:        t.Text,
			Suggestions: append([]string(nil), t.Suggestions...),
		},
	}
}

// WithSeverity sets the severity.
func (b *DiagnosticBuilder) WithSeverity(s config.Severity) *DiagnosticBuilder {
	b.diag.Severity = s
	return b
}

// WithFix attaches the edit that applies the first suggestion, if any.
func (b *DiagnosticBuilder) WithFix() *DiagnosticBuilder {
	t := typo.Typo{
		Location:    typo.Location{Absolute: b.diag.Offset},
		Info:        typo.Info{RuleID: b.diag.RuleID},
		Suggestions: b.diag.Suggestions,
		Text:        b.diag.Text,
	}
	if e, ok := fix.ForTypo(t); ok {
		b.diag.FixEdits = append(b.diag.FixEdits, e)
	}
	return b
}

// Build returns the constructed Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag
}
