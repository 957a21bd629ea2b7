// Package analysis turns a runner result into the aggregated views shared
// by the JSON and summary outputs.
package analysis

// SortField orders the grouped views.
type SortField string

const (
	// SortByCount orders by issue count.
	SortByCount SortField = "count"
	// SortByAlpha orders by key, always ascending.
	SortByAlpha SortField = "alpha"
	// SortBySeverity puts groups with errors first, then warnings.
	SortBySeverity SortField = "severity"
)

// IsValid reports whether s is a known sort field.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortBySeverity:
		return true
	default:
		return false
	}
}

// Options selects what Analyze computes.
type Options struct {
	IncludeDiagnostics bool
	IncludeByFile      bool
	IncludeByRule      bool
	IncludeByCategory  bool

	SortBy SortField

	// SortDesc applies to SortByCount.
	SortDesc bool

	// WorkingDir makes paths relative. Empty keeps them as they are.
	WorkingDir string
}

// DefaultOptions computes every view, largest groups first.
func DefaultOptions() Options {
	return Options{
		IncludeDiagnostics: true,
		IncludeByFile:      true,
		IncludeByRule:      true,
		IncludeByCategory:  true,
		SortBy:             SortByCount,
		SortDesc:           true,
	}
}
