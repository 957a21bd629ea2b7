package analysis

import "time"

// Report holds the precomputed views of a run.
type Report struct {
	Diagnostics []DiagnosticEntry `json:"diagnostics"`

	ByFile     []Group `json:"byFile,omitempty"`
	ByRule     []Group `json:"byRule,omitempty"`
	ByCategory []Group `json:"byCategory,omitempty"`

	Totals Totals `json:"summary"`

	// Errors lists files that could not be checked.
	Errors []FileError `json:"errors,omitempty"`

	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticEntry is one diagnostic in serializable form.
type DiagnosticEntry struct {
	FilePath    string     `json:"filePath"`
	RuleID      string     `json:"ruleId"`
	Category    string     `json:"category"`
	Severity    string     `json:"severity"`
	Message     string     `json:"message"`
	Text        string     `json:"text"`
	StartLine   int        `json:"startLine"`
	StartColumn int        `json:"startColumn"`
	EndLine     int        `json:"endLine"`
	EndColumn   int        `json:"endColumn"`
	StartOffset int        `json:"startOffset"`
	EndOffset   int        `json:"endOffset"`
	Suggestions []string   `json:"suggestions,omitempty"`
	Fixable     bool       `json:"fixable"`
	Fixes       []FixEntry `json:"fixes,omitempty"`
}

// FixEntry is a text edit in serializable form.
type FixEntry struct {
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	NewText     string `json:"newText"`
}

// FileError records a file that failed.
type FileError struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Totals aggregates the whole run.
type Totals struct {
	Files           int `json:"filesChecked"`
	FilesWithIssues int `json:"filesWithIssues"`
	FilesFailed     int `json:"filesFailed"`
	FilesModified   int `json:"filesModified"`
	Issues          int `json:"totalIssues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
	Fixable         int `json:"fixable"`
	Suppressed      int `json:"suppressed"`
}

// HasIssues reports whether any diagnostic was found.
func (t Totals) HasIssues() bool {
	return t.Issues > 0
}

// HasErrors reports whether any error-severity diagnostic was found.
func (t Totals) HasErrors() bool {
	return t.Errors > 0
}

// Group aggregates the diagnostics sharing a key: a file path, a rule id
// or a category.
type Group struct {
	Key      string `json:"key"`
	Issues   int    `json:"issues"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Infos    int    `json:"infos"`
	Fixable  int    `json:"fixable"`

	// Related lists the other dimension, sorted: the rules seen in a file,
	// or the files a rule or category was seen in.
	Related []string `json:"related,omitempty"`
}
