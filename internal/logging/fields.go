// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Check fields.
	FieldLanguage   = "language"
	FieldClassifier = "classifier"
	FieldFragment   = "fragment"
	FieldRange      = "range"
	FieldRule       = "rule"
	FieldCategory   = "category"
	FieldEngine     = "engine"
	FieldElapsed    = "elapsed"
	FieldTokens     = "tokens"

	// Options.
	FieldFlavor = "flavor"
	FieldFix    = "fix"
	FieldDryRun = "dry_run"
	FieldJobs   = "jobs"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesWithIssues = "files_with_issues"
	FieldTyposTotal      = "typos_total"
	FieldTyposSuppressed = "typos_suppressed"
	FieldFilesModified   = "files_modified"

	// Cache and dictionary fields.
	FieldCacheHits   = "cache_hits"
	FieldCacheMisses = "cache_misses"
	FieldBackend     = "backend"
	FieldWord        = "word"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
