package lint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/filter"
	"github.com/yaklabco/gramlint/pkg/fix"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/metrics"
	"github.com/yaklabco/gramlint/pkg/source"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// ErrClassifyFailure indicates content that could not be split into tokens.
var ErrClassifyFailure = errors.New("classification failure")

// FileResult contains the results of checking a single file.
type FileResult struct {
	Snapshot *source.Snapshot

	// Language is the language id the file was classified as.
	Language string

	Tokens []token.Token

	// Typos are the reported typos, after filtering.
	Typos []typo.Typo

	// Suppressed counts typos dropped by the filter.
	Suppressed int

	// SkippedFragments lists fragments a malformed rule kept from the engine.
	SkippedFragments []grammar.FragmentError

	Diagnostics []Diagnostic

	// Edits are validated, sorted and non-overlapping.
	Edits []fix.TextEdit

	// SkippedEdits overlapped an earlier edit.
	SkippedEdits []fix.TextEdit

	// EditConflicts is true if any edits were skipped.
	EditConflicts bool
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes returns true if any fixes are available.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// FixableCount returns the number of diagnostics with fixes.
func (fr *FileResult) FixableCount() int {
	count := 0
	for i := range fr.Diagnostics {
		if fr.Diagnostics[i].HasFix() {
			count++
		}
	}
	return count
}

// Engine checks single files.
type Engine struct {
	// Classifiers chooses the classifier for each file.
	Classifiers *classify.Registry

	Checker *grammar.Checker

	// Words are accepted by the spelling filter, e.g. from the user dictionary.
	Words []string

	// Metrics is optional.
	Metrics *metrics.Collector

	Logger *log.Logger

	closers []func() error
}

// NewEngine creates an Engine from a classifier registry and a checker.
func NewEngine(classifiers *classify.Registry, checker *grammar.Checker) *Engine {
	return &Engine{
		Classifiers: classifiers,
		Checker:     checker,
		Logger:      logging.Default(),
	}
}

// Close releases resources opened by Setup, such as the result cache.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Classify tokenizes content with the classifier chosen for path and
// verifies that the tokens tile the content.
func (e *Engine) Classify(ctx context.Context, path string, content []byte) (*classify.Result, error) {
	classifier := e.Classifiers.ForPath(path, content)

	res, err := classifier.Classify(ctx, content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", grammar.ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrClassifyFailure, classifier.Name(), err)
	}
	if err := token.Validate(res.Tokens, len(content)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrClassifyFailure, classifier.Name(), err)
	}
	if res.Language == "" {
		res.Language = e.Classifiers.Language(path, content)
	}
	return res, nil
}

// LintFile classifies, checks and filters one file.
func (e *Engine) LintFile(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*FileResult, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	ctx = logging.WithFields(ctx, logging.FieldPath, path)
	logger := logging.FromContext(ctx, e.Logger)
	started := time.Now()

	classified, err := e.Classify(ctx, path, content)
	if err != nil {
		return nil, err
	}

	checked, err := e.Checker.Check(ctx, classified.Tokens)
	if err != nil {
		return nil, err
	}

	table, err := e.suppressions(cfg)
	if err != nil {
		return nil, err
	}
	predicates := []filter.Predicate{
		filter.KnownWords(e.Words),
		filter.DisabledRules(cfg.DisabledRules...),
		filter.DisabledCategories(cfg.DisabledCategoryList()...),
	}
	kept := filter.Filter(checked.Typos, classified.Spans, table, predicates...)

	result := &FileResult{
		Snapshot:         source.New(path, content),
		Language:         classified.Language,
		Tokens:           classified.Tokens,
		Typos:            kept,
		Suppressed:       len(checked.Typos) - len(kept),
		SkippedFragments: checked.Skipped,
	}

	var edits []fix.TextEdit
	for _, t := range kept {
		diag := NewDiagnostic(result.Snapshot, t).
			WithSeverity(cfg.SeverityFor(t.Info.Category)).
			WithFix().
			Build()
		edits = append(edits, diag.FixEdits...)
		result.Diagnostics = append(result.Diagnostics, diag)
	}

	if len(edits) > 0 {
		accepted, skipped, err := fix.Prepare(edits, len(content))
		if err != nil {
			// Typo ranges are clamped to the content, so this means a bug
			// upstream. Report the typos but apply nothing.
			logger.Warn("discarding invalid edits", logging.FieldError, err)
			result.EditConflicts = true
		} else {
			result.Edits = accepted
			result.SkippedEdits = skipped
			result.EditConflicts = len(skipped) > 0
		}
	}

	if e.Metrics != nil {
		e.Metrics.RecordFile(result.Language, kept, result.Suppressed)
	}

	logger.Debug("checked file",
		logging.FieldLanguage, result.Language,
		logging.FieldTokens, len(result.Tokens),
		logging.FieldTyposTotal, len(kept),
		logging.FieldTyposSuppressed, result.Suppressed,
		logging.FieldElapsed, time.Since(started))

	return result, nil
}

// suppressions builds the context table for cfg. NoContext disables it.
func (e *Engine) suppressions(cfg *config.Config) (filter.SuppressionTable, error) {
	if cfg.NoContext {
		return nil, nil
	}
	table := filter.DefaultSuppressions()
	if len(cfg.Suppressions) == 0 {
		return table, nil
	}
	custom, err := filter.ParseSuppressions(cfg.Suppressions)
	if err != nil {
		return nil, fmt.Errorf("suppressions: %w", err)
	}
	return table.Merge(custom), nil
}
