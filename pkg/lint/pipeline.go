package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/fix"
	"github.com/yaklabco/gramlint/pkg/fsutil"
	"github.com/yaklabco/gramlint/pkg/grammar"
)

// DefaultMaxFixPasses bounds the fix loop. Later passes pick up edits that
// overlapped an earlier one and typos uncovered by a previous fix.
const DefaultMaxFixPasses = 10

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult contains the result of processing a single file.
type PipelineResult struct {
	// FileResult is the check result of the final pass.
	*FileResult

	Path string

	// OriginalInfo is the file state before processing. Nil for in-memory content.
	OriginalInfo *fsutil.FileInfo

	// Modified is true if fixes changed the content.
	Modified bool

	// ModifiedContent is the fixed content, nil if not modified.
	ModifiedContent []byte

	// Diff is set in dry-run mode.
	Diff *fix.Diff

	// Skipped is true if fixes were not written.
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	BackupCreated bool

	// Written is true if the file was written to disk.
	Written bool

	// FixPasses is the number of passes that applied edits.
	FixPasses int

	// TotalEditsApplied counts edits over all passes.
	TotalEditsApplied int
}

// Summary returns a human-readable summary of the pipeline result.
func (pr *PipelineResult) Summary() string {
	switch {
	case pr.Skipped:
		return "skipped: " + pr.SkipReason
	case pr.Written && pr.BackupCreated:
		return "fixed (backup created)"
	case pr.Written:
		return "fixed"
	case pr.Modified:
		return "changes pending"
	case pr.FileResult != nil && pr.HasIssues():
		return "issues found"
	default:
		return "ok"
	}
}

// PipelineOptions controls pipeline behavior.
type PipelineOptions struct {
	// Fix applies the first suggestion of each fixable typo.
	Fix bool

	// DryRun generates diffs without writing files.
	DryRun bool

	Backup fsutil.BackupConfig

	// StrictRaceDetection re-hashes the file before writing. When false,
	// only mod time and size are compared.
	StrictRaceDetection bool

	// ReclassifyAfterFix classifies the fixed content again and skips the
	// write if it no longer tiles.
	ReclassifyAfterFix bool

	// MaxFixPasses of 0 means DefaultMaxFixPasses.
	MaxFixPasses int
}

// DefaultPipelineOptions returns check-only options with backups on.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Backup:              fsutil.DefaultBackupConfig(),
		StrictRaceDetection: true,
		ReclassifyAfterFix:  true,
	}
}

// Pipeline runs the engine over a file and optionally writes fixes.
type Pipeline struct {
	Engine *Engine
}

// NewPipeline creates a pipeline around engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// ProcessFile checks path and, in fix mode, writes the fixed content.
//
// The steps are:
//  1. Read and hash the file.
//  2. Check and fix in memory until no edits remain or MaxFixPasses is hit.
//  3. Optionally reclassify the fixed content.
//  4. In dry-run mode, return a diff.
//  5. Skip the write if the file changed on disk meanwhile.
//  6. Back up the original, then write atomically.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	path string,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	original, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.ProcessContent(ctx, path, original, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.OriginalInfo = info

	if !result.Modified || result.Skipped || opts.DryRun {
		return result, nil
	}

	modified, err := p.checkModified(ctx, info, opts.StrictRaceDetection)
	if err != nil {
		return nil, err
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, result.ModifiedContent, info.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	logging.FromContext(ctx, p.Engine.Logger).Debug("wrote fixes",
		logging.FieldPath, path,
		"passes", result.FixPasses,
		"edits", result.TotalEditsApplied)

	return result, nil
}

// ProcessContent checks and fixes in-memory content without touching disk.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	original []byte,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{Path: path}

	maxPasses := opts.MaxFixPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxFixPasses
	}

	content := original
	var fileResult *FileResult

	for range maxPasses {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", grammar.ErrCancelled, err)
		}

		var err error
		fileResult, err = p.Engine.LintFile(ctx, path, content, cfg)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", path, err)
		}

		if !opts.Fix || len(fileResult.Edits) == 0 {
			break
		}

		content = fix.ApplyEdits(content, fileResult.Edits)
		result.FixPasses++
		result.TotalEditsApplied += len(fileResult.Edits)
		result.Modified = true
	}

	result.FileResult = fileResult
	if !result.Modified {
		return result, nil
	}
	result.ModifiedContent = content

	if opts.ReclassifyAfterFix {
		if _, err := p.Engine.Classify(ctx, path, content); err != nil {
			result.Skipped = true
			result.SkipReason = fmt.Sprintf("fixed content failed to classify: %v", err)
			result.Modified = false
			result.ModifiedContent = nil
			return result, nil
		}
	}

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, original, content)
	}

	return result, nil
}

func (p *Pipeline) checkModified(ctx context.Context, info *fsutil.FileInfo, strict bool) (bool, error) {
	check := fsutil.CheckModifiedQuick
	if strict {
		check = fsutil.CheckModified
	}
	modified, err := check(ctx, info)
	if err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}
	return modified, nil
}

// categorizeError wraps read errors with the pipeline error types.
func categorizeError(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrClassifyFailure) ||
		errors.Is(err, ErrWriteFailure)
}

// BackupConfigFromConfig creates an fsutil.BackupConfig from config.Config.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	if cfg == nil {
		return fsutil.DefaultBackupConfig()
	}
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups && cfg.Backups.Mode != string(fsutil.BackupModeNone),
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// PipelineOptionsFromConfig creates PipelineOptions from config.Config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	opts := DefaultPipelineOptions()
	if cfg == nil {
		return opts
	}
	opts.Fix = cfg.Fix || cfg.DryRun
	opts.DryRun = cfg.DryRun
	opts.Backup = BackupConfigFromConfig(cfg)
	return opts
}
