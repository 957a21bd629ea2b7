package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/lint"
)

// Runner checks files concurrently through a lint.Pipeline.
type Runner struct {
	Pipeline *lint.Pipeline
}

// New creates a Runner.
func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files and processes them with at most opts.Jobs in flight.
//
// Per-file failures such as unreadable files are recorded in the outcome
// and the run continues. An unavailable engine or a cancelled context
// aborts the run: the error is returned together with the outcomes of the
// files that completed.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	logger := logging.FromContext(ctx, r.Pipeline.Engine.Logger)
	logger.Debug("checking files",
		logging.FieldFiles, len(files),
		logging.FieldJobs, min(jobs, len(files)))

	pipelineOpts := lint.PipelineOptionsFromConfig(opts.Config)

	// Each worker writes only its own slot, so no locking is needed.
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pr, err := r.Pipeline.ProcessFile(gctx, path, opts.Config, pipelineOpts)
			if err != nil && isFatal(err) {
				return fmt.Errorf("%s: %w", path, err)
			}

			outcomes[i] = FileOutcome{Path: path, Result: pr, Error: err}
			done[i] = true
			if err != nil {
				logger.Warn("file failed", logging.FieldPath, path, logging.FieldError, err)
			}
			return nil
		})
	}

	runErr := g.Wait()

	for i := range files {
		if done[i] {
			result.accumulate(outcomes[i])
		}
	}

	if runErr != nil {
		return result, runErr
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// isFatal reports errors that would repeat for every remaining file.
func isFatal(err error) bool {
	return errors.Is(err, grammar.ErrEngineUnavailable) ||
		errors.Is(err, grammar.ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
