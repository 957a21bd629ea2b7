package cli

import (
	"errors"

	"github.com/yaklabco/gramlint/internal/configloader"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/runner"
)

// Exit codes for gramlint.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitIssuesErrors indicates the check found error-severity typos.
	ExitIssuesErrors = 1

	// ExitIssuesWarnings indicates the check found warnings in strict mode.
	ExitIssuesWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitEngineUnavailable indicates the grammar engine could not be reached.
	ExitEngineUnavailable = 69

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

// IssuesError reports a check whose findings fail the run. It matches
// ErrIssuesFound with errors.Is.
type IssuesError struct {
	Code int
}

func (e *IssuesError) Error() string {
	return ErrIssuesFound.Error()
}

func (e *IssuesError) Unwrap() error {
	return ErrIssuesFound
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.Stats.DiagnosticsBySeverity[config.SeverityError] > 0 {
		return ExitIssuesErrors
	}
	if strict && result.Stats.DiagnosticsBySeverity[config.SeverityWarning] > 0 {
		return ExitIssuesWarnings
	}
	return ExitSuccess
}

// ExitCodeFromError maps an error returned by a command to an exit code.
// An *IssuesError carries its own code; a bare ErrIssuesFound maps to
// ExitIssuesErrors. The reporter has already printed the details.
func ExitCodeFromError(err error) int {
	var (
		issues     *IssuesError
		validation *configloader.ValidationError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &issues):
		return issues.Code
	case errors.Is(err, ErrIssuesFound):
		return ExitIssuesErrors
	case errors.Is(err, grammar.ErrEngineUnavailable):
		return ExitEngineUnavailable
	case errors.As(err, &validation):
		return ExitConfigError
	default:
		return ExitInternalError
	}
}
