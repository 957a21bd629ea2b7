package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/fix"
	"github.com/yaklabco/gramlint/pkg/lint"
	"github.com/yaklabco/gramlint/pkg/runner"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/typo"
)

func diag(rule string, cat typo.Category, sev config.Severity, fixable bool) lint.Diagnostic {
	d := lint.Diagnostic{
		RuleID:      rule,
		Category:    cat,
		Message:     "problem",
		Severity:    sev,
		StartLine:   1,
		StartColumn: 1,
		EndLine:     1,
		EndColumn:   4,
		Offset:      span.Range{Start: 0, End: 3},
		Text:        "teh",
	}
	if fixable {
		d.Suggestions = []string{"the"}
		d.FixEdits = []fix.TextEdit{{StartOffset: 0, EndOffset: 3, NewText: "the", RuleID: rule}}
	}
	return d
}

func outcome(path string, diags ...lint.Diagnostic) runner.FileOutcome {
	return runner.FileOutcome{
		Path: path,
		Result: &lint.PipelineResult{
			FileResult: &lint.FileResult{Diagnostics: diags},
			Path:       path,
		},
	}
}

func sampleResult() *runner.Result {
	written := outcome("/work/b.md",
		diag("MORFOLOGIK_RULE_EN_US", typo.Spelling, config.SeverityInfo, false),
	)
	written.Result.Written = true
	written.Result.Suppressed = 2

	return &runner.Result{
		Files: []runner.FileOutcome{
			outcome("/work/a.md",
				diag("MORFOLOGIK_RULE_EN_US", typo.Spelling, config.SeverityWarning, true),
				diag("MORFOLOGIK_RULE_EN_US", typo.Spelling, config.SeverityWarning, true),
				diag("EN_A_VS_AN", typo.Grammar, config.SeverityError, true),
			),
			written,
			outcome("/work/clean.md"),
			{Path: "/work/broken.md", Error: errors.New("permission denied")},
		},
	}
}

func TestAnalyze_Totals(t *testing.T) {
	t.Parallel()

	report := Analyze(sampleResult(), DefaultOptions())

	assert.Equal(t, ReportVersion, report.Version)
	assert.False(t, report.Timestamp.IsZero())
	assert.Equal(t, Totals{
		Files:           4,
		FilesWithIssues: 2,
		FilesFailed:     1,
		FilesModified:   1,
		Issues:          4,
		Errors:          1,
		Warnings:        2,
		Infos:           1,
		Fixable:         3,
		Suppressed:      2,
	}, report.Totals)
	assert.True(t, report.Totals.HasIssues())
	assert.True(t, report.Totals.HasErrors())

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "/work/broken.md", report.Errors[0].FilePath)
	assert.Equal(t, "permission denied", report.Errors[0].Message)
}

func TestAnalyze_Nil(t *testing.T) {
	t.Parallel()

	report := Analyze(nil, DefaultOptions())

	require.NotNil(t, report)
	assert.False(t, report.Totals.HasIssues())
	assert.Empty(t, report.Diagnostics)
}

func TestAnalyze_Groups(t *testing.T) {
	t.Parallel()

	report := Analyze(sampleResult(), DefaultOptions())

	require.Len(t, report.ByRule, 2)
	assert.Equal(t, "MORFOLOGIK_RULE_EN_US", report.ByRule[0].Key)
	assert.Equal(t, 3, report.ByRule[0].Issues)
	assert.Equal(t, 2, report.ByRule[0].Fixable)
	assert.Equal(t, []string{"/work/a.md", "/work/b.md"}, report.ByRule[0].Related)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, "SPELLING", report.ByCategory[0].Key)
	assert.Equal(t, "GRAMMAR", report.ByCategory[1].Key)
	assert.Equal(t, 1, report.ByCategory[1].Errors)

	require.Len(t, report.ByFile, 2)
	assert.Equal(t, "/work/a.md", report.ByFile[0].Key)
	assert.Equal(t, []string{"EN_A_VS_AN", "MORFOLOGIK_RULE_EN_US"}, report.ByFile[0].Related)
}

func TestAnalyze_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   Options
		verify func(t *testing.T, report *Report)
	}{
		{
			name: "nothing included",
			opts: Options{},
			verify: func(t *testing.T, report *Report) {
				assert.Empty(t, report.Diagnostics)
				assert.Empty(t, report.ByFile)
				assert.Empty(t, report.ByRule)
				assert.Empty(t, report.ByCategory)
				assert.Equal(t, 4, report.Totals.Issues)
			},
		},
		{
			name: "relative paths",
			opts: Options{IncludeDiagnostics: true, IncludeByFile: true, WorkingDir: "/work"},
			verify: func(t *testing.T, report *Report) {
				require.NotEmpty(t, report.Diagnostics)
				assert.Equal(t, "a.md", report.Diagnostics[0].FilePath)
				assert.Equal(t, "a.md", report.ByFile[0].Key)
			},
		},
		{
			name: "alpha",
			opts: Options{IncludeByRule: true, SortBy: SortByAlpha},
			verify: func(t *testing.T, report *Report) {
				require.Len(t, report.ByRule, 2)
				assert.Equal(t, "EN_A_VS_AN", report.ByRule[0].Key)
			},
		},
		{
			name: "count ascending",
			opts: Options{IncludeByFile: true, SortBy: SortByCount},
			verify: func(t *testing.T, report *Report) {
				require.Len(t, report.ByFile, 2)
				assert.Equal(t, "/work/b.md", report.ByFile[0].Key)
			},
		},
		{
			name: "severity",
			opts: Options{IncludeByCategory: true, SortBy: SortBySeverity},
			verify: func(t *testing.T, report *Report) {
				require.Len(t, report.ByCategory, 2)
				assert.Equal(t, "GRAMMAR", report.ByCategory[0].Key)
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			testCase.verify(t, Analyze(sampleResult(), testCase.opts))
		})
	}
}

func TestAnalyze_DiagnosticEntry(t *testing.T) {
	t.Parallel()

	report := Analyze(sampleResult(), DefaultOptions())

	require.Len(t, report.Diagnostics, 4)
	entry := report.Diagnostics[2]
	assert.Equal(t, "EN_A_VS_AN", entry.RuleID)
	assert.Equal(t, "GRAMMAR", entry.Category)
	assert.Equal(t, "error", entry.Severity)
	assert.Equal(t, "teh", entry.Text)
	assert.True(t, entry.Fixable)
	assert.Equal(t, []FixEntry{{StartOffset: 0, EndOffset: 3, NewText: "the"}}, entry.Fixes)

	unfixable := report.Diagnostics[3]
	assert.False(t, unfixable.Fixable)
	assert.Empty(t, unfixable.Fixes)
	assert.Equal(t, "info", unfixable.Severity)
}

func TestAnalyze_DefaultSeverity(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{
		outcome("x.md", diag("R", typo.Style, "", false)),
	}}
	report := Analyze(result, DefaultOptions())

	assert.Equal(t, 1, report.Totals.Warnings)
	assert.Equal(t, "warning", report.Diagnostics[0].Severity)
}

func TestSortField_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, SortByCount.IsValid())
	assert.True(t, SortByAlpha.IsValid())
	assert.True(t, SortBySeverity.IsValid())
	assert.False(t, SortField("bogus").IsValid())
}
