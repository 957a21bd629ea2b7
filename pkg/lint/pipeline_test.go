package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/fsutil"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/lint"
)

func newTestPipeline(t *testing.T, fixes map[string]string) (*lint.Pipeline, *config.Config) {
	t.Helper()

	cfg := testConfig()
	return lint.NewPipeline(newTestEngine(t, cfg, misspellings(fixes))), cfg
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPipeline_ProcessFile_LintOnly(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, map[string]string{"teh": "the"})
	path := writeTemp(t, "doc.md", "# Title\n\nteh end\n")

	result, err := pipeline.ProcessFile(context.Background(), path, cfg, lint.DefaultPipelineOptions())
	require.NoError(t, err)

	assert.Equal(t, path, result.Path)
	require.NotNil(t, result.OriginalInfo)
	assert.True(t, result.HasIssues())
	assert.False(t, result.Modified)
	assert.False(t, result.Written)
	assert.Equal(t, "issues found", result.Summary())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nteh end\n", string(got))
}

func TestPipeline_ProcessFile_FixMode(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, map[string]string{"teh": "the", "recieve": "receive"})
	path := writeTemp(t, "doc.md", "We recieve teh mail.\n")

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.Backup.Enabled = false

	result, err := pipeline.ProcessFile(context.Background(), path, cfg, opts)
	require.NoError(t, err)

	assert.True(t, result.Modified)
	assert.True(t, result.Written)
	assert.False(t, result.BackupCreated)
	assert.Equal(t, 1, result.FixPasses)
	assert.Equal(t, 2, result.TotalEditsApplied)
	assert.False(t, result.HasIssues(), "the final pass sees the fixed content")
	assert.Equal(t, "fixed", result.Summary())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "We receive the mail.\n", string(got))
}

func TestPipeline_ProcessFile_DryRun(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, map[string]string{"teh": "the"})
	path := writeTemp(t, "doc.md", "teh end\n")

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.DryRun = true

	result, err := pipeline.ProcessFile(context.Background(), path, cfg, opts)
	require.NoError(t, err)

	assert.True(t, result.Modified)
	assert.False(t, result.Written)
	assert.Equal(t, "the end\n", string(result.ModifiedContent))
	require.NotNil(t, result.Diff)
	assert.True(t, result.Diff.HasChanges())
	assert.Contains(t, result.Diff.String(), "-teh end")
	assert.Contains(t, result.Diff.String(), "+the end")
	assert.Equal(t, "changes pending", result.Summary())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "teh end\n", string(got))
}

func TestPipeline_ProcessFile_WithBackup(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, map[string]string{"teh": "the"})
	path := writeTemp(t, "doc.md", "teh end\n")

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.Backup = fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	result, err := pipeline.ProcessFile(context.Background(), path, cfg, opts)
	require.NoError(t, err)
	assert.True(t, result.BackupCreated)
	assert.Equal(t, "fixed (backup created)", result.Summary())

	backup, err := os.ReadFile(fsutil.BackupPath(path, fsutil.BackupModeSidecar))
	require.NoError(t, err)
	assert.Equal(t, "teh end\n", string(backup))
}

func TestPipeline_ProcessFile_FileNotFound(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, nil)

	_, err := pipeline.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.md"), cfg, lint.DefaultPipelineOptions())
	require.ErrorIs(t, err, lint.ErrFileNotFound)
	assert.True(t, lint.IsPipelineError(err))
}

func TestPipeline_ProcessFile_ContextCancellation(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, map[string]string{"teh": "the"})
	path := writeTemp(t, "doc.md", "teh end\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.ProcessFile(ctx, path, cfg, lint.DefaultPipelineOptions())
	require.Error(t, err)
}

func TestPipeline_ProcessContent_MultiPass(t *testing.T) {
	t.Parallel()

	// The first fix produces a word the second pass fixes again.
	pipeline, cfg := newTestPipeline(t, map[string]string{"aa": "ab", "ab": "b"})

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true

	result, err := pipeline.ProcessContent(context.Background(), "doc.md", []byte("x aa y\n"), cfg, opts)
	require.NoError(t, err)

	assert.True(t, result.Modified)
	assert.Nil(t, result.OriginalInfo)
	assert.Equal(t, "x b y\n", string(result.ModifiedContent))
	assert.GreaterOrEqual(t, result.FixPasses, 2)
}

func TestPipeline_ProcessContent_MaxPasses(t *testing.T) {
	t.Parallel()

	// Each fix reintroduces the flagged word, so only the pass limit stops it.
	pipeline, cfg := newTestPipeline(t, map[string]string{"loop": "loop!"})

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.MaxFixPasses = 3

	result, err := pipeline.ProcessContent(context.Background(), "doc.txt", []byte("loop\n"), cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, result.FixPasses)
	assert.Equal(t, "loop!!!\n", string(result.ModifiedContent))
}

func TestPipeline_ProcessContent_Cancelled(t *testing.T) {
	t.Parallel()

	pipeline, cfg := newTestPipeline(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.ProcessContent(ctx, "doc.md", []byte("text\n"), cfg, lint.DefaultPipelineOptions())
	require.ErrorIs(t, err, grammar.ErrCancelled)
}

func TestPipelineResult_Summary(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		result lint.PipelineResult
		want   string
	}{
		{name: "skipped", result: lint.PipelineResult{Skipped: true, SkipReason: "busy"}, want: "skipped: busy"},
		{name: "written", result: lint.PipelineResult{Written: true}, want: "fixed"},
		{name: "backup", result: lint.PipelineResult{Written: true, BackupCreated: true}, want: "fixed (backup created)"},
		{name: "pending", result: lint.PipelineResult{Modified: true}, want: "changes pending"},
		{name: "clean", result: lint.PipelineResult{FileResult: &lint.FileResult{}}, want: "ok"},
		{name: "empty", result: lint.PipelineResult{}, want: "ok"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, testCase.result.Summary())
		})
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := lint.PipelineOptionsFromConfig(nil)
	assert.Equal(t, lint.DefaultPipelineOptions(), opts)

	cfg := config.NewConfig()
	cfg.DryRun = true
	opts = lint.PipelineOptionsFromConfig(cfg)
	assert.True(t, opts.Fix)
	assert.True(t, opts.DryRun)
	assert.True(t, opts.Backup.Enabled)
}

func TestBackupConfigFromConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		configure   func(cfg *config.Config)
		wantEnabled bool
		wantMode    fsutil.BackupMode
	}{
		{name: "defaults", configure: func(*config.Config) {}, wantEnabled: true, wantMode: fsutil.BackupModeSidecar},
		{name: "no backups flag", configure: func(cfg *config.Config) { cfg.NoBackups = true }, wantMode: fsutil.BackupModeSidecar},
		{name: "disabled", configure: func(cfg *config.Config) { cfg.Backups.Enabled = false }, wantMode: fsutil.BackupModeSidecar},
		{name: "mode none", configure: func(cfg *config.Config) { cfg.Backups.Mode = "none" }, wantMode: fsutil.BackupModeNone},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			testCase.configure(cfg)
			got := lint.BackupConfigFromConfig(cfg)
			assert.Equal(t, testCase.wantEnabled, got.Enabled)
			assert.Equal(t, testCase.wantMode, got.Mode)
		})
	}
}

func TestIsPipelineError(t *testing.T) {
	t.Parallel()

	assert.True(t, lint.IsPipelineError(lint.ErrWriteFailure))
	assert.True(t, lint.IsPipelineError(lint.ErrClassifyFailure))
	assert.False(t, lint.IsPipelineError(assert.AnError))
}
