package configloader

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/config"
)

func TestWatcherReloadsIntoHolder(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	path := filepath.Join(dir, ".gramlint.yml")
	writeFile(t, path, "flavor: gfm\n")

	opts := isolated(dir)
	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	holder := config.NewHolder(result.Config)
	var notified atomic.Int32
	holder.Subscribe(func(previous, current *config.Config) {
		notified.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(ctx, WatchOptions{
		Load:     opts,
		Debounce: 20 * time.Millisecond,
		Logger:   logging.Discard(),
	}, holder)
	require.NoError(t, err)
	assert.Contains(t, w.Dirs(), dir)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, path, "flavor: commonmark\n")
	require.Eventually(t, func() bool {
		return holder.Get().Flavor == config.FlavorCommonMark
	}, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, notified.Load(), int32(1))

	// A broken file keeps the last good configuration.
	before := notified.Load()
	writeFile(t, path, "flavor: [\n")
	assert.Never(t, func() bool {
		return notified.Load() != before
	}, 300*time.Millisecond, 20*time.Millisecond)
	assert.Equal(t, config.FlavorCommonMark, holder.Get().Flavor)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	opts := isolated(dir)
	holder := config.NewHolder(config.NewConfig())
	var notified atomic.Int32
	holder.Subscribe(func(_, _ *config.Config) { notified.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(ctx, WatchOptions{Load: opts, Debounce: 10 * time.Millisecond, Logger: logging.Discard()}, holder)
	require.NoError(t, err)
	go func() { _ = w.Run(ctx) }()

	writeFile(t, filepath.Join(dir, "README.md"), "# hello\n")
	assert.Never(t, func() bool { return notified.Load() > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestNewWatcherNeedsHolder(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher(context.Background(), WatchOptions{Load: isolated(t.TempDir())}, nil)
	require.Error(t, err)
}
