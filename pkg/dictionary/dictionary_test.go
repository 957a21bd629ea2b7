package dictionary_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/dictionary"
)

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, store dictionary.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "Gramlint", "goldmark", "gramlint"))

	ok, err := store.Contains(ctx, "GRAMLINT")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Contains(ctx, "badger")
	require.NoError(t, err)
	assert.False(t, ok)

	words, err := store.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"goldmark", "gramlint"}, words)

	require.NoError(t, store.Remove(ctx, "goldmark", "never-added"))
	words, err = store.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gramlint"}, words)

	require.ErrorIs(t, store.Add(ctx, "two words"), dictionary.ErrInvalidWord)
	require.ErrorIs(t, store.Add(ctx, "  "), dictionary.ErrInvalidWord)

	ok, err = store.Contains(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	t.Parallel()

	exerciseStore(t, dictionary.NewMemory())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, dictionary.NewMemory().Add(ctx, "x"), context.Canceled)
}

func TestFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words.dict")

	store, err := dictionary.OpenFile(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, store)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# gramlint dictionary: one word per line\ngramlint\n", string(content))

	reopened, err := dictionary.OpenFile(ctx, path)
	require.NoError(t, err)
	words, err := reopened.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gramlint"}, words)
}

func TestFileParsesCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.dict")
	require.NoError(t, os.WriteFile(path, []byte("# team words\n\nKubernetes\n  etcd  \n"), 0o644))

	store, err := dictionary.OpenFile(context.Background(), path)
	require.NoError(t, err)

	words, err := store.Words(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"etcd", "kubernetes"}, words)
}

func TestFileRemoveWithoutFileDoesNotCreateIt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.dict")
	store, err := dictionary.OpenFile(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), "anything"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    dictionary.Options
		wantErr error
	}{
		{"memory", dictionary.Options{Backend: "memory"}, nil},
		{"file", dictionary.Options{Backend: "file", Path: filepath.Join(dir, "a.dict")}, nil},
		{"default is file", dictionary.Options{Path: filepath.Join(dir, "b.dict")}, nil},
		{"unknown", dictionary.Options{Backend: "sqlite"}, dictionary.ErrUnknownBackend},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			store, err := dictionary.Open(ctx, testCase.opts)
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
		})
	}
}

func TestRedis(t *testing.T) {
	t.Parallel()

	addr := os.Getenv("GRAMLINT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GRAMLINT_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := fmt.Sprintf("gramlint:test:%d", time.Now().UnixNano())
	store, err := dictionary.OpenRedis(ctx, dictionary.Options{RedisAddr: addr, RedisKey: key})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Remove(context.Background(), "gramlint")
		_ = store.Close()
	})

	assert.Equal(t, key, store.Key())
	exerciseStore(t, store)
}

func TestOpenRedisUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := dictionary.Open(ctx, dictionary.Options{Backend: "redis", RedisAddr: "127.0.0.1:1"})
	require.Error(t, err)
}
