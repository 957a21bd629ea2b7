package dictionary

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/yaklabco/gramlint/pkg/fsutil"
)

// File keeps one word per line in a text file. Blank lines and lines
// starting with '#' are ignored. Every change rewrites the file atomically.
type File struct {
	path string

	mu  sync.Mutex
	mem *Memory
}

var _ Store = (*File)(nil)

// OpenFile loads the dictionary at path. A missing file is an empty
// dictionary; it is created on the first Add.
func OpenFile(ctx context.Context, path string) (*File, error) {
	f := &File{path: path, mem: NewMemory()}

	content, _, err := fsutil.ReadFile(ctx, path)
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("open dictionary: %w", err)
	}

	words, err := parse(content)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	if err := f.mem.Add(ctx, words...); err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	return f, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Add(ctx context.Context, words ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mem.Add(ctx, words...); err != nil {
		return err
	}
	return f.flush(ctx)
}

func (f *File) Remove(ctx context.Context, words ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mem.Remove(ctx, words...); err != nil {
		return err
	}
	if _, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return f.flush(ctx)
}

func (f *File) Contains(ctx context.Context, word string) (bool, error) {
	return f.mem.Contains(ctx, word)
}

func (f *File) Words(ctx context.Context) ([]string, error) {
	return f.mem.Words(ctx)
}

func (f *File) Close() error { return nil }

func (f *File) flush(ctx context.Context) error {
	words, err := f.mem.Words(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# gramlint dictionary: one word per line\n")
	for _, w := range words {
		buf.WriteString(w)
		buf.WriteByte('\n')
	}

	if _, err := fsutil.WriteAtomicIfChanged(ctx, f.path, buf.Bytes(), 0); err != nil {
		return fmt.Errorf("save dictionary: %w", err)
	}
	return nil
}

func parse(content []byte) ([]string, error) {
	var words []string

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, sc.Err()
}
