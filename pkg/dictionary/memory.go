package dictionary

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is an in-process store. It is used in tests and when no dictionary
// should persist.
type Memory struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

var _ Store = (*Memory)(nil)

// NewMemory returns a store holding words.
func NewMemory(words ...string) *Memory {
	m := &Memory{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if n, err := Normalize(w); err == nil {
			m.words[n] = struct{}{}
		}
	}
	return m
}

func (m *Memory) Add(ctx context.Context, words ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	norm, err := normalizeAll(words)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range norm {
		m.words[w] = struct{}{}
	}
	return nil
}

func (m *Memory) Remove(ctx context.Context, words ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	norm, err := normalizeAll(words)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range norm {
		delete(m.words, w)
	}
	return nil
}

func (m *Memory) Contains(ctx context.Context, word string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := Normalize(word)
	if err != nil {
		return false, nil //nolint:nilerr // invalid words are never present
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.words[n]
	return ok, nil
}

// Words returns the words in sorted order.
func (m *Memory) Words(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.words)), nil
}

func (m *Memory) Close() error { return nil }
