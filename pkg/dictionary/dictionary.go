// Package dictionary stores the words a user has marked as correct.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultPath is the file backend's default location, relative to the
// project root.
const DefaultPath = ".gramlint.dict"

// DefaultRedisKey is the set that holds the words in Redis.
const DefaultRedisKey = "gramlint:dictionary"

var (
	// ErrInvalidWord is returned for empty words and words containing spaces.
	ErrInvalidWord = errors.New("invalid dictionary word")

	// ErrUnknownBackend is returned by Open.
	ErrUnknownBackend = errors.New("unknown dictionary backend")
)

// Store is a set of words. Words are compared case-insensitively.
type Store interface {
	Add(ctx context.Context, words ...string) error
	Remove(ctx context.Context, words ...string) error
	Contains(ctx context.Context, word string) (bool, error)
	Words(ctx context.Context) ([]string, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is used by the file backend.
	Path string

	// Redis settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Open creates the store named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		path := opts.Path
		if path == "" {
			path = DefaultPath
		}
		return OpenFile(ctx, path)
	case BackendRedis:
		return OpenRedis(ctx, opts)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// Normalize lower-cases and trims word, and validates it.
func Normalize(word string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" || strings.IndexFunc(w, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}
	return w, nil
}

func normalizeAll(words []string) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, w := range words {
		n, err := Normalize(w)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func sorted(words []string) []string {
	slices.Sort(words)
	return slices.Compact(words)
}
