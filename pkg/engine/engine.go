// Package engine defines the grammar engine contract and helpers for
// sharing engine instances between goroutines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ErrUnavailable reports an engine that cannot serve requests: a load
// failure, a transport error or a server-side failure.
var ErrUnavailable = errors.New("grammar engine unavailable")

// RawMatch is a problem reported by an engine.
//
// Start and End are rune offsets into the analyzed text, End exclusive.
type RawMatch struct {
	Start        int      `msgpack:"s"`
	End          int      `msgpack:"e"`
	RuleID       string   `msgpack:"r"`
	Category     string   `msgpack:"c,omitempty"`
	Message      string   `msgpack:"m,omitempty"`
	Replacements []string `msgpack:"x,omitempty"`
}

// Engine analyzes a single string of prose.
type Engine interface {
	Analyze(ctx context.Context, text string) ([]RawMatch, error)
}

// Named is implemented by engines that can identify themselves. The name is
// part of cache keys.
type Named interface {
	Name() string
}

// NameOf returns the engine's name, or "engine" when it has none.
func NameOf(e Engine) string {
	if n, ok := e.(Named); ok {
		return n.Name()
	}
	return "engine"
}

// Keyed is implemented by engines whose results depend on settings beyond
// their name. CacheKey must change whenever any of those settings does.
type Keyed interface {
	CacheKey() string
}

// CacheKeyOf returns the key that scopes cached results for e: its CacheKey
// when it has one, its name otherwise.
func CacheKeyOf(e Engine) string {
	if k, ok := e.(Keyed); ok {
		return k.CacheKey()
	}
	return NameOf(e)
}

// Fingerprint builds a cache key from a name and the settings that change an
// engine's output. Callers sort list settings first.
func Fingerprint(name string, settings ...string) string {
	digest := xxhash.New()
	for _, s := range settings {
		_, _ = digest.WriteString(s)
		_, _ = digest.Write([]byte{0})
	}
	return fmt.Sprintf("%s#%016x", name, digest.Sum64())
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, text string) ([]RawMatch, error)

// Analyze calls f.
func (f Func) Analyze(ctx context.Context, text string) ([]RawMatch, error) {
	return f(ctx, text)
}

type serialized struct {
	mu    sync.Mutex
	inner Engine
}

// Serialized wraps an engine that is not safe for concurrent use so that
// calls run one at a time.
func Serialized(e Engine) Engine {
	return &serialized{inner: e}
}

func (s *serialized) Analyze(ctx context.Context, text string) ([]RawMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Analyze(ctx, text)
}

func (s *serialized) Name() string {
	return NameOf(s.inner)
}

func (s *serialized) CacheKey() string {
	return CacheKeyOf(s.inner)
}

// Pool hands out a fixed set of engine instances. Each instance serves one
// call at a time; callers block until an instance is free or ctx ends.
type Pool struct {
	name      string
	key       string
	instances chan Engine
}

// NewPool creates a pool of size instances built by factory.
func NewPool(size int, factory func() (Engine, error)) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	pool := &Pool{instances: make(chan Engine, size)}
	for range size {
		e, err := factory()
		if err != nil {
			return nil, errors.Join(ErrUnavailable, err)
		}
		if pool.name == "" {
			pool.name = NameOf(e)
			pool.key = CacheKeyOf(e)
		}
		pool.instances <- e
	}

	return pool, nil
}

// Analyze borrows an instance for the duration of the call.
func (p *Pool) Analyze(ctx context.Context, text string) ([]RawMatch, error) {
	var e Engine
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e = <-p.instances:
	}
	defer func() { p.instances <- e }()

	return e.Analyze(ctx, text)
}

// Name returns the name of the pooled engine.
func (p *Pool) Name() string {
	return p.name
}

// CacheKey returns the cache key of the pooled engine.
func (p *Pool) CacheKey() string {
	return p.key
}

// Size returns the number of instances.
func (p *Pool) Size() int {
	return cap(p.instances)
}
