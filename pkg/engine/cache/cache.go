// Package cache memoizes grammar engine results in BadgerDB.
//
// Entries are keyed by an xxhash digest of the engine's cache key and the
// analyzed text and stored as msgpack. A schema version in every entry lets old
// entries be ignored after the match format changes. Any cache failure falls
// back to calling the engine directly.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/engine"
)

// SchemaVersion is bumped whenever engine.RawMatch changes shape.
const SchemaVersion = 1

const keyPrefix = "gramlint/matches/"

// Options configures the cache database.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests and --no-cache-dir runs.
	InMemory bool

	// TTL expires entries. Zero keeps them forever.
	TTL time.Duration

	Logger *log.Logger
}

// DB is an open result cache.
type DB struct {
	db     *badger.DB
	ttl    time.Duration
	logger *log.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	Version int               `msgpack:"v"`
	Matches []engine.RawMatch `msgpack:"m"`
}

// Open opens or creates the cache.
func Open(opts Options) (*DB, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("cache path is required unless in-memory")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", opts.Path, err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &DB{db: db, ttl: opts.TTL, logger: logger}, nil
}

// Close flushes and closes the database.
func (c *DB) Close() error {
	return c.db.Close()
}

// Stats returns hit and miss counts since Open.
func (c *DB) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear drops every cached entry.
func (c *DB) Clear() error {
	return c.db.DropPrefix([]byte(keyPrefix))
}

// Wrap returns an engine that consults the cache before calling inner.
func (c *DB) Wrap(inner engine.Engine) engine.Engine {
	return &cachedEngine{
		db:    c,
		inner: inner,
		name:  engine.NameOf(inner),
		scope: engine.CacheKeyOf(inner),
	}
}

func key(scope, text string) []byte {
	digest := xxhash.New()
	_, _ = digest.WriteString(scope)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(text)
	return fmt.Appendf(nil, "%s%016x/%d", keyPrefix, digest.Sum64(), len(text))
}

func (c *DB) get(k []byte) ([]engine.RawMatch, bool) {
	var e entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &e)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Debug("cache read failed", logging.FieldError, err)
		}
		return nil, false
	}
	if e.Version != SchemaVersion {
		return nil, false
	}
	return e.Matches, true
}

func (c *DB) put(k []byte, matches []engine.RawMatch) {
	val, err := msgpack.Marshal(entry{Version: SchemaVersion, Matches: matches})
	if err != nil {
		c.logger.Debug("cache encode failed", logging.FieldError, err)
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(k, val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Debug("cache write failed", logging.FieldError, err)
	}
}

type cachedEngine struct {
	db    *DB
	inner engine.Engine
	name  string
	scope string
}

func (e *cachedEngine) Name() string {
	return e.name
}

func (e *cachedEngine) CacheKey() string {
	return e.scope
}

func (e *cachedEngine) Analyze(ctx context.Context, text string) ([]engine.RawMatch, error) {
	k := key(e.scope, text)
	if matches, ok := e.db.get(k); ok {
		e.db.hits.Add(1)
		return matches, nil
	}
	e.db.misses.Add(1)

	matches, err := e.inner.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	e.db.put(k, matches)
	return matches, nil
}

// badgerLogger routes badger's logs to the debug level; its info output is
// noise for a CLI.
type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Errorf("badger: "+format, args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Debugf("badger: "+format, args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debugf("badger: "+format, args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debugf("badger: "+format, args...)
}
