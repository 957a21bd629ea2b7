package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/classify/code"
	"github.com/yaklabco/gramlint/pkg/classify/markdown"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/dictionary"
	"github.com/yaklabco/gramlint/pkg/engine"
	"github.com/yaklabco/gramlint/pkg/engine/builtin"
	"github.com/yaklabco/gramlint/pkg/engine/cache"
	"github.com/yaklabco/gramlint/pkg/engine/languagetool"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/langdetect"
	"github.com/yaklabco/gramlint/pkg/metrics"
	"github.com/yaklabco/gramlint/pkg/rules"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// SetupOptions are the runtime dependencies of Setup that do not come from
// the configuration.
type SetupOptions struct {
	Logger *log.Logger

	// Metrics records checker and per-file counters. Optional.
	Metrics *metrics.Collector

	// WorkingDir resolves a relative dictionary path. Empty means the
	// process working directory.
	WorkingDir string

	// Engine replaces the engine named in the configuration. Tests use it
	// to run against a fake.
	Engine engine.Engine

	// Cache is a result cache owned by the caller. When set and caching is
	// enabled, Setup wraps the engine with it instead of opening the cache
	// database itself, and Close leaves it open. Long-lived callers that
	// rebuild engines share one so the on-disk database is opened once.
	Cache *cache.DB
}

// Setup builds an Engine from cfg. The caller must Close it.
func Setup(ctx context.Context, cfg *config.Config, opts SetupOptions) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := logging.FromContext(ctx, opts.Logger)

	ruleSet := rules.Default()
	if cfg.Rules != nil {
		var err error
		if ruleSet, err = rules.FromNames(cfg.Rules); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}

	words := loadWords(ctx, cfg, opts.WorkingDir, logger)

	result := &Engine{
		Classifiers: NewClassifiers(cfg),
		Words:       words,
		Metrics:     opts.Metrics,
		Logger:      logger,
	}

	eng := opts.Engine
	if eng == nil {
		var err error
		if eng, err = newEngine(cfg, words); err != nil {
			return nil, err
		}
	}

	if cfg.Cache.IsEnabled() {
		if opts.Cache != nil {
			eng = opts.Cache.Wrap(eng)
		} else if db, err := OpenCache(cfg.Cache, logger); err != nil {
			logger.Warn("result cache disabled", logging.FieldError, err)
		} else {
			eng = db.Wrap(eng)
			result.closers = append(result.closers, func() error {
				hits, misses := db.Stats()
				logger.Debug("result cache", logging.FieldCacheHits, hits, logging.FieldCacheMisses, misses)
				return db.Close()
			})
		}
	}

	checkerOpts := []grammar.Option{
		grammar.WithRules(ruleSet),
		grammar.WithCategories(typo.DefaultCategoryTable()),
		grammar.WithLogger(logger),
	}
	if opts.Metrics != nil {
		checkerOpts = append(checkerOpts, grammar.WithRecorder(opts.Metrics))
	}
	result.Checker = grammar.New(eng, checkerOpts...)

	logger.Debug("engine ready",
		logging.FieldEngine, engine.NameOf(eng),
		"rules", ruleSet.Names(),
		"languages", result.Classifiers.Languages())

	return result, nil
}

// NewClassifiers registers Markdown, plain text and, when code checking is
// on, every language with a known comment syntax.
func NewClassifiers(cfg *config.Config) *classify.Registry {
	codeOpts := code.Options{
		Strings:        cfg.Code.Strings,
		MinStringWords: cfg.Code.MinStringWords,
	}

	registry := classify.NewRegistry(classify.PlainText{})
	registry.Register(langdetect.Markdown, markdown.New(markdown.Options{
		Flavor:    string(cfg.Flavor),
		CheckCode: cfg.Code.IsEnabled(),
		Code:      codeOpts,
	}), langdetect.Extensions(langdetect.Markdown)...)
	registry.Register(langdetect.Text, classify.PlainText{}, langdetect.Extensions(langdetect.Text)...)

	if !cfg.Code.IsEnabled() {
		return registry
	}
	for _, lang := range code.Languages() {
		classifier, ok := code.New(lang, codeOpts)
		if !ok {
			continue
		}
		registry.Register(lang, classifier, langdetect.Extensions(lang)...)
	}
	return registry
}

func newEngine(cfg *config.Config, words []string) (engine.Engine, error) {
	disabled := cfg.DisabledRules

	var factory func() (engine.Engine, error)
	switch cfg.Engine.Kind {
	case "", config.EngineBuiltin:
		spelling := cfg.Engine.Spelling != nil && *cfg.Engine.Spelling
		factory = func() (engine.Engine, error) {
			return builtin.New(builtin.Options{
				Language:      cfg.Language,
				Spelling:      spelling,
				Words:         words,
				DisabledRules: disabled,
			})
		}
	case config.EngineLanguageTool:
		var categories []string
		for _, cat := range cfg.DisabledCategoryList() {
			categories = append(categories, string(cat))
		}
		factory = func() (engine.Engine, error) {
			return languagetool.New(languagetool.Options{
				URL:                cfg.Engine.URL,
				Language:           cfg.Language,
				RateLimit:          cfg.Engine.RateLimit,
				Timeout:            cfg.Engine.TimeoutDuration(languagetool.DefaultTimeout),
				DisabledRules:      disabled,
				DisabledCategories: categories,
			})
		}
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", engine.ErrUnavailable, cfg.Engine.Kind)
	}

	if cfg.Engine.PoolSize > 0 {
		pool, err := engine.NewPool(cfg.Engine.PoolSize, factory)
		if err != nil {
			return nil, err
		}
		return pool, nil
	}

	eng, err := factory()
	if err != nil {
		return nil, err
	}
	// An unpooled server client sends one request at a time so parallel
	// workers do not overrun the server's check queue.
	if cfg.Engine.Kind == config.EngineLanguageTool && cfg.Jobs != 1 {
		return engine.Serialized(eng), nil
	}
	return eng, nil
}

// OpenCache opens the result cache described by cfg. An empty path means the
// user cache directory.
func OpenCache(cfg config.CacheConfig, logger *log.Logger) (*cache.DB, error) {
	var ttl time.Duration
	if cfg.TTL != "" {
		parsed, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("cache ttl: %w", err)
		}
		ttl = parsed
	}

	path := cfg.Path
	if path == "" && !cfg.InMemory {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		path = filepath.Join(dir, "gramlint")
	}

	return cache.Open(cache.Options{
		Path:     path,
		InMemory: cfg.InMemory,
		TTL:      ttl,
		Logger:   logger,
	})
}

// DictionaryOptions maps the dictionary section of cfg to store options.
// A relative file path is resolved against workDir. The Redis password is
// read from GRAMLINT_REDIS_PASSWORD so it never lands in a config file.
func DictionaryOptions(cfg *config.Config, workDir string) dictionary.Options {
	opts := dictionary.Options{
		Backend:       cfg.Dictionary.Backend,
		Path:          cfg.Dictionary.Path,
		RedisAddr:     cfg.Dictionary.RedisAddr,
		RedisPassword: os.Getenv("GRAMLINT_REDIS_PASSWORD"),
		RedisDB:       cfg.Dictionary.RedisDB,
		RedisKey:      cfg.Dictionary.RedisKey,
	}
	if opts.Backend == "" || opts.Backend == dictionary.BackendFile {
		if opts.Path == "" {
			opts.Path = dictionary.DefaultPath
		}
		if !filepath.IsAbs(opts.Path) && workDir != "" {
			opts.Path = filepath.Join(workDir, opts.Path)
		}
	}
	return opts
}

// loadWords reads the user dictionary. A missing or unreachable dictionary
// is logged and treated as empty.
func loadWords(ctx context.Context, cfg *config.Config, workDir string, logger *log.Logger) []string {
	store, err := dictionary.Open(ctx, DictionaryOptions(cfg, workDir))
	if err != nil {
		logger.Warn("user dictionary unavailable", logging.FieldError, err)
		return nil
	}
	defer func() { _ = store.Close() }()

	words, err := store.Words(ctx)
	if err != nil {
		logger.Warn("read user dictionary", logging.FieldError, err)
		return nil
	}
	return words
}
