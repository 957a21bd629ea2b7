// Package config defines gramlint's configuration types. They are plain data
// with yaml and toml tags; loading and merging live in internal/configloader.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/yaklabco/gramlint/pkg/typo"
)

// Severity of a reported typo.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// OutputFormat selects a reporter.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// Flavor is the Markdown dialect.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Engine kinds.
const (
	EngineBuiltin      = "builtin"
	EngineLanguageTool = "languagetool"
)

// EngineConfig selects and tunes the grammar engine.
type EngineConfig struct {
	// Kind is "builtin" or "languagetool".
	Kind string `yaml:"kind,omitempty" toml:"kind,omitempty"`

	// URL of the LanguageTool server.
	URL string `yaml:"url,omitempty" toml:"url,omitempty"`

	// RateLimit caps LanguageTool requests per second. Zero means no limit.
	RateLimit float64 `yaml:"rate_limit,omitempty" toml:"rate_limit,omitempty"`

	// Timeout per request, as a Go duration string such as "10s".
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`

	// PoolSize is the number of engine instances shared by workers. Zero
	// shares one instance; a LanguageTool client then sends one request at a
	// time.
	PoolSize int `yaml:"pool_size,omitempty" toml:"pool_size,omitempty"`

	// Spelling enables the built-in engine's spell checker.
	Spelling *bool `yaml:"spelling,omitempty" toml:"spelling,omitempty"`
}

// TimeoutDuration parses Timeout, returning fallback when unset or invalid.
func (e EngineConfig) TimeoutDuration(fallback time.Duration) time.Duration {
	if e.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CacheConfig controls the engine result cache.
type CacheConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Path     string `yaml:"path,omitempty" toml:"path,omitempty"`
	InMemory bool   `yaml:"in_memory,omitempty" toml:"in_memory,omitempty"`
	TTL      string `yaml:"ttl,omitempty" toml:"ttl,omitempty"`
}

// IsEnabled reports whether caching is on. It defaults to true.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// DictionaryConfig selects where the user dictionary lives.
type DictionaryConfig struct {
	Backend   string `yaml:"backend,omitempty" toml:"backend,omitempty"`
	Path      string `yaml:"path,omitempty" toml:"path,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty" toml:"redis_db,omitempty"`
	RedisKey  string `yaml:"redis_key,omitempty" toml:"redis_key,omitempty"`
}

// CategoryConfig turns a typo category on or off and sets its severity.
type CategoryConfig struct {
	Enabled  *bool   `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Severity *string `yaml:"severity,omitempty" toml:"severity,omitempty"`
}

// CodeConfig controls checking of source code comments and strings.
type CodeConfig struct {
	// Enabled turns on checking of code files and fenced code blocks.
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// Strings also checks string literals that read like prose.
	Strings bool `yaml:"strings,omitempty" toml:"strings,omitempty"`

	// MinStringWords is how many words a string needs to be checked.
	MinStringWords int `yaml:"min_string_words,omitempty" toml:"min_string_words,omitempty"`
}

// IsEnabled reports whether code checking is on. It defaults to true.
func (c CodeConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// BackupsConfig controls backups taken before fixing files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Mode    string `yaml:"mode,omitempty" toml:"mode,omitempty"`
}

// Config is the root configuration.
type Config struct {
	// Language is the prose language, such as "en-US".
	Language string `yaml:"language,omitempty" toml:"language,omitempty"`

	// Flavor is the Markdown dialect.
	Flavor Flavor `yaml:"flavor,omitempty" toml:"flavor,omitempty"`

	// SeverityDefault applies to categories without their own severity.
	SeverityDefault string `yaml:"severity_default,omitempty" toml:"severity_default,omitempty"`

	Engine     EngineConfig     `yaml:"engine,omitempty" toml:"engine,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty" toml:"cache,omitempty"`
	Dictionary DictionaryConfig `yaml:"dictionary,omitempty" toml:"dictionary,omitempty"`
	Code       CodeConfig       `yaml:"code,omitempty" toml:"code,omitempty"`

	// Rules names the character rules applied before the engine, in order.
	// Nil means the built-in default list.
	Rules []string `yaml:"rules,omitempty" toml:"rules,omitempty"`

	// Categories is keyed by category name.
	Categories map[string]CategoryConfig `yaml:"categories,omitempty" toml:"categories,omitempty"`

	// Suppressions maps a structure name to categories not reported inside
	// it. Entries replace the built-in ones for the same structure.
	Suppressions map[string][]string `yaml:"suppressions,omitempty" toml:"suppressions,omitempty"`

	// DisabledRules lists engine rule ids that are never reported.
	DisabledRules []string `yaml:"disabled_rules,omitempty" toml:"disabled_rules,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	Backups BackupsConfig `yaml:"backups" toml:"backups"`

	// CLI-level options, not read from files.

	Fix                bool         `yaml:"-" toml:"-"`
	DryRun             bool         `yaml:"-" toml:"-"`
	Format             OutputFormat `yaml:"-" toml:"-"`
	Jobs               int          `yaml:"-" toml:"-"`
	NoBackups          bool         `yaml:"-" toml:"-"`
	Strict             bool         `yaml:"-" toml:"-"`
	NoContext          bool         `yaml:"-" toml:"-"`
	MetricsOut         string       `yaml:"-" toml:"-"`
	DisabledCategories []string     `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Language:        "en-US",
		Flavor:          FlavorGFM,
		SeverityDefault: string(SeverityWarning),
		Engine: EngineConfig{
			Kind:     EngineBuiltin,
			URL:      "http://localhost:8081",
			Timeout:  "30s",
			PoolSize: 0,
		},
		Categories:   make(map[string]CategoryConfig),
		Suppressions: make(map[string][]string),
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
	}
}

// CategoryEnabled reports whether typos of cat are reported.
func (c *Config) CategoryEnabled(cat typo.Category) bool {
	if slices.ContainsFunc(c.DisabledCategories, func(name string) bool {
		parsed, err := typo.ParseCategory(name)
		return err == nil && parsed == cat
	}) {
		return false
	}
	cc, ok := c.category(cat)
	return !ok || cc.Enabled == nil || *cc.Enabled
}

// SeverityFor returns the severity typos of cat are reported with. Strict
// mode raises everything to error.
func (c *Config) SeverityFor(cat typo.Category) Severity {
	if c.Strict {
		return SeverityError
	}
	if cc, ok := c.category(cat); ok && cc.Severity != nil {
		return Severity(*cc.Severity)
	}
	if c.SeverityDefault != "" {
		return Severity(c.SeverityDefault)
	}
	return SeverityWarning
}

// DisabledCategoryList returns the categories switched off by the file
// settings or the command line.
func (c *Config) DisabledCategoryList() []typo.Category {
	var out []typo.Category
	for _, cat := range typo.Categories() {
		if !c.CategoryEnabled(cat) {
			out = append(out, cat)
		}
	}
	return out
}

// category looks up cat, accepting any case for the key.
func (c *Config) category(cat typo.Category) (CategoryConfig, bool) {
	for name, cc := range c.Categories {
		if strings.EqualFold(name, string(cat)) {
			return cc, true
		}
	}
	return CategoryConfig{}, false
}
