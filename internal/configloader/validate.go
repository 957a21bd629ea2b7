package configloader

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/dictionary"
	"github.com/yaklabco/gramlint/pkg/filter"
	"github.com/yaklabco/gramlint/pkg/rules"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "categories.CASING.severity").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown categories).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownSeverities = map[string]bool{
	string(config.SeverityError):   true,
	string(config.SeverityWarning): true,
	string(config.SeverityInfo):    true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:    true,
	config.FormatJSON:    true,
	config.FormatSARIF:   true,
	config.FormatDiff:    true,
	config.FormatSummary: true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownEngines = map[string]bool{
	config.EngineBuiltin:      true,
	config.EngineLanguageTool: true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownDictionaryBackends = map[string]bool{
	dictionary.BackendFile:   true,
	dictionary.BackendRedis:  true,
	dictionary.BackendMemory: true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !knownFlavors[cfg.Flavor] {
		result.fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}
	if cfg.SeverityDefault != "" && !knownSeverities[cfg.SeverityDefault] {
		result.fail("severity_default", cfg.SeverityDefault,
			"invalid severity %q; must be one of: error, warning, info", cfg.SeverityDefault)
	}
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, sarif, diff, summary", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	validateEngine(cfg, result)
	validateCache(cfg, result)
	validateDictionary(cfg, result)
	validateCode(cfg, result)
	validateRules(cfg, result)
	validateCategories(cfg, result)
	validateSuppressions(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validateEngine(cfg *config.Config, result *ValidationResult) {
	eng := cfg.Engine
	if eng.Kind != "" && !knownEngines[eng.Kind] {
		result.fail("engine.kind", eng.Kind, "invalid engine %q; must be one of: builtin, languagetool", eng.Kind)
	}
	if eng.Kind == config.EngineLanguageTool {
		u, err := url.Parse(eng.URL)
		if eng.URL == "" || err != nil || u.Scheme == "" || u.Host == "" {
			result.fail("engine.url", eng.URL, "languagetool needs an absolute http(s) URL")
		}
	}
	validateDuration("engine.timeout", eng.Timeout, result)
	if eng.RateLimit < 0 {
		result.fail("engine.rate_limit", eng.RateLimit, "rate_limit must be >= 0 (0 means unlimited)")
	}
	if eng.PoolSize < 0 {
		result.fail("engine.pool_size", eng.PoolSize, "pool_size must be >= 0 (0 means one shared instance)")
	}
}

func validateCache(cfg *config.Config, result *ValidationResult) {
	validateDuration("cache.ttl", cfg.Cache.TTL, result)
}

func validateDuration(field, value string, result *ValidationResult) {
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		result.fail(field, value, "invalid duration %q: %v", value, err)
		return
	}
	if d <= 0 {
		result.fail(field, value, "duration must be positive")
	}
}

func validateDictionary(cfg *config.Config, result *ValidationResult) {
	dict := cfg.Dictionary
	backend := strings.ToLower(dict.Backend)
	if backend != "" && !knownDictionaryBackends[backend] {
		result.fail("dictionary.backend", dict.Backend,
			"invalid backend %q; must be one of: file, redis, memory", dict.Backend)
	}
	if backend == dictionary.BackendRedis && dict.RedisAddr == "" {
		result.fail("dictionary.redis_addr", dict.RedisAddr, "redis backend needs redis_addr")
	}
	if dict.RedisDB < 0 {
		result.fail("dictionary.redis_db", dict.RedisDB, "redis_db must be >= 0")
	}
}

func validateCode(cfg *config.Config, result *ValidationResult) {
	if cfg.Code.MinStringWords < 0 {
		result.fail("code.min_string_words", cfg.Code.MinStringWords, "min_string_words must be >= 0")
	}
}

// validateRules checks that every character rule name is built in.
func validateRules(cfg *config.Config, result *ValidationResult) {
	if cfg.Rules == nil {
		return
	}
	if _, err := rules.FromNames(cfg.Rules); err != nil {
		result.fail("rules", cfg.Rules, "%v; available: %s", err, strings.Join(rules.Available(), ", "))
	}
}

func validateCategories(cfg *config.Config, result *ValidationResult) {
	for name, cc := range cfg.Categories {
		if _, err := typo.ParseCategory(name); err != nil {
			result.warn("categories."+name, name, "unknown category %q; it will be ignored", name)
		}
		if cc.Severity != nil && !knownSeverities[*cc.Severity] {
			result.fail("categories."+name+".severity", *cc.Severity,
				"invalid severity %q; must be one of: error, warning, info", *cc.Severity)
		}
	}
	for _, name := range cfg.DisabledCategories {
		if _, err := typo.ParseCategory(name); err != nil {
			result.fail("disabled_categories", name, "unknown category %q", name)
		}
	}
}

func validateSuppressions(cfg *config.Config, result *ValidationResult) {
	if len(cfg.Suppressions) == 0 {
		return
	}
	if _, err := filter.ParseSuppressions(cfg.Suppressions); err != nil {
		result.fail("suppressions", cfg.Suppressions, "%v", err)
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidSeverity returns true if the severity string is valid.
func IsValidSeverity(s string) bool {
	return knownSeverities[s]
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
