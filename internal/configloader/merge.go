package configloader

import (
	"maps"
	"slices"

	"github.com/yaklabco/gramlint/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointers: override overwrites base if non-nil
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	setString(&result.Language, override.Language)
	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	setString(&result.SeverityDefault, override.SeverityDefault)
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	setString(&result.MetricsOut, override.MetricsOut)

	// false is the zero value, so only true can be carried by a layer.
	result.Fix = result.Fix || override.Fix
	result.DryRun = result.DryRun || override.DryRun
	result.NoBackups = result.NoBackups || override.NoBackups
	result.Strict = result.Strict || override.Strict
	result.NoContext = result.NoContext || override.NoContext

	result.Engine = mergeEngine(base.Engine, override.Engine)
	result.Cache = mergeCache(base.Cache, override.Cache)
	result.Dictionary = mergeDictionary(base.Dictionary, override.Dictionary)
	result.Code = mergeCode(base.Code, override.Code)

	setString(&result.Backups.Mode, override.Backups.Mode)
	// BackupsConfig.Enabled is a plain bool, so a layer can only switch it on.
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	result.Categories = mergeCategories(base.Categories, override.Categories)
	result.Suppressions = mergeSuppressions(base.Suppressions, override.Suppressions)

	if override.Rules != nil {
		result.Rules = slices.Clone(override.Rules)
	}
	if override.DisabledRules != nil {
		result.DisabledRules = slices.Clone(override.DisabledRules)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}
	if override.DisabledCategories != nil {
		result.DisabledCategories = slices.Clone(override.DisabledCategories)
	}

	return &result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeEngine(base, override config.EngineConfig) config.EngineConfig {
	result := base
	setString(&result.Kind, override.Kind)
	setString(&result.URL, override.URL)
	setString(&result.Timeout, override.Timeout)
	if override.RateLimit != 0 {
		result.RateLimit = override.RateLimit
	}
	if override.PoolSize != 0 {
		result.PoolSize = override.PoolSize
	}
	if override.Spelling != nil {
		result.Spelling = override.Spelling
	}
	return result
}

func mergeCache(base, override config.CacheConfig) config.CacheConfig {
	result := base
	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	setString(&result.Path, override.Path)
	setString(&result.TTL, override.TTL)
	result.InMemory = result.InMemory || override.InMemory
	return result
}

func mergeDictionary(base, override config.DictionaryConfig) config.DictionaryConfig {
	result := base
	setString(&result.Backend, override.Backend)
	setString(&result.Path, override.Path)
	setString(&result.RedisAddr, override.RedisAddr)
	setString(&result.RedisKey, override.RedisKey)
	if override.RedisDB != 0 {
		result.RedisDB = override.RedisDB
	}
	return result
}

func mergeCode(base, override config.CodeConfig) config.CodeConfig {
	result := base
	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	result.Strings = result.Strings || override.Strings
	if override.MinStringWords != 0 {
		result.MinStringWords = override.MinStringWords
	}
	return result
}

// mergeCategories deep-merges per-category settings.
func mergeCategories(base, override map[string]config.CategoryConfig) map[string]config.CategoryConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]config.CategoryConfig, len(base)+len(override))
	maps.Copy(result, base)

	for key, val := range override {
		existing, ok := result[key]
		if !ok {
			result[key] = val
			continue
		}
		if val.Enabled != nil {
			existing.Enabled = val.Enabled
		}
		if val.Severity != nil {
			existing.Severity = val.Severity
		}
		result[key] = existing
	}
	return result
}

// mergeSuppressions replaces the category list per structure.
func mergeSuppressions(base, override map[string][]string) map[string][]string {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string][]string, len(base)+len(override))
	for key, val := range base {
		result[key] = slices.Clone(val)
	}
	for key, val := range override {
		result[key] = slices.Clone(val)
	}
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
