package configloader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/gramlint/pkg/config"
)

// envVarPrefix is the prefix for all gramlint environment variables.
const envVarPrefix = "GRAMLINT_"

// envMapping binds one environment variable to a config field. Exactly one
// of the setters is non-nil.
type envMapping struct {
	description string

	setString func(*config.Config, string)
	setBool   func(*config.Config, bool)
	setInt    func(*config.Config, int)
	setFloat  func(*config.Config, float64)
	setSlice  func(*config.Config, []string)
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"LANGUAGE": {
		description: "Prose language, e.g. en-US",
		setString:   func(c *config.Config, v string) { c.Language = v },
	},
	"FLAVOR": {
		description: "Markdown flavor: commonmark or gfm",
		setString:   func(c *config.Config, v string) { c.Flavor = config.Flavor(v) },
	},
	"SEVERITY_DEFAULT": {
		description: "Default severity: error, warning, or info",
		setString:   func(c *config.Config, v string) { c.SeverityDefault = v },
	},
	"ENGINE": {
		description: "Grammar engine: builtin or languagetool",
		setString:   func(c *config.Config, v string) { c.Engine.Kind = v },
	},
	"ENGINE_URL": {
		description: "LanguageTool server URL",
		setString:   func(c *config.Config, v string) { c.Engine.URL = v },
	},
	"ENGINE_TIMEOUT": {
		description: "Engine request timeout, e.g. 10s",
		setString:   func(c *config.Config, v string) { c.Engine.Timeout = v },
	},
	"ENGINE_RATE_LIMIT": {
		description: "LanguageTool requests per second (0 = unlimited)",
		setFloat:    func(c *config.Config, v float64) { c.Engine.RateLimit = v },
	},
	"ENGINE_POOL_SIZE": {
		description: "Number of engine instances (0 = one shared instance)",
		setInt:      func(c *config.Config, v int) { c.Engine.PoolSize = v },
	},
	"SPELLING": {
		description: "Enable the built-in spell checker: true or false",
		setBool:     func(c *config.Config, v bool) { c.Engine.Spelling = &v },
	},
	"CACHE_ENABLED": {
		description: "Cache engine results: true or false",
		setBool:     func(c *config.Config, v bool) { c.Cache.Enabled = &v },
	},
	"CACHE_PATH": {
		description: "Directory of the result cache",
		setString:   func(c *config.Config, v string) { c.Cache.Path = v },
	},
	"DICTIONARY_BACKEND": {
		description: "User dictionary backend: file, redis, or memory",
		setString:   func(c *config.Config, v string) { c.Dictionary.Backend = v },
	},
	"DICTIONARY_PATH": {
		description: "User dictionary file",
		setString:   func(c *config.Config, v string) { c.Dictionary.Path = v },
	},
	"REDIS_ADDR": {
		description: "Redis address for the dictionary backend",
		setString:   func(c *config.Config, v string) { c.Dictionary.RedisAddr = v },
	},
	"REDIS_KEY": {
		description: "Redis set holding dictionary words",
		setString:   func(c *config.Config, v string) { c.Dictionary.RedisKey = v },
	},
	"FIX": {
		description: "Enable auto-fix: true or false",
		setBool:     func(c *config.Config, v bool) { c.Fix = v },
	},
	"DRY_RUN": {
		description: "Dry-run mode: true or false",
		setBool:     func(c *config.Config, v bool) { c.DryRun = v },
	},
	"JOBS": {
		description: "Number of parallel workers (0 = auto)",
		setInt:      func(c *config.Config, v int) { c.Jobs = v },
	},
	"FORMAT": {
		description: "Output format: text, json, sarif, or diff",
		setString:   func(c *config.Config, v string) { c.Format = config.OutputFormat(v) },
	},
	"STRICT": {
		description: "Report every typo as an error: true or false",
		setBool:     func(c *config.Config, v bool) { c.Strict = v },
	},
	"BACKUPS_ENABLED": {
		description: "Enable backups when fixing: true or false",
		setBool:     func(c *config.Config, v bool) { c.Backups.Enabled = v },
	},
	"BACKUPS_MODE": {
		description: "Backup mode: sidecar or none",
		setString:   func(c *config.Config, v string) { c.Backups.Mode = v },
	},
	"NO_BACKUPS": {
		description: "Disable backups: true or false",
		setBool:     func(c *config.Config, v bool) { c.NoBackups = v },
	},
	"IGNORE": {
		description: "Comma-separated list of ignore patterns",
		setSlice:    func(c *config.Config, v []string) { c.Ignore = v },
	},
	"DISABLED_RULES": {
		description: "Comma-separated list of engine rule ids to drop",
		setSlice:    func(c *config.Config, v []string) { c.DisabledRules = v },
	},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GRAMLINT_ (e.g., GRAMLINT_FLAVOR).
func LoadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		envVar := envVarPrefix + suffix
		value := getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch {
	case mapping.setString != nil:
		mapping.setString(cfg, value)
	case mapping.setBool != nil:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		mapping.setBool(cfg, b)
	case mapping.setInt != nil:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		mapping.setInt(cfg, i)
	case mapping.setFloat != nil:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", envVar, value)
		}
		mapping.setFloat(cfg, f)
	case mapping.setSlice != nil:
		mapping.setSlice(cfg, parseSliceValue(value))
	default:
		return fmt.Errorf("no setter for %s", envVar)
	}
	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func sortedEnvSuffixes() []string {
	out := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		out = append(out, suffix)
	}
	sort.Strings(out)
	return out
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		out[envVarPrefix+suffix] = mapping.description
	}
	return out
}
