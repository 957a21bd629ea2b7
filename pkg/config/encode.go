package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ToYAML serializes the file-level settings.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// ToTOML serializes the file-level settings as TOML.
func (c *Config) ToTOML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// FromYAML parses YAML configuration. Unknown keys are rejected.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// FromTOML parses TOML configuration. Unknown keys are rejected.
func FromTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return cfg, nil
}

// Decode parses data in the format implied by path's extension. Anything
// other than .toml is read as YAML.
func Decode(path string, data []byte) (*Config, error) {
	if IsTOML(path) {
		return FromTOML(data)
	}
	return FromYAML(data)
}

// IsTOML reports whether path names a TOML file.
func IsTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	out := *c
	out.Rules = slices.Clone(c.Rules)
	out.DisabledRules = slices.Clone(c.DisabledRules)
	out.Ignore = slices.Clone(c.Ignore)
	out.DisabledCategories = slices.Clone(c.DisabledCategories)
	out.Engine.Spelling = clonePtr(c.Engine.Spelling)
	out.Cache.Enabled = clonePtr(c.Cache.Enabled)
	out.Code.Enabled = clonePtr(c.Code.Enabled)

	if c.Categories != nil {
		out.Categories = make(map[string]CategoryConfig, len(c.Categories))
		for k, v := range c.Categories {
			out.Categories[k] = CategoryConfig{Enabled: clonePtr(v.Enabled), Severity: clonePtr(v.Severity)}
		}
	}
	if c.Suppressions != nil {
		out.Suppressions = maps.Clone(c.Suppressions)
		for k, v := range out.Suppressions {
			out.Suppressions[k] = slices.Clone(v)
		}
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
