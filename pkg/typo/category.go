package typo

import (
	"fmt"
	"strings"
)

// Category groups typos by the kind of problem they report.
type Category string

// Known categories.
const (
	Casing      Category = "CASING"
	Punctuation Category = "PUNCTUATION"
	Spelling    Category = "SPELLING"
	Grammar     Category = "GRAMMAR"
	Style       Category = "STYLE"
	Typography  Category = "TYPOGRAPHY"
	Redundancy  Category = "REDUNDANCY"
	Semantics   Category = "SEMANTICS"
	Other       Category = "OTHER"
)

// Categories returns every known category.
func Categories() []Category {
	return []Category{Casing, Punctuation, Spelling, Grammar, Style, Typography, Redundancy, Semantics, Other}
}

//nolint:gochecknoglobals // engine category aliases
var categoryAliases = map[string]Category{
	"TYPOS":               Spelling,
	"MISSPELLING":         Spelling,
	"CONFUSED_WORDS":      Semantics,
	"COLLOCATIONS":        Grammar,
	"NONSTANDARD_PHRASES": Style,
	"REDUNDANCY":          Redundancy,
	"PLAIN_ENGLISH":       Style,
	"WIKIPEDIA":           Style,
	"MISC":                Other,
	"CASE":                Casing,
	"CAPITALIZATION":      Casing,
	"TYPOGRAPHICAL":       Typography,
	"WHITESPACE":          Typography,
	"FALSE_FRIENDS":       Semantics,
}

// ParseCategory resolves a category name or an engine category id.
func ParseCategory(name string) (Category, error) {
	norm := strings.ToUpper(strings.TrimSpace(name))
	for _, c := range Categories() {
		if string(c) == norm {
			return c, nil
		}
	}
	if c, ok := categoryAliases[norm]; ok {
		return c, nil
	}
	return Other, fmt.Errorf("unknown category %q", name)
}

// IsKnown reports whether c is one of the declared categories.
func (c Category) IsKnown() bool {
	for _, k := range Categories() {
		if k == c {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Pattern matches rule ids for a CategoryTable entry.
type Pattern struct {
	// Prefix and Suffix must both match when set. Contains is checked last.
	Prefix   string
	Suffix   string
	Contains string
	Category Category
}

func (p Pattern) matches(ruleID string) bool {
	if p.Prefix == "" && p.Suffix == "" && p.Contains == "" {
		return false
	}
	return strings.HasPrefix(ruleID, p.Prefix) &&
		strings.HasSuffix(ruleID, p.Suffix) &&
		strings.Contains(ruleID, p.Contains)
}

func (p Pattern) weight() int {
	return len(p.Prefix) + len(p.Suffix) + len(p.Contains)
}

// CategoryTable resolves the category of a rule id when the engine does not
// supply one.
type CategoryTable struct {
	exact    map[string]Category
	patterns []Pattern
}

// NewCategoryTable creates a table from exact ids and patterns.
func NewCategoryTable(exact map[string]Category, patterns []Pattern) *CategoryTable {
	table := &CategoryTable{exact: make(map[string]Category, len(exact))}
	for id, c := range exact {
		table.exact[id] = c
	}
	table.patterns = append(table.patterns, patterns...)
	return table
}

// DefaultCategoryTable covers the rule ids of the built-in engine and the
// common LanguageTool families.
func DefaultCategoryTable() *CategoryTable {
	return NewCategoryTable(
		map[string]Category{
			"EN_A_VS_AN":                   Grammar,
			"ENGLISH_WORD_REPEAT_RULE":     Grammar,
			"UPPERCASE_SENTENCE_START":     Casing,
			"COMMA_PARENTHESIS_WHITESPACE": Typography,
			"DOUBLE_PUNCTUATION":           Punctuation,
			"WHITESPACE_RULE":              Typography,
			"EN_QUOTES":                    Typography,
			"SENTENCE_WHITESPACE":          Typography,
		},
		[]Pattern{
			{Prefix: "MORFOLOGIK_", Category: Spelling},
			{Suffix: "_SPELLING_RULE", Category: Spelling},
			{Prefix: "HUNSPELL_", Category: Spelling},
			{Contains: "_WORD_REPEAT", Category: Grammar},
			{Contains: "WHITESPACE", Category: Typography},
			{Prefix: "PUNCTUATION_", Category: Punctuation},
			{Contains: "COMMA", Category: Punctuation},
			{Contains: "UPPERCASE", Category: Casing},
			{Contains: "LOWERCASE", Category: Casing},
			{Contains: "REDUNDAN", Category: Redundancy},
		},
	)
}

// Lookup returns the category for ruleID. Exact ids win; among patterns the
// most specific match wins. Unknown ids resolve to Other.
func (t *CategoryTable) Lookup(ruleID string) Category {
	if t == nil {
		return Other
	}
	if c, ok := t.exact[ruleID]; ok {
		return c
	}

	best, bestWeight := Other, -1
	for _, p := range t.patterns {
		if p.matches(ruleID) && p.weight() > bestWeight {
			best, bestWeight = p.Category, p.weight()
		}
	}
	return best
}

// Resolve prefers an engine-supplied category name and falls back to Lookup.
func (t *CategoryTable) Resolve(ruleID, engineCategory string) Category {
	if engineCategory != "" {
		if c, err := ParseCategory(engineCategory); err == nil {
			return c
		}
	}
	return t.Lookup(ruleID)
}
