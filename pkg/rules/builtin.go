package rules

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Built-in rule names.
const (
	DoubledQuote       = "doubled-quote"
	CollapseWhitespace = "collapse-whitespace"
	LeadingWhitespace  = "leading-whitespace"
	NewlineToSpace     = "newline-to-space"
	NBSPToSpace        = "nbsp-to-space"
	CurlyApostrophe    = "curly-apostrophe"
	TabToSpace         = "tab-to-space"
)

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}

//nolint:gochecknoglobals // registry of stateless built-ins
var builtinIgnore = map[string]IgnoreFunc{
	// `""` in a string literal is an escaped quote; keep only the first.
	DoubledQuote: func(history string, current rune) bool {
		last, ok := lastRune(history)
		return ok && current == '"' && last == '"'
	},
	CollapseWhitespace: func(history string, current rune) bool {
		last, ok := lastRune(history)
		return ok && unicode.IsSpace(current) && unicode.IsSpace(last)
	},
	LeadingWhitespace: func(history string, current rune) bool {
		return history == "" && unicode.IsSpace(current)
	},
}

//nolint:gochecknoglobals // registry of stateless built-ins
var builtinReplace = map[string]ReplaceFunc{
	NewlineToSpace: func(_ string, current rune) (rune, bool) {
		if current == '\n' || current == '\r' {
			return ' ', true
		}
		return current, false
	},
	NBSPToSpace: func(_ string, current rune) (rune, bool) {
		if current == '\u00a0' || current == '\u202f' {
			return ' ', true
		}
		return current, false
	},
	CurlyApostrophe: func(_ string, current rune) (rune, bool) {
		if current == '\u2019' || current == '\u02bc' {
			return '\'', true
		}
		return current, false
	},
	TabToSpace: func(_ string, current rune) (rune, bool) {
		if current == '\t' {
			return ' ', true
		}
		return current, false
	},
}

// DefaultNames is the rule selection used when configuration names none.
func DefaultNames() []string {
	return []string{
		DoubledQuote,
		CollapseWhitespace,
		NewlineToSpace,
		TabToSpace,
		NBSPToSpace,
		CurlyApostrophe,
	}
}

// Available lists every built-in rule name, sorted.
func Available() []string {
	names := make([]string, 0, len(builtinIgnore)+len(builtinReplace))
	for name := range builtinIgnore {
		names = append(names, name)
	}
	for name := range builtinReplace {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default built-in set.
func Default() *Set {
	set, err := FromNames(DefaultNames())
	if err != nil {
		panic(err)
	}
	return set
}

// FromNames builds a set from built-in rule names, keeping the given order
// within each of the ignore and replace lists.
func FromNames(names []string) (*Set, error) {
	var (
		ignore  []IgnoreRule
		replace []ReplaceRule
		unknown []string
	)

	for _, name := range names {
		if fn, ok := builtinIgnore[name]; ok {
			ignore = append(ignore, IgnoreRule{Name: name, Fn: fn})
			continue
		}
		if fn, ok := builtinReplace[name]; ok {
			replace = append(replace, ReplaceRule{Name: name, Fn: fn})
			continue
		}
		unknown = append(unknown, name)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown rules: %s", strings.Join(unknown, ", "))
	}

	return NewSet(ignore, replace)
}
