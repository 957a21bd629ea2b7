// Package filter drops typos that are expected in their structural context
// or that the user has opted out of.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// ContextProvider answers whether a range lies inside a structure.
// token.Spans implements it.
type ContextProvider interface {
	Inside(r span.Range, s token.Structure) bool
}

// SuppressionTable lists, per structure, the categories that are not
// reported inside it.
type SuppressionTable map[token.Structure][]typo.Category

// DefaultSuppressions returns the built-in table.
func DefaultSuppressions() SuppressionTable {
	return SuppressionTable{
		token.ListItem:   {typo.Casing, typo.Typography},
		token.Heading:    {typo.Casing},
		token.TableCell:  {typo.Casing},
		token.InlineCode: typo.Categories(),
		token.Markup:     typo.Categories(),
	}
}

// ParseSuppressions builds a table from structure and category names, as
// found in configuration files. "*" stands for every category and an empty
// list suppresses nothing.
func ParseSuppressions(raw map[string][]string) (SuppressionTable, error) {
	table := make(SuppressionTable, len(raw))
	for name, cats := range raw {
		structure, err := token.ParseStructure(name)
		if err != nil {
			return nil, err
		}
		// An empty list still replaces the default entry.
		table[structure] = []typo.Category{}
		for _, c := range cats {
			if strings.TrimSpace(c) == "*" {
				table[structure] = typo.Categories()
				break
			}
			cat, err := typo.ParseCategory(c)
			if err != nil {
				return nil, fmt.Errorf("suppressions for %s: %w", structure, err)
			}
			table[structure] = append(table[structure], cat)
		}
	}
	return table, nil
}

// Merge returns a copy of t with other's entries replacing t's.
func (t SuppressionTable) Merge(other SuppressionTable) SuppressionTable {
	out := make(SuppressionTable, len(t)+len(other))
	for s, cats := range t {
		out[s] = slices.Clone(cats)
	}
	for s, cats := range other {
		out[s] = slices.Clone(cats)
	}
	return out
}

// Suppresses reports whether category c is suppressed inside s.
func (t SuppressionTable) Suppresses(s token.Structure, c typo.Category) bool {
	return slices.Contains(t[s], c)
}

// Predicate reports whether a typo should be suppressed.
type Predicate func(typo.Typo) bool

// Filter returns the typos that survive the table and the extra predicates,
// in their original order. It never adds or modifies a typo.
func Filter(typos []typo.Typo, ctx ContextProvider, table SuppressionTable, extra ...Predicate) []typo.Typo {
	out := make([]typo.Typo, 0, len(typos))

	for _, t := range typos {
		if suppressedByContext(t, ctx, table) || anyMatch(t, extra) {
			continue
		}
		out = append(out, t)
	}

	return out
}

func suppressedByContext(t typo.Typo, ctx ContextProvider, table SuppressionTable) bool {
	if ctx == nil {
		return false
	}
	for structure, cats := range table {
		if slices.Contains(cats, t.Info.Category) && ctx.Inside(t.Location.Absolute, structure) {
			return true
		}
	}
	return false
}

func anyMatch(t typo.Typo, preds []Predicate) bool {
	for _, p := range preds {
		if p != nil && p(t) {
			return true
		}
	}
	return false
}

// KnownWords suppresses spelling typos whose text is one of words.
// Matching ignores case.
func KnownWords(words []string) Predicate {
	known := make(map[string]struct{}, len(words))
	for _, w := range words {
		known[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return func(t typo.Typo) bool {
		if t.Info.Category != typo.Spelling {
			return false
		}
		_, ok := known[strings.ToLower(t.Text)]
		return ok
	}
}

// DisabledRules suppresses typos raised by any of ids.
func DisabledRules(ids ...string) Predicate {
	return func(t typo.Typo) bool {
		return slices.Contains(ids, t.Info.RuleID)
	}
}

// DisabledCategories suppresses typos in any of cats.
func DisabledCategories(cats ...typo.Category) Predicate {
	return func(t typo.Typo) bool {
		return slices.Contains(cats, t.Info.Category)
	}
}
