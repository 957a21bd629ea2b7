// Package typo defines the problems reported by a grammar check.
package typo

import (
	"sort"

	"github.com/yaklabco/gramlint/pkg/span"
)

// Info identifies what rule fired and why.
type Info struct {
	RuleID   string
	Category Category
	Message  string
}

// Location places a typo in the source.
type Location struct {
	// Element is the index of the token the typo starts in.
	Element int

	// Range is relative to the start of that token.
	Range span.Range

	// Absolute is the byte range in the whole file.
	Absolute span.Range
}

// Typo is one reported problem. Values are immutable; use the With methods
// to derive modified copies.
type Typo struct {
	Location    Location
	Info        Info
	Suggestions []string

	// Text is the source text the typo covers.
	Text string
}

// WithLocation returns a copy of t at loc.
func (t Typo) WithLocation(loc Location) Typo {
	t.Location = loc
	t.Suggestions = append([]string(nil), t.Suggestions...)
	return t
}

// Key identifies a typo for deduplication.
type Key struct {
	Start, End int
	RuleID     string
}

// Key returns the deduplication key of t.
func (t Typo) Key() Key {
	return Key{Start: t.Location.Absolute.Start, End: t.Location.Absolute.End, RuleID: t.Info.RuleID}
}

// Sort orders typos by absolute start, then end, then rule id.
func Sort(typos []Typo) {
	sort.SliceStable(typos, func(i, j int) bool {
		a, b := typos[i].Location.Absolute, typos[j].Location.Absolute
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return typos[i].Info.RuleID < typos[j].Info.RuleID
	})
}

// Dedupe removes typos sharing a Key, keeping the first, and preserves order.
func Dedupe(typos []Typo) []Typo {
	seen := make(map[Key]struct{}, len(typos))
	out := typos[:0:0]
	for _, t := range typos {
		if _, dup := seen[t.Key()]; dup {
			continue
		}
		seen[t.Key()] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CountByCategory tallies typos per category.
func CountByCategory(typos []Typo) map[Category]int {
	counts := make(map[Category]int)
	for _, t := range typos {
		counts[t.Info.Category]++
	}
	return counts
}
