// Package fix turns typo suggestions into byte edits, applies them and
// renders the outcome as a unified diff.
package fix

import "github.com/yaklabco/gramlint/pkg/typo"

// TextEdit replaces the bytes [StartOffset, EndOffset) with NewText.
type TextEdit struct {
	StartOffset int
	EndOffset   int
	NewText     string

	// RuleID is the rule whose suggestion produced the edit, if any.
	RuleID string
}

// IsNoop reports whether the edit changes nothing when applied to content.
func (e TextEdit) IsNoop(content []byte) bool {
	if e.StartOffset < 0 || e.EndOffset > len(content) || e.StartOffset > e.EndOffset {
		return false
	}
	return string(content[e.StartOffset:e.EndOffset]) == e.NewText
}

// ForTypo returns the edit that applies t's first suggestion. It reports
// false when t has no suggestion or the suggestion equals the covered text.
func ForTypo(t typo.Typo) (TextEdit, bool) {
	if len(t.Suggestions) == 0 || t.Suggestions[0] == t.Text {
		return TextEdit{}, false
	}
	abs := t.Location.Absolute
	return TextEdit{
		StartOffset: abs.Start,
		EndOffset:   abs.End,
		NewText:     t.Suggestions[0],
		RuleID:      t.Info.RuleID,
	}, true
}

// ForTypos collects the edits of every fixable typo, in input order.
func ForTypos(typos []typo.Typo) []TextEdit {
	var edits []TextEdit
	for _, t := range typos {
		if e, ok := ForTypo(t); ok {
			edits = append(edits, e)
		}
	}
	return edits
}
