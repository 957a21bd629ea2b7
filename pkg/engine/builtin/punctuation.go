package builtin

import (
	"unicode"

	"github.com/yaklabco/gramlint/pkg/engine"
)

func isClosingPunct(r rune) bool {
	switch r {
	case ',', '.', ';', ':', '!', '?', ')':
		return true
	}
	return false
}

func isLowerLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.IsLower(r)
}

// checkPunctuationSpace flags "word ," and "( word".
func (e *Engine) checkPunctuationSpace(runes []rune, _ []word) []engine.RawMatch {
	var out []engine.RawMatch

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '(' {
			j := i + 1
			for j < len(runes) && runes[j] == ' ' {
				j++
			}
			if j > i+1 && j < len(runes) && !unicode.IsSpace(runes[j]) {
				out = append(out, engine.RawMatch{
					Start:        i,
					End:          j,
					RuleID:       RulePunctuationSpace,
					Message:      "Don't put a space after the opening parenthesis.",
					Replacements: []string{"("},
				})
			}
			continue
		}

		if r != ' ' || i == 0 || unicode.IsSpace(runes[i-1]) {
			continue
		}

		j := i
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		if j >= len(runes) || !isClosingPunct(runes[j]) {
			continue
		}
		// ".gitignore", ".5" and "..." are not misplaced punctuation.
		if (runes[j] == '.' || runes[j] == ':') && j+1 < len(runes) && !unicode.IsSpace(runes[j+1]) {
			continue
		}
		// Reported by the parenthesis branch.
		if runes[i-1] == '(' {
			continue
		}

		out = append(out, engine.RawMatch{
			Start:        i,
			End:          j + 1,
			RuleID:       RulePunctuationSpace,
			Message:      "Don't put a space before the punctuation.",
			Replacements: []string{string(runes[j])},
		})
		i = j
	}

	return out
}

func (e *Engine) checkDoublePunctuation(runes []rune, _ []word) []engine.RawMatch {
	var out []engine.RawMatch

	for i := 0; i+1 < len(runes); i++ {
		a, b := runes[i], runes[i+1]

		double := false
		switch {
		case a == b && (a == ',' || a == ';'):
			double = true
		case a == '.' && b == ',', a == ',' && b == '.':
			double = true
		}
		if !double {
			continue
		}
		// Leave ellipses and runs longer than two alone.
		if i+2 < len(runes) && (runes[i+2] == a || runes[i+2] == b) {
			i += 2
			continue
		}

		out = append(out, engine.RawMatch{
			Start:        i,
			End:          i + 2,
			RuleID:       RuleDoublePunct,
			Message:      "Two consecutive punctuation marks.",
			Replacements: []string{string(a)},
		})
		i++
	}

	return out
}
