package builtin

import "unicode"

// word is a run of letters (with inner apostrophes or hyphens) measured in
// rune offsets.
type word struct {
	start, end int
	text       string
}

func splitWords(runes []rune) []word {
	var (
		out   []word
		start = -1
	)

	flush := func(end int) {
		if start < 0 {
			return
		}
		// Trailing joiners belong to punctuation, not the word.
		for end > start && isJoiner(runes[end-1]) {
			end--
		}
		if end > start {
			out = append(out, word{start: start, end: end, text: string(runes[start:end])})
		}
		start = -1
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
		case isJoiner(r) && start >= 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			// inner apostrophe or hyphen
		default:
			flush(i)
		}
	}
	flush(len(runes))

	return out
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '-'
}

// onlySpaceBetween reports whether runes[from:to] is non-empty whitespace.
func onlySpaceBetween(runes []rune, from, to int) bool {
	if from >= to {
		return false
	}
	for _, r := range runes[from:to] {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}

func hasInnerUpper(s string) bool {
	for i, r := range []rune(s) {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// sentenceStarts returns the indexes of words that begin a sentence.
func sentenceStarts(runes []rune, words []word) map[int]bool {
	starts := make(map[int]bool)
	if len(words) == 0 {
		return starts
	}
	starts[0] = true

	for i := 1; i < len(words); i++ {
		prev := words[i-1]
		if endsSentence(runes, prev) {
			starts[i] = true
		}
	}
	return starts
}

//nolint:gochecknoglobals // abbreviations that end with a period mid-sentence
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "etc": true, "vs": true, "cf": true,
	"mr": true, "mrs": true, "dr": true, "st": true, "g": true, "e": true,
}

func endsSentence(runes []rune, prev word) bool {
	i := prev.end
	if i >= len(runes) {
		return false
	}

	switch runes[i] {
	case '.':
		if abbreviations[lower(prev.text)] {
			return false
		}
	case '!', '?':
	default:
		return false
	}

	// Require whitespace after the terminator, allowing closing quotes.
	j := i + 1
	for j < len(runes) && (runes[j] == '"' || runes[j] == ')' || runes[j] == '\'') {
		j++
	}
	return j < len(runes) && unicode.IsSpace(runes[j])
}
