package builtin

import (
	"strings"
	"unicode"
)

//nolint:gochecknoglobals // pronunciation exceptions
var (
	// Vowel letters pronounced with a leading consonant sound.
	consonantSoundPrefixes = []string{
		"uni", "use", "usa", "usu", "uti", "ure", "uro", "eu", "ewe", "one", "once", "ubiq", "uk",
	}

	// Consonant letters pronounced with a leading vowel sound.
	vowelSoundPrefixes = []string{"hour", "honest", "honor", "honour", "heir", "herb"}
)

// Acronym letters whose spoken name starts with a vowel sound.
const vowelSoundLetters = "AEFHILMNORSX"

func startsWithVowelSound(w string) bool {
	if w == "" {
		return false
	}

	if len([]rune(w)) > 1 && isAllUpper(w) {
		first := []rune(w)[0]
		return strings.ContainsRune(vowelSoundLetters, first)
	}

	lw := strings.ToLower(w)
	for _, p := range vowelSoundPrefixes {
		if strings.HasPrefix(lw, p) {
			return true
		}
	}
	for _, p := range consonantSoundPrefixes {
		if strings.HasPrefix(lw, p) {
			return false
		}
	}

	first := []rune(lw)[0]
	if unicode.IsDigit(first) {
		// "an 8", "an 11"
		return first == '8' || strings.HasPrefix(lw, "11") || strings.HasPrefix(lw, "18")
	}
	return strings.ContainsRune("aeiou", first)
}
