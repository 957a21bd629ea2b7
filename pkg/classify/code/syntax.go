package code

import "sort"

// Syntax describes the comment and string delimiters of a language.
type Syntax struct {
	LineComments  []string
	BlockComments [][2]string

	// Quotes delimit strings with backslash escapes.
	Quotes []byte

	// RawQuotes delimit strings without escapes.
	RawQuotes []byte

	// TripleQuotes enables Python style """ and ''' strings.
	TripleQuotes bool

	// DoubledQuoteEscape treats a doubled quote inside a string as an escaped
	// quote, as SQL does.
	DoubledQuoteEscape bool
}

//nolint:gochecknoglobals // language table
var (
	cLike = Syntax{
		LineComments:  []string{"//"},
		BlockComments: [][2]string{{"/*", "*/"}},
		Quotes:        []byte{'"', '\''},
	}

	hashComments = Syntax{
		LineComments: []string{"#"},
		Quotes:       []byte{'"', '\''},
	}

	// Single quotes in shell take no escapes.
	shell = Syntax{
		LineComments: []string{"#"},
		Quotes:       []byte{'"'},
		RawQuotes:    []byte{'\''},
	}

	syntaxes = map[string]Syntax{
		"go": {
			LineComments:  []string{"//"},
			BlockComments: [][2]string{{"/*", "*/"}},
			Quotes:        []byte{'"', '\''},
			RawQuotes:     []byte{'`'},
		},
		"c":          cLike,
		"cpp":        cLike,
		"c#":         cLike,
		"java":       cLike,
		"kotlin":     cLike,
		"swift":      cLike,
		"rust": {
			LineComments:  []string{"//"},
			BlockComments: [][2]string{{"/*", "*/"}},
			Quotes:        []byte{'"'},
		},
		"scala":      cLike,
		"javascript": withRaw(cLike, '`'),
		"typescript": withRaw(cLike, '`'),
		"python": {
			LineComments: []string{"#"},
			Quotes:       []byte{'"', '\''},
			TripleQuotes: true,
		},
		"bash":       shell,
		"ruby":       hashComments,
		"perl":       hashComments,
		"r":          hashComments,
		"yaml":       hashComments,
		"toml":       hashComments,
		"dockerfile": hashComments,
		"makefile":   hashComments,
		"sql": {
			LineComments:       []string{"--"},
			BlockComments:      [][2]string{{"/*", "*/"}},
			Quotes:             []byte{'\''},
			DoubledQuoteEscape: true,
		},
		"lua": {
			LineComments:  []string{"--"},
			BlockComments: [][2]string{{"--[[", "]]"}},
			Quotes:        []byte{'"', '\''},
		},
	}
)

func withRaw(s Syntax, raw ...byte) Syntax {
	s.RawQuotes = append(append([]byte(nil), s.RawQuotes...), raw...)
	return s
}

// Lookup returns the syntax for a language id.
func Lookup(lang string) (Syntax, bool) {
	s, ok := syntaxes[lang]
	return s, ok
}

// Languages returns the supported language ids, sorted.
func Languages() []string {
	out := make([]string, 0, len(syntaxes))
	for lang := range syntaxes {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
