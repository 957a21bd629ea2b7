// Package code classifies source code: comment text and prose-like string
// literals are analyzable, everything else is opaque.
package code

import (
	"bytes"
	"context"
	"strings"
	"unicode"

	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

// DefaultMinStringWords is the number of words a string literal needs before
// it is treated as prose.
const DefaultMinStringWords = 3

// Options tunes a Classifier.
type Options struct {
	// Strings enables checking string literals.
	Strings bool

	// MinStringWords skips shorter literals. Zero means DefaultMinStringWords.
	MinStringWords int
}

// Classifier implements classify.Classifier for one language.
type Classifier struct {
	lang   string
	syntax Syntax
	opts   Options
}

var _ classify.Classifier = (*Classifier)(nil)

// New returns a classifier for lang, or false if the language has no known
// comment syntax.
func New(lang string, opts Options) (*Classifier, bool) {
	syn, ok := Lookup(lang)
	if !ok {
		return nil, false
	}
	if opts.MinStringWords <= 0 {
		opts.MinStringWords = DefaultMinStringWords
	}
	return &Classifier{lang: lang, syntax: syn, opts: opts}, true
}

// Name returns the language id.
func (c *Classifier) Name() string {
	return c.lang
}

// Classify implements classify.Classifier.
func (c *Classifier) Classify(ctx context.Context, content []byte) (*classify.Result, error) {
	segs, spans, err := c.Segments(ctx, content, 0, 0)
	if err != nil {
		return nil, err
	}
	return &classify.Result{
		Tokens:   classify.Tile(content, segs),
		Spans:    spans,
		Language: c.lang,
	}, nil
}

// Segments classifies content that starts at byte base of a larger file,
// numbering groups from firstGroup. Markdown uses it for fenced code.
func (c *Classifier) Segments(ctx context.Context, content []byte, base, firstGroup int) ([]classify.Segment, token.Spans, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pieces, ok, err := locate(ctx, c.lang, content, c.syntax)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		pieces = scan(content, c.syntax)
	}

	var (
		segs  []classify.Segment
		spans token.Spans
		group = firstGroup - 1
		prev  *piece
	)

	for i := range pieces {
		p := pieces[i]

		var body []classify.Segment
		structure := token.Comment
		switch p.kind {
		case pieceComment:
			body = c.commentBody(content, p)
		case pieceString:
			if !c.opts.Strings {
				continue
			}
			structure = token.StringLiteral
			body = c.stringBody(content, p)
		}
		if len(body) == 0 {
			prev = nil
			continue
		}

		if !continuesComment(content, prev, p) {
			group++
		}
		for _, s := range body {
			s.Range = s.Range.Shift(base)
			s.Group = group
			s.Structure = structure
			segs = append(segs, s)
		}
		spans.Add(p.r.Shift(base), structure)
		prev = &pieces[i]
	}

	return segs, spans, nil
}

// continuesComment reports whether p is a line comment on the line right
// after prev, so both read as one paragraph.
func continuesComment(content []byte, prev *piece, p piece) bool {
	if prev == nil || !prev.line || !p.line {
		return false
	}
	between := content[prev.r.End:p.r.Start]
	return bytes.Count(between, []byte("\n")) == 1 && len(bytes.TrimSpace(between)) == 0
}

func (c *Classifier) commentBody(content []byte, p piece) []classify.Segment {
	text := content[p.r.Start:p.r.End]

	if p.line {
		marker := ""
		for _, m := range c.syntax.LineComments {
			if bytes.HasPrefix(text, []byte(m)) {
				marker = m
				break
			}
		}
		inner := len(marker)
		if isDirective(text[inner:], p.r.Start == 0 && marker == "#") {
			return nil
		}
		// "///", "//!" and "##" decorations are markers too.
		for inner < len(text) && strings.IndexByte(marker+"!", text[inner]) >= 0 {
			inner++
		}
		return lineSegments(text, inner, len(text), p.r.Start, false)
	}

	for _, pair := range c.syntax.BlockComments {
		if !bytes.HasPrefix(text, []byte(pair[0])) {
			continue
		}
		start, end := len(pair[0]), len(text)
		if len(text) >= len(pair[0])+len(pair[1]) && bytes.HasSuffix(text, []byte(pair[1])) {
			end -= len(pair[1])
		}
		// "/**" doc comments.
		for start < end && text[start] == '*' {
			start++
		}
		return lineSegments(text, start, end, p.r.Start, true)
	}
	return nil
}

// isDirective recognizes tool directives such as //go:build, //nolint:all
// and a leading shebang.
func isDirective(body []byte, shebangPosition bool) bool {
	if shebangPosition && bytes.HasPrefix(body, []byte("!")) {
		return true
	}
	if len(body) == 0 || unicode.IsSpace(rune(body[0])) {
		return false
	}
	word := body
	if idx := bytes.IndexAny(body, " \t"); idx >= 0 {
		word = body[:idx]
	}
	return bytes.IndexByte(word, ':') > 0
}

// lineSegments emits the trimmed text of each line in text[from:to].
// Whitespace-only gaps between lines are kept inside the segment; with
// stars set, a leading "*" on a line is treated as decoration.
func lineSegments(text []byte, from, to, base int, stars bool) []classify.Segment {
	var segs []classify.Segment

	lineStart := from
	for lineStart <= to {
		lineEnd := bytes.IndexByte(text[lineStart:to], '\n')
		if lineEnd < 0 {
			lineEnd = to
		} else {
			lineEnd += lineStart
		}

		s, e := lineStart, lineEnd
		for s < e && unicode.IsSpace(rune(text[s])) {
			s++
		}
		if stars && s < e && text[s] == '*' {
			s++
			for s < e && unicode.IsSpace(rune(text[s])) {
				s++
			}
		}
		for e > s && unicode.IsSpace(rune(text[e-1])) {
			e--
		}

		if e > s {
			r := span.New(base+s, base+e)
			if n := len(segs); n > 0 && len(bytes.TrimSpace(text[segs[n-1].Range.End-base:s])) == 0 {
				segs[n-1].Range.End = r.End
			} else {
				segs = append(segs, classify.Segment{Range: r, Kind: token.Text})
			}
		}

		if lineEnd >= to {
			break
		}
		lineStart = lineEnd + 1
	}

	return segs
}

func (c *Classifier) stringBody(content []byte, p piece) []classify.Segment {
	text := content[p.r.Start:p.r.End]

	// Skip prefixes such as r"", f"", b"".
	open := 0
	for open < len(text) && unicode.IsLetter(rune(text[open])) {
		open++
	}
	raw := open > 0 && bytes.ContainsAny(text[:open], "rR")
	if open == 0 && c.syntax.TripleQuotes {
		raw = hasRawPrefix(content, p.r.Start)
	}

	quote := p.quote
	if quote == "" && open < len(text) {
		quote = string(text[open])
		if c.syntax.TripleQuotes && bytes.HasPrefix(text[open:], []byte(strings.Repeat(quote, 3))) {
			quote = strings.Repeat(quote, 3)
		}
	}
	if bytes.IndexByte(c.syntax.RawQuotes, quote[0]) >= 0 {
		raw = true
	}

	from := open + len(quote)
	to := len(text)
	if to-from >= len(quote) && bytes.HasSuffix(text[from:], []byte(quote)) {
		to -= len(quote)
	}
	if from >= to {
		return nil
	}
	if len(strings.Fields(string(text[from:to]))) < c.opts.MinStringWords {
		return nil
	}

	var segs []classify.Segment
	runStart := from
	flush := func(end int) {
		if end > runStart {
			segs = append(segs, classify.Segment{Range: span.New(p.r.Start+runStart, p.r.Start+end), Kind: token.Text})
		}
	}

	for i := from; i < to; i++ {
		if raw || text[i] != '\\' || c.syntax.DoubledQuoteEscape {
			continue
		}
		flush(i)
		i += escapeLen(text[i:to]) - 1
		runStart = i + 1
	}
	flush(to)

	return segs
}

// hasRawPrefix reports whether the string at start is preceded by a raw
// string prefix such as r or rb that the lexical scanner left outside it.
func hasRawPrefix(content []byte, start int) bool {
	i := start
	for i > 0 && i > start-2 && bytes.IndexByte([]byte("rRbBfFuU"), content[i-1]) >= 0 {
		i--
	}
	if i == start || (i > 0 && isIdent(content[i-1])) {
		return false
	}
	return bytes.ContainsAny(content[i:start], "rR")
}

func isIdent(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// escapeLen returns the byte length of the escape sequence at the start of s.
func escapeLen(s []byte) int {
	if len(s) < 2 {
		return len(s)
	}

	hex := 0
	switch s[1] {
	case 'x':
		hex = 2
	case 'u':
		hex = 4
	case 'U':
		hex = 8
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := 2
		for n < len(s) && n < 4 && s[n] >= '0' && s[n] <= '7' {
			n++
		}
		return n
	default:
		return 2
	}

	n := 2
	for n < len(s) && n < 2+hex && isHex(s[n]) {
		n++
	}
	return n
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
