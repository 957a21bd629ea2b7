package code

import (
	"bytes"
	"strings"

	"github.com/yaklabco/gramlint/pkg/span"
)

type pieceKind uint8

const (
	pieceComment pieceKind = iota
	pieceString
)

// piece is a comment or string literal located in the source.
type piece struct {
	kind  pieceKind
	r     span.Range
	line  bool // line comment
	quote string
}

// scan finds comments and strings with a single forward pass.
func scan(content []byte, syn Syntax) []piece {
	var out []piece

	for i := 0; i < len(content); {
		if p, ok := matchBlockComment(content, i, syn); ok {
			out = append(out, p)
			i = p.r.End
			continue
		}
		if p, ok := matchLineComment(content, i, syn); ok {
			out = append(out, p)
			i = p.r.End
			continue
		}
		if p, ok := matchString(content, i, syn); ok {
			out = append(out, p)
			i = p.r.End
			continue
		}
		i++
	}

	return out
}

func matchLineComment(content []byte, i int, syn Syntax) (piece, bool) {
	for _, marker := range syn.LineComments {
		if !bytes.HasPrefix(content[i:], []byte(marker)) {
			continue
		}
		end := bytes.IndexByte(content[i:], '\n')
		if end < 0 {
			end = len(content)
		} else {
			end += i
		}
		if end > i && content[end-1] == '\r' {
			end--
		}
		return piece{kind: pieceComment, r: span.New(i, end), line: true}, true
	}
	return piece{}, false
}

func matchBlockComment(content []byte, i int, syn Syntax) (piece, bool) {
	for _, pair := range syn.BlockComments {
		if !bytes.HasPrefix(content[i:], []byte(pair[0])) {
			continue
		}
		rest := content[i+len(pair[0]):]
		end := bytes.Index(rest, []byte(pair[1]))
		if end < 0 {
			return piece{kind: pieceComment, r: span.New(i, len(content))}, true
		}
		return piece{kind: pieceComment, r: span.New(i, i+len(pair[0])+end+len(pair[1]))}, true
	}
	return piece{}, false
}

func matchString(content []byte, i int, syn Syntax) (piece, bool) {
	c := content[i]

	if syn.TripleQuotes && (c == '"' || c == '\'') {
		triple := strings.Repeat(string(c), 3)
		if bytes.HasPrefix(content[i:], []byte(triple)) {
			end := bytes.Index(content[i+3:], []byte(triple))
			if end < 0 {
				return piece{kind: pieceString, r: span.New(i, len(content)), quote: triple}, true
			}
			return piece{kind: pieceString, r: span.New(i, i+3+end+3), quote: triple}, true
		}
	}

	if bytes.IndexByte(syn.RawQuotes, c) >= 0 {
		end := bytes.IndexByte(content[i+1:], c)
		if end < 0 {
			return piece{kind: pieceString, r: span.New(i, len(content)), quote: string(c)}, true
		}
		return piece{kind: pieceString, r: span.New(i, i+1+end+1), quote: string(c)}, true
	}

	if bytes.IndexByte(syn.Quotes, c) < 0 {
		return piece{}, false
	}

	for j := i + 1; j < len(content); j++ {
		switch content[j] {
		case '\\':
			if !syn.DoubledQuoteEscape {
				j++
			}
		case '\n':
			// Unterminated on this line.
			return piece{kind: pieceString, r: span.New(i, j), quote: string(c)}, true
		case c:
			if syn.DoubledQuoteEscape && j+1 < len(content) && content[j+1] == c {
				j++
				continue
			}
			return piece{kind: pieceString, r: span.New(i, j+1), quote: string(c)}, true
		}
	}
	return piece{kind: pieceString, r: span.New(i, len(content)), quote: string(c)}, true
}
