// Package token defines the classified spans a checker sees: analyzable
// prose and opaque regions that are never sent to a grammar engine.
package token

import (
	"errors"
	"fmt"

	"github.com/yaklabco/gramlint/pkg/span"
)

// Kind says whether a token's text is prose to check.
type Kind uint8

const (
	// Opaque text is structural syntax, code, markup or anything else the
	// engine must not see.
	Opaque Kind = iota

	// Text is analyzable prose.
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "opaque"
}

// Token is one classified span of a fragment.
type Token struct {
	Kind  Kind
	Range span.Range

	// Text is the source text of Range.
	Text string

	// Group identifies the prose unit (paragraph, heading, comment) the token
	// belongs to. Tokens of one group are checked together.
	Group int

	// Structure is the innermost structural context of the token.
	Structure Structure
}

// IsText reports whether the token is analyzable.
func (t Token) IsText() bool {
	return t.Kind == Text
}

// ErrInvalidTiling is returned by Validate.
var ErrInvalidTiling = errors.New("tokens do not tile content")

// Validate checks that tokens are contiguous, non-overlapping and cover
// [0, contentLen) exactly. Empty content must produce no tokens.
func Validate(tokens []Token, contentLen int) error {
	if len(tokens) == 0 {
		if contentLen == 0 {
			return nil
		}
		return fmt.Errorf("%w: no tokens for %d bytes", ErrInvalidTiling, contentLen)
	}

	if tokens[0].Range.Start != 0 {
		return fmt.Errorf("%w: first token starts at %d", ErrInvalidTiling, tokens[0].Range.Start)
	}

	for i, tok := range tokens {
		if tok.Range.IsEmpty() {
			return fmt.Errorf("%w: token %d is empty at %d", ErrInvalidTiling, i, tok.Range.Start)
		}
		if i > 0 && tok.Range.Start != tokens[i-1].Range.End {
			return fmt.Errorf("%w: gap or overlap before token %d (%d != %d)",
				ErrInvalidTiling, i, tok.Range.Start, tokens[i-1].Range.End)
		}
	}

	if last := tokens[len(tokens)-1].Range.End; last != contentLen {
		return fmt.Errorf("%w: last token ends at %d, content is %d bytes", ErrInvalidTiling, last, contentLen)
	}

	return nil
}

// Concat joins the text of tokens in order.
func Concat(tokens []Token) string {
	size := 0
	for _, tok := range tokens {
		size += len(tok.Text)
	}

	buf := make([]byte, 0, size)
	for _, tok := range tokens {
		buf = append(buf, tok.Text...)
	}

	return string(buf)
}

// Fragment is the tokens of a single group, in source order.
type Fragment struct {
	Group  int
	Tokens []Token
}

// HasText reports whether any token of the fragment is analyzable.
func (f Fragment) HasText() bool {
	for _, tok := range f.Tokens {
		if tok.IsText() {
			return true
		}
	}
	return false
}

// Fragments splits tokens into consecutive runs sharing a Group.
// Opaque gaps between groups carry their own group and hold no text.
func Fragments(tokens []Token) []Fragment {
	var out []Fragment

	for _, tok := range tokens {
		if len(out) > 0 && out[len(out)-1].Group == tok.Group {
			out[len(out)-1].Tokens = append(out[len(out)-1].Tokens, tok)
			continue
		}
		out = append(out, Fragment{Group: tok.Group, Tokens: []Token{tok}})
	}

	return out
}
