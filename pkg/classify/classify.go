// Package classify splits file content into analyzable and opaque tokens.
//
// Language classifiers only report the segments they know about. Tile turns
// those segments into a token stream that covers the content exactly, so
// every byte is either prose or explicitly opaque.
package classify

import (
	"context"
	"sort"

	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

// NoGroup marks opaque tokens that sit between prose units.
const NoGroup = -1

// Segment is a span reported by a language classifier.
type Segment struct {
	Range     span.Range
	Kind      token.Kind
	Structure token.Structure
	Group     int
}

// Result is the outcome of classifying one file.
type Result struct {
	Tokens []token.Token

	// Spans records the structural context of the content for filters.
	Spans token.Spans

	// Language is the classifier's language id.
	Language string
}

// Classifier classifies the content of one file.
type Classifier interface {
	Classify(ctx context.Context, content []byte) (*Result, error)
	Name() string
}

// Tile builds a token stream covering content from segments.
//
// Segments are clipped to the content and to each other; the earlier one
// wins on overlap. Gaps become opaque tokens that join the surrounding group
// when both neighbours share it. Adjacent tokens of the same kind, group and
// structure are merged. Empty content yields no tokens.
func Tile(content []byte, segments []Segment) []token.Token {
	if len(content) == 0 {
		return nil
	}

	segs := make([]Segment, 0, len(segments))
	for _, s := range segments {
		s.Range = span.ToSourceRange(len(content), s.Range)
		if !s.Range.IsEmpty() {
			segs = append(segs, s)
		}
	}
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Range.Start < segs[j].Range.Start
	})

	var (
		out     []token.Token
		pos     int
		lastGrp = NoGroup
	)

	emit := func(kind token.Kind, r span.Range, structure token.Structure, group int) {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.Kind == kind && prev.Group == group && prev.Structure == structure && prev.Range.End == r.Start {
				prev.Range.End = r.End
				prev.Text = string(content[prev.Range.Start:prev.Range.End])
				return
			}
		}
		out = append(out, token.Token{
			Kind:      kind,
			Range:     r,
			Text:      string(content[r.Start:r.End]),
			Group:     group,
			Structure: structure,
		})
	}

	for _, s := range segs {
		if s.Range.Start < pos {
			s.Range.Start = pos
			if s.Range.IsEmpty() {
				continue
			}
		}

		if s.Range.Start > pos {
			group := NoGroup
			if lastGrp == s.Group {
				group = s.Group
			}
			emit(token.Opaque, span.New(pos, s.Range.Start), token.Plain, group)
		}

		emit(s.Kind, s.Range, s.Structure, s.Group)
		pos = s.Range.End
		lastGrp = s.Group
	}

	if pos < len(content) {
		emit(token.Opaque, span.New(pos, len(content)), token.Plain, NoGroup)
	}

	return out
}

// Opaque classifies everything as opaque. Used for binary or unknown input.
type Opaque struct{}

// Name returns "opaque".
func (Opaque) Name() string { return "opaque" }

// Classify returns one opaque token for non-empty content.
func (Opaque) Classify(_ context.Context, content []byte) (*Result, error) {
	return &Result{Tokens: Tile(content, nil), Language: "opaque"}, nil
}
