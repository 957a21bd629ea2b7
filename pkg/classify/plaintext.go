package classify

import (
	"bytes"
	"context"

	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

// PlainText treats every blank-line separated block as a paragraph.
type PlainText struct{}

// Name returns "text".
func (PlainText) Name() string { return "text" }

// Classify implements Classifier.
func (PlainText) Classify(ctx context.Context, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segs := Paragraphs(content, 0, 0)

	var spans token.Spans
	for _, s := range segs {
		spans.Add(s.Range, token.Paragraph)
	}

	return &Result{Tokens: Tile(content, segs), Spans: spans, Language: "text"}, nil
}

// Paragraphs splits content into text segments, one per block of non-blank
// lines, trimmed of surrounding whitespace. Offsets are shifted by base and
// groups are numbered from firstGroup.
func Paragraphs(content []byte, base, firstGroup int) []Segment {
	var (
		segs  []Segment
		group = firstGroup
		start = -1
		end   = -1
	)

	flush := func() {
		if start >= 0 {
			segs = append(segs, Segment{
				Range:     span.New(base+start, base+end),
				Kind:      token.Text,
				Structure: token.Paragraph,
				Group:     group,
			})
			group++
		}
		start, end = -1, -1
	}

	offset := 0
	for _, line := range bytes.SplitAfter(content, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			flush()
			offset += len(line)
			continue
		}

		lead := bytes.Index(line, trimmed)
		if start < 0 {
			start = offset + lead
		}
		end = offset + lead + len(trimmed)
		offset += len(line)
	}
	flush()

	return segs
}
