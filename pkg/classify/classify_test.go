package classify_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

func textSeg(start, end, group int) classify.Segment {
	return classify.Segment{Range: span.New(start, end), Kind: token.Text, Structure: token.Paragraph, Group: group}
}

func TestTileEmptyContent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, classify.Tile(nil, []classify.Segment{textSeg(0, 3, 0)}))
	assert.Empty(t, classify.Tile([]byte{}, nil))
}

func TestTileFillsGaps(t *testing.T) {
	t.Parallel()

	content := []byte("# Title\n\nSome `code` here.\n")
	tokens := classify.Tile(content, []classify.Segment{
		textSeg(2, 7, 0),
		textSeg(9, 14, 1),
		textSeg(20, 26, 1),
	})

	require.NoError(t, token.Validate(tokens, len(content)))
	require.Len(t, tokens, 7)

	assert.Equal(t, "# ", tokens[0].Text)
	assert.Equal(t, classify.NoGroup, tokens[0].Group)
	assert.Equal(t, "Title", tokens[1].Text)
	assert.Equal(t, "\n\n", tokens[2].Text)
	assert.Equal(t, classify.NoGroup, tokens[2].Group)
	assert.Equal(t, "`code`", tokens[4].Text)
	assert.Equal(t, 1, tokens[4].Group, "gap inside a group stays in the group")
	assert.Equal(t, token.Opaque, tokens[4].Kind)
	assert.Equal(t, " here.", tokens[5].Text)
	assert.Equal(t, "\n", tokens[6].Text)
}

func TestTileClipsOverlapsAndMerges(t *testing.T) {
	t.Parallel()

	content := []byte("abcdefghij")
	tokens := classify.Tile(content, []classify.Segment{
		textSeg(0, 4, 0),
		textSeg(2, 6, 0),
		textSeg(8, 20, 0),
		textSeg(-3, 1, 0),
	})

	require.NoError(t, token.Validate(tokens, len(content)))
	require.Len(t, tokens, 3)
	assert.Equal(t, "abcdef", tokens[0].Text)
	assert.Equal(t, "gh", tokens[1].Text)
	assert.Equal(t, "ij", tokens[2].Text)
}

func TestTileAlwaysTiles(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		n := rng.IntN(40)
		content := make([]byte, n)
		for i := range content {
			content[i] = byte('a' + rng.IntN(26))
		}

		var segs []classify.Segment
		for range rng.IntN(8) {
			a, b := rng.IntN(n+10)-5, rng.IntN(n+10)-5
			kind := token.Text
			if rng.IntN(3) == 0 {
				kind = token.Opaque
			}
			segs = append(segs, classify.Segment{Range: span.New(a, b), Kind: kind, Group: rng.IntN(3)})
		}

		tokens := classify.Tile(content, segs)
		require.NoError(t, token.Validate(tokens, n), "content %q segments %v", content, segs)
		assert.Equal(t, string(content), token.Concat(tokens))
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	content := []byte("  First paragraph\nstill first.\n\n\nSecond one.  \n")
	res, err := classify.PlainText{}.Classify(context.Background(), content)
	require.NoError(t, err)
	require.NoError(t, token.Validate(res.Tokens, len(content)))

	var texts []string
	var groups []int
	for _, tok := range res.Tokens {
		if tok.IsText() {
			texts = append(texts, tok.Text)
			groups = append(groups, tok.Group)
		}
	}
	assert.Equal(t, []string{"First paragraph\nstill first.", "Second one."}, texts)
	assert.Equal(t, []int{0, 1}, groups)
	assert.True(t, res.Spans.Inside(span.New(2, 7), token.Paragraph))

	empty, err := classify.PlainText{}.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Tokens)
}

func TestOpaque(t *testing.T) {
	t.Parallel()

	res, err := classify.Opaque{}.Classify(context.Background(), []byte("\x00\x01binary"))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, token.Opaque, res.Tokens[0].Kind)
}

type namedClassifier string

func (n namedClassifier) Name() string { return string(n) }
func (n namedClassifier) Classify(context.Context, []byte) (*classify.Result, error) {
	return &classify.Result{}, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := classify.NewRegistry(nil)
	reg.Register("markdown", namedClassifier("md"), ".md", ".MARKDOWN")
	reg.Register("go", namedClassifier("go"), ".go")

	assert.Equal(t, "md", reg.ForPath("README.md", nil).Name())
	assert.Equal(t, "md", reg.ForPath("notes.markdown", nil).Name())
	assert.Equal(t, "go", reg.ForPath("main.go", nil).Name())
	assert.Equal(t, "text", reg.ForPath("LICENSE", nil).Name())

	c, ok := reg.Lookup("golang")
	require.True(t, ok)
	assert.Equal(t, "go", c.Name())

	assert.Equal(t, []string{".go", ".markdown", ".md"}, reg.Extensions())
	assert.Equal(t, []string{"go", "markdown"}, reg.Languages())
}
