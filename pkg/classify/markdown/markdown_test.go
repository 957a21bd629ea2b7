package markdown_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/classify/markdown"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

// prose joins the text tokens of each group in order of appearance.
func prose(t *testing.T, opts markdown.Options, src string) ([]string, token.Spans) {
	t.Helper()

	res, err := markdown.New(opts).Classify(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NoError(t, token.Validate(res.Tokens, len(src)))

	var (
		order  []int
		byGrp  = map[int]*strings.Builder{}
		groups []string
	)
	for _, tok := range res.Tokens {
		if !tok.IsText() {
			continue
		}
		b, ok := byGrp[tok.Group]
		if !ok {
			b = &strings.Builder{}
			byGrp[tok.Group] = b
			order = append(order, tok.Group)
		}
		b.WriteString(tok.Text)
	}
	for _, g := range order {
		groups = append(groups, byGrp[g].String())
	}
	return groups, res.Spans
}

func spanOf(src, needle string) span.Range {
	i := strings.Index(src, needle)
	return span.New(i, i+len(needle))
}

func TestParagraphSoftBreak(t *testing.T) {
	t.Parallel()

	groups, spans := prose(t, markdown.Options{}, "This is an test\nof the parser.\n")

	assert.Equal(t, []string{"This is an test\nof the parser."}, groups)
	assert.True(t, spans.Inside(span.New(0, 4), token.Paragraph))
}

func TestStructures(t *testing.T) {
	t.Parallel()

	src := "# Heading here\n\n- first item\n- second `code` item\n\n> quoted words\n"
	groups, spans := prose(t, markdown.Options{}, src)

	assert.Equal(t, []string{"Heading here", "first item", "second  item", "quoted words"}, groups)
	assert.True(t, spans.Inside(spanOf(src, "Heading"), token.Heading))
	assert.True(t, spans.Inside(spanOf(src, "first"), token.ListItem))
	assert.True(t, spans.Inside(spanOf(src, "`code`"), token.InlineCode))
	assert.True(t, spans.Inside(spanOf(src, "quoted"), token.Blockquote))
	assert.False(t, spans.Inside(spanOf(src, "Heading"), token.ListItem))
}

func TestLinksKeepTextDropDestination(t *testing.T) {
	t.Parallel()

	src := "See [the docs](https://example.com/x) now.\n"
	groups, spans := prose(t, markdown.Options{}, src)

	assert.Equal(t, []string{"See the docs now."}, groups)
	assert.True(t, spans.Inside(spanOf(src, "the docs"), token.Link))
}

func TestRawHTMLIsOpaque(t *testing.T) {
	t.Parallel()

	src := "Some <span class=\"x\">marked</span> text.\n"
	groups, _ := prose(t, markdown.Options{}, src)

	require.Len(t, groups, 1)
	assert.NotContains(t, groups[0], "class")
}

func TestAutoLinksAreOpaque(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		link   string
		groups []string
	}{
		{
			name:   "angle brackets",
			src:    "See <https://example.com/docs> for details.\n",
			link:   "<https://example.com/docs>",
			groups: []string{"See  for details."},
		},
		{
			name:   "email",
			src:    "Mail <team@example.com> today.\n",
			link:   "<team@example.com>",
			groups: []string{"Mail  today."},
		},
		{
			name:   "bare url",
			src:    "Visit https://example.com/a now.\n",
			link:   "https://example.com/a",
			groups: []string{"Visit  now."},
		},
		{
			name:   "repeated link",
			src:    "Go to https://example.com or <https://example.com> now.\n",
			link:   "<https://example.com>",
			groups: []string{"Go to  or  now."},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			groups, spans := prose(t, markdown.Options{}, testCase.src)

			assert.Equal(t, testCase.groups, groups)
			assert.True(t, spans.Inside(spanOf(testCase.src, testCase.link), token.Markup))
		})
	}
}

func TestFencedCode(t *testing.T) {
	t.Parallel()

	src := "Intro text.\n\n```python\n# Comment in code.\nx = 1\n```\n"

	groups, spans := prose(t, markdown.Options{}, src)
	assert.Equal(t, []string{"Intro text."}, groups)
	assert.True(t, spans.Inside(spanOf(src, "x = 1"), token.CodeBlock))

	groups, spans = prose(t, markdown.Options{CheckCode: true}, src)
	assert.Equal(t, []string{"Intro text.", "Comment in code."}, groups)
	assert.True(t, spans.Inside(spanOf(src, "Comment"), token.Comment))
}

func TestTables(t *testing.T) {
	t.Parallel()

	src := "| Name | Note |\n| --- | --- |\n| a | an test |\n"

	groups, spans := prose(t, markdown.Options{Flavor: markdown.FlavorGFM}, src)
	assert.Equal(t, []string{"Name", "Note", "a", "an test"}, groups)
	assert.True(t, spans.Inside(spanOf(src, "an test"), token.TableCell))

	_, spans = prose(t, markdown.Options{Flavor: markdown.FlavorCommonMark}, src)
	assert.False(t, spans.Inside(spanOf(src, "an test"), token.TableCell))
}

func TestFrontMatterSkipped(t *testing.T) {
	t.Parallel()

	groups, _ := prose(t, markdown.Options{}, "---\ntitle: An test\n---\n\nBody text.\n")
	assert.Equal(t, []string{"Body text."}, groups)
}

func TestEmptyAndCancelled(t *testing.T) {
	t.Parallel()

	c := markdown.New(markdown.Options{})
	assert.Equal(t, markdown.FlavorGFM, c.Flavor())
	assert.Equal(t, "markdown", c.Name())

	res, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Tokens)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Classify(ctx, []byte("text"))
	require.ErrorIs(t, err, context.Canceled)
}
