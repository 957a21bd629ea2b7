// Package markdown classifies Markdown documents with goldmark.
//
// Paragraph, heading, list and table text is analyzable. Inline code, raw
// HTML, autolinks, link destinations and markup markers are opaque. Fenced
// and indented code blocks are handed to the code classifier so that their
// comments are checked like any other source file.
package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/classify/code"
	"github.com/yaklabco/gramlint/pkg/langdetect"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
)

// Supported flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Options configures the classifier.
type Options struct {
	// Flavor is "gfm" or "commonmark". Anything else means GFM.
	Flavor string

	// CheckCode enables checking comments inside code blocks.
	CheckCode bool

	// Code configures the classifier used for code blocks.
	Code code.Options
}

// Classifier implements classify.Classifier for Markdown.
type Classifier struct {
	md   goldmark.Markdown
	opts Options
}

var _ classify.Classifier = (*Classifier)(nil)

// New creates a Markdown classifier.
func New(opts Options) *Classifier {
	var gmOpts []goldmark.Option
	if opts.Flavor != FlavorCommonMark {
		opts.Flavor = FlavorGFM
		gmOpts = append(gmOpts, goldmark.WithExtensions(extension.GFM))
	}
	return &Classifier{md: goldmark.New(gmOpts...), opts: opts}
}

// Name returns "markdown".
func (c *Classifier) Name() string {
	return langdetect.Markdown
}

// Flavor returns the configured flavor.
func (c *Classifier) Flavor() string {
	return c.opts.Flavor
}

// Classify implements classify.Classifier.
func (c *Classifier) Classify(ctx context.Context, content []byte) (*classify.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return &classify.Result{Language: langdetect.Markdown}, nil
	}

	doc := c.md.Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	w := &walker{
		ctx:      ctx,
		content:  content,
		opts:     c.opts,
		skipUpTo: frontMatterEnd(content),
	}
	if err := ast.Walk(doc, w.visit); err != nil {
		return nil, fmt.Errorf("classify markdown: %w", err)
	}

	w.spans.Sort()
	return &classify.Result{
		Tokens:   classify.Tile(content, w.segs),
		Spans:    w.spans,
		Language: langdetect.Markdown,
	}, nil
}

type walker struct {
	ctx     context.Context //nolint:containedctx // scoped to one Classify call
	content []byte
	opts    Options

	segs  []classify.Segment
	spans token.Spans

	group     int
	nextGroup int
	structure token.Structure

	// Bytes before skipUpTo belong to front matter.
	skipUpTo int
}

func (w *walker) startGroup(structure token.Structure) {
	w.group = w.nextGroup
	w.nextGroup++
	w.structure = structure
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	if err := w.ctx.Err(); err != nil {
		return ast.WalkStop, err
	}

	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.addSpan(n, token.Paragraph)
		if _, inCell := n.Parent().(*east.TableCell); !inCell {
			structure := token.Paragraph
			if _, inItem := n.Parent().(*ast.ListItem); inItem {
				structure = token.ListItem
			}
			w.startGroup(structure)
		}

	case *ast.Heading:
		w.addSpan(n, token.Heading)
		w.startGroup(token.Heading)

	case *east.TableCell:
		w.addSpan(n, token.TableCell)
		w.startGroup(token.TableCell)

	case *ast.ListItem:
		w.addSpan(n, token.ListItem)

	case *ast.Blockquote:
		w.addSpan(n, token.Blockquote)

	case *ast.Emphasis, *east.Strikethrough:
		w.addSpan(n, token.Emphasis)

	case *ast.Link, *ast.Image:
		w.addSpan(n, token.Link)

	case *ast.CodeSpan:
		if r, ok := nodeRange(w.content, n); ok {
			w.spans.Add(widen(w.content, r, '`'), token.InlineCode)
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML, *ast.HTMLBlock, *ast.AutoLink:
		if r, ok := nodeRange(w.content, n); ok {
			w.spans.Add(r, token.Markup)
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		lang := ""
		if node.Info != nil {
			lang = langdetect.Normalize(string(node.Language(w.content)))
		}
		return ast.WalkSkipChildren, w.codeBlock(n, lang)

	case *ast.CodeBlock:
		return ast.WalkSkipChildren, w.codeBlock(n, "")

	case *ast.Text:
		w.text(node)
	}

	return ast.WalkContinue, nil
}

func (w *walker) text(t *ast.Text) {
	seg := t.Segment
	start, end := seg.Start, seg.Stop
	if start < w.skipUpTo || start >= end {
		return
	}

	// A soft break continues the sentence on the next line.
	if t.SoftLineBreak() {
		if end < len(w.content) && w.content[end] == '\r' {
			end++
		}
		if end < len(w.content) && w.content[end] == '\n' {
			end++
		}
	}

	w.segs = append(w.segs, classify.Segment{
		Range:     span.New(start, end),
		Kind:      token.Text,
		Structure: w.structure,
		Group:     w.group,
	})
}

func (w *walker) codeBlock(n ast.Node, lang string) error {
	lines := n.Lines()
	if lines.Len() == 0 {
		return nil
	}
	r := span.New(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
	w.spans.Add(r, token.CodeBlock)

	if !w.opts.CheckCode || r.Start < w.skipUpTo {
		return nil
	}

	body := w.content[r.Start:r.End]
	if lang == "" || lang == langdetect.Text {
		lang = langdetect.Detect(body)
	}
	cls, ok := code.New(lang, w.opts.Code)
	if !ok {
		return nil
	}

	segs, spans, err := cls.Segments(w.ctx, body, r.Start, w.nextGroup)
	if err != nil {
		return err
	}
	for _, s := range segs {
		w.nextGroup = max(w.nextGroup, s.Group+1)
	}
	w.segs = append(w.segs, segs...)
	w.spans = append(w.spans, spans...)
	return nil
}

func (w *walker) addSpan(n ast.Node, structure token.Structure) {
	if r, ok := nodeRange(w.content, n); ok {
		w.spans.Add(r, structure)
	}
}

// nodeRange returns the byte range covered by n's text and lines.
func nodeRange(content []byte, n ast.Node) (span.Range, bool) {
	var (
		r  span.Range
		ok bool
	)
	add := func(start, end int) {
		if start > end {
			return
		}
		if !ok {
			r, ok = span.New(start, end), true
			return
		}
		r.Start = min(r.Start, start)
		r.End = max(r.End, end)
	}

	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			add(v.Segment.Start, v.Segment.Stop)
		case *ast.RawHTML:
			for i := range v.Segments.Len() {
				s := v.Segments.At(i)
				add(s.Start, s.Stop)
			}
		case *ast.AutoLink:
			if lr, found := autoLinkRange(content, v); found {
				add(lr.Start, lr.End)
			}
			return ast.WalkSkipChildren, nil
		default:
			if c.Type() == ast.TypeBlock {
				if lines := c.Lines(); lines.Len() > 0 {
					add(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return r, ok
}

// autoLinkRange locates an autolink in content. goldmark does not export
// the link's segment, so the label is searched for after the previous
// sibling and widened over the angle brackets of the <...> form.
func autoLinkRange(content []byte, n *ast.AutoLink) (span.Range, bool) {
	label := n.Label(content)
	if len(label) == 0 {
		return span.Range{}, false
	}

	from := -1
	for prev := n.PreviousSibling(); prev != nil && from < 0; prev = prev.PreviousSibling() {
		if r, ok := nodeRange(content, prev); ok {
			from = r.End
		}
	}
	if from < 0 {
		from = blockStart(n)
	}

	i := bytes.Index(content[from:], label)
	if i < 0 {
		return span.Range{}, false
	}
	r := span.New(from+i, from+i+len(label))
	if r.Start > 0 && content[r.Start-1] == '<' && r.End < len(content) && content[r.End] == '>' {
		r.Start--
		r.End++
	}
	return r, true
}

// blockStart returns the offset of the first line of the block holding n.
func blockStart(n ast.Node) int {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == ast.TypeBlock {
			if lines := p.Lines(); lines != nil && lines.Len() > 0 {
				return lines.At(0).Start
			}
		}
	}
	return 0
}

// widen grows r over adjacent delimiter bytes, such as code span backticks.
func widen(content []byte, r span.Range, delim byte) span.Range {
	for r.Start > 0 && content[r.Start-1] == delim {
		r.Start--
	}
	for r.End < len(content) && content[r.End] == delim {
		r.End++
	}
	return r
}

// frontMatterEnd returns the offset just past a leading YAML or TOML front
// matter block, or 0 when there is none.
func frontMatterEnd(content []byte) int {
	for _, fence := range []string{"---", "+++"} {
		open := fence + "\n"
		if !bytes.HasPrefix(content, []byte(open)) && !bytes.HasPrefix(content, []byte(fence+"\r\n")) {
			continue
		}
		rest := content[len(fence):]
		idx := bytes.Index(rest, []byte("\n"+fence))
		if idx < 0 {
			return 0
		}
		end := len(fence) + idx + 1 + len(fence)
		if nl := bytes.IndexByte(content[end:], '\n'); nl >= 0 && len(bytes.TrimSpace(content[end:end+nl])) == 0 {
			end += nl + 1
		}
		return end
	}
	return 0
}
