package token

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yaklabco/gramlint/pkg/span"
)

// Structure is the closed set of structural contexts a token can sit in.
type Structure uint8

const (
	Plain Structure = iota
	Paragraph
	Heading
	ListItem
	Blockquote
	TableCell
	InlineCode
	CodeBlock
	Link
	Emphasis
	Comment
	StringLiteral
	Markup
)

//nolint:gochecknoglobals // lookup table
var structureNames = [...]string{
	Plain:         "plain",
	Paragraph:     "paragraph",
	Heading:       "heading",
	ListItem:      "list-item",
	Blockquote:    "blockquote",
	TableCell:     "table-cell",
	InlineCode:    "inline-code",
	CodeBlock:     "code-block",
	Link:          "link",
	Emphasis:      "emphasis",
	Comment:       "comment",
	StringLiteral: "string",
	Markup:        "markup",
}

func (s Structure) String() string {
	if int(s) < len(structureNames) {
		return structureNames[s]
	}
	return fmt.Sprintf("structure(%d)", s)
}

// Structures returns every structure in declaration order.
func Structures() []Structure {
	out := make([]Structure, len(structureNames))
	for i := range structureNames {
		out[i] = Structure(i)
	}
	return out
}

// ParseStructure parses a structure name. Underscores are accepted in place
// of hyphens and matching is case-insensitive.
func ParseStructure(name string) (Structure, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for i, n := range structureNames {
		if n == norm {
			return Structure(i), nil
		}
	}
	return Plain, fmt.Errorf("unknown structure %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Structure) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Structure) UnmarshalText(text []byte) error {
	parsed, err := ParseStructure(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StructSpan marks a byte range of the source as being inside a structure.
type StructSpan struct {
	Range     span.Range
	Structure Structure
}

// Spans is the structural context of a classified file. It answers
// "is this range inside a list item" style questions for filters.
type Spans []StructSpan

// Add appends a span. Empty ranges are ignored.
func (s *Spans) Add(r span.Range, structure Structure) {
	if r.IsEmpty() {
		return
	}
	*s = append(*s, StructSpan{Range: r, Structure: structure})
}

// Sort orders spans by start, then by descending length so that outer spans
// precede the spans nested in them.
func (s Spans) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Range.Start != s[j].Range.Start {
			return s[i].Range.Start < s[j].Range.Start
		}
		return s[i].Range.Len() > s[j].Range.Len()
	})
}

// Inside reports whether r lies within some span of the given structure.
func (s Spans) Inside(r span.Range, structure Structure) bool {
	for _, sp := range s {
		if sp.Structure == structure && sp.Range.ContainsRange(r) {
			return true
		}
	}
	return false
}

// At returns the structures whose spans contain offset, outermost first.
func (s Spans) At(offset int) []Structure {
	var hits []StructSpan
	for _, sp := range s {
		if sp.Range.Contains(offset) {
			hits = append(hits, sp)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Range.Len() > hits[j].Range.Len()
	})

	out := make([]Structure, len(hits))
	for i, h := range hits {
		out[i] = h.Structure
	}
	return out
}
