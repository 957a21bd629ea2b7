// Package source holds an immutable view of a checked file and converts
// between byte offsets and line/column positions.
package source

import (
	"sort"

	"github.com/yaklabco/gramlint/pkg/span"
)

// Snapshot is the content of one file at the time it was checked.
type Snapshot struct {
	// Path is the file path. Empty for stdin or in-memory content.
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines indexes every line in Content.
	Lines []Line
}

// Line describes one line of a snapshot.
type Line struct {
	// Start is the offset of the first byte of the line.
	Start int

	// NewlineStart is where the line terminator begins. Equal to End for a
	// final line without a terminator.
	NewlineStart int

	// End is the offset just past the terminator.
	End int
}

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether both coordinates are positive.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// New builds a snapshot and its line index.
func New(path string, content []byte) *Snapshot {
	return &Snapshot{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// BuildLines indexes the lines of content. LF and CRLF endings are recognized.
func BuildLines(content []byte) []Line {
	if len(content) == 0 {
		return []Line{}
	}

	var lines []Line
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}

		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, Line{Start: lineStart, NewlineStart: newlineStart, End: idx + 1})
		lineStart = idx + 1
	}

	lines = append(lines, Line{Start: lineStart, NewlineStart: len(content), End: len(content)})

	return lines
}

// LineAt converts a byte offset to a position.
// Returns the zero Position if offset is negative or the snapshot is empty.
func (s *Snapshot) LineAt(offset int) Position {
	if offset < 0 || len(s.Lines) == 0 {
		return Position{}
	}

	if offset >= len(s.Content) {
		last := s.Lines[len(s.Lines)-1]
		return Position{Line: len(s.Lines), Column: offset - last.Start + 1}
	}

	idx := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].End > offset
	})
	if idx >= len(s.Lines) {
		idx = len(s.Lines) - 1
	}

	return Position{Line: idx + 1, Column: offset - s.Lines[idx].Start + 1}
}

// Offset converts a position back to a byte offset.
func (s *Snapshot) Offset(pos Position) (int, bool) {
	if pos.Line < 1 || pos.Line > len(s.Lines) || pos.Column < 1 {
		return 0, false
	}

	line := s.Lines[pos.Line-1]
	offset := line.Start + pos.Column - 1
	if offset > line.End {
		return 0, false
	}

	return offset, true
}

// LineContent returns a 1-based line without its terminator.
func (s *Snapshot) LineContent(line int) []byte {
	if line < 1 || line > len(s.Lines) {
		return nil
	}

	info := s.Lines[line-1]
	return s.Content[info.Start:info.NewlineStart]
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.Lines)
}

// Span converts a byte range to its start and end positions.
func (s *Snapshot) Span(r span.Range) (Position, Position) {
	r = span.ToSourceRange(len(s.Content), r)
	return s.LineAt(r.Start), s.LineAt(r.End)
}

// Text returns the bytes covered by r, clamped to the content.
func (s *Snapshot) Text(r span.Range) []byte {
	return r.Slice(s.Content)
}
