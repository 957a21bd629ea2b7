package fix

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff is a unified diff between the original and fixed content of a file.
type Diff struct {
	Path string

	Original []byte
	Modified []byte

	Hunks []DiffHunk

	// Additions and Deletions count changed lines.
	Additions int
	Deletions int
}

// DiffHunk is one "@@" section. Starts are 1-based line numbers.
type DiffHunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int

	Lines []DiffLine
}

// DiffLine is a line of a hunk, without its prefix character.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind says whether a line is kept, added or removed.
type DiffLineKind int

const (
	DiffLineContext DiffLineKind = iota
	DiffLineAdd
	DiffLineRemove
)

// contextLines surround each change.
const contextLines = 3

// GenerateDiff returns the unified diff from original to modified, or nil
// when their lines are equal.
func GenerateDiff(path string, original, modified []byte) *Diff {
	origLines := splitLines(original)
	modLines := splitLines(modified)
	if slices.Equal(origLines, modLines) {
		return nil
	}

	diff := &Diff{Path: path, Original: original, Modified: modified}

	matcher := difflib.NewMatcher(origLines, modLines)
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		hunk := newHunk(group)
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, line := range origLines[op.I1:op.I2] {
					hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineContext, Content: line})
				}
			case 'r', 'd', 'i':
				for _, line := range origLines[op.I1:op.I2] {
					hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineRemove, Content: line})
					diff.Deletions++
				}
				for _, line := range modLines[op.J1:op.J2] {
					hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineAdd, Content: line})
					diff.Additions++
				}
			}
		}
		diff.Hunks = append(diff.Hunks, hunk)
	}

	if len(diff.Hunks) == 0 {
		return nil
	}
	return diff
}

// newHunk computes the header numbers of a group of opcodes. An empty side
// points at the line before the change, as in diff -u.
func newHunk(group []difflib.OpCode) DiffHunk {
	first, last := group[0], group[len(group)-1]
	hunk := DiffHunk{
		OriginalStart: first.I1 + 1,
		OriginalCount: last.I2 - first.I1,
		ModifiedStart: first.J1 + 1,
		ModifiedCount: last.J2 - first.J1,
	}
	if hunk.OriginalCount == 0 {
		hunk.OriginalStart--
	}
	if hunk.ModifiedCount == 0 {
		hunk.ModifiedStart--
	}
	return hunk
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String renders the diff without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, hunk := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalCount, hunk.ModifiedStart, hunk.ModifiedCount)
		for _, line := range hunk.Lines {
			b.WriteByte(line.Kind.prefix())
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FullString renders the diff with the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges reports whether the diff has at least one hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

func (k DiffLineKind) prefix() byte {
	switch k {
	case DiffLineAdd:
		return '+'
	case DiffLineRemove:
		return '-'
	default:
		return ' '
	}
}

// splitLines splits content on "\n", dropping the empty element after a
// final newline.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
