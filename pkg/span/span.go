// Package span provides half-open offset ranges and the clamping used to map
// engine match offsets back onto source elements.
package span

import "fmt"

// Range is a half-open interval [Start, End) of offsets.
// Offsets are bytes unless a caller documents otherwise.
type Range struct {
	Start int
	End   int
}

// New returns the range [start, end).
func New(start, end int) Range {
	return Range{Start: start, End: end}
}

// Len returns the length of the range. Inverted ranges have zero length.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty returns true if the range covers no offsets.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains returns true if offset lies within [Start, End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsRange returns true if other lies entirely within r.
// An empty range at r.End is considered contained.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End && other.Start <= other.End
}

// Overlaps returns true if the two ranges share at least one offset.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Shift moves both bounds by delta.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Slice returns the part of content covered by r, clamped to content.
func (r Range) Slice(content []byte) []byte {
	c := ToSourceRange(len(content), r)
	return content[c.Start:c.End]
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// ToSourceRange clamps match to an element of length elementLen.
//
// The result always satisfies 0 <= Start <= End <= elementLen. A negative
// elementLen is treated as zero. When the clamped start passes the clamped
// end the result is the empty range at the clamped start.
func ToSourceRange(elementLen int, match Range) Range {
	if elementLen < 0 {
		elementLen = 0
	}

	start := clamp(match.Start, 0, elementLen)
	end := clamp(match.End, 0, elementLen)
	if end < start {
		end = start
	}

	return Range{Start: start, End: end}
}

// Relative converts absolute to a range relative to element, clamped to the
// element's length.
func Relative(element, absolute Range) Range {
	return ToSourceRange(element.Len(), absolute.Shift(-element.Start))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
