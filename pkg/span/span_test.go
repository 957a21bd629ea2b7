package span_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gramlint/pkg/span"
)

func TestToSourceRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		elementLen int
		match      span.Range
		want       span.Range
	}{
		{"inside", 10, span.New(2, 4), span.New(2, 4)},
		{"end past element", 5, span.New(3, 6), span.New(3, 5)},
		{"negative start", 5, span.New(-2, 3), span.New(0, 3)},
		{"both past end", 5, span.New(7, 9), span.New(5, 5)},
		{"inverted", 10, span.New(6, 2), span.New(6, 6)},
		{"inverted and past end", 4, span.New(9, 1), span.New(4, 4)},
		{"zero length element", 0, span.New(0, 3), span.New(0, 0)},
		{"negative element length", -3, span.New(1, 2), span.New(0, 0)},
		{"full element", 7, span.New(0, 7), span.New(0, 7)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := span.ToSourceRange(testCase.elementLen, testCase.match)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestToSourceRangeAlwaysInBounds(t *testing.T) {
	t.Parallel()

	for length := -2; length <= 12; length++ {
		for start := -5; start <= 15; start++ {
			for end := -5; end <= 15; end++ {
				got := span.ToSourceRange(length, span.New(start, end))

				upper := max(length, 0)
				if got.Start < 0 || got.Start > got.End || got.End > upper {
					t.Fatalf("ToSourceRange(%d, [%d,%d)) = %v out of bounds", length, start, end, got)
				}
			}
		}
	}
}

func TestRelative(t *testing.T) {
	t.Parallel()

	element := span.New(10, 20)

	assert.Equal(t, span.New(2, 5), span.Relative(element, span.New(12, 15)))
	assert.Equal(t, span.New(0, 10), span.Relative(element, span.New(5, 30)))
	assert.Equal(t, span.New(0, 0), span.Relative(element, span.New(0, 3)))
}

func TestRangePredicates(t *testing.T) {
	t.Parallel()

	r := span.New(3, 8)

	assert.Equal(t, 5, r.Len())
	assert.False(t, r.IsEmpty())
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(8))
	assert.True(t, r.ContainsRange(span.New(8, 8)))
	assert.False(t, r.ContainsRange(span.New(2, 4)))
	assert.True(t, r.Overlaps(span.New(7, 12)))
	assert.False(t, r.Overlaps(span.New(8, 12)))
	assert.Equal(t, span.New(5, 10), r.Shift(2))
	assert.Equal(t, 0, span.New(5, 2).Len())
	assert.Equal(t, "[3,8)", r.String())
	assert.Equal(t, []byte("lo"), span.New(3, 8).Slice([]byte("hello")))
}
