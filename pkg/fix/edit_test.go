package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gramlint/pkg/fix"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/typo"
)

func typoAt(start, end int, text string, suggestions ...string) typo.Typo {
	return typo.Typo{
		Location:    typo.Location{Absolute: span.New(start, end)},
		Info:        typo.Info{RuleID: "EN_A_VS_AN", Category: typo.Grammar},
		Text:        text,
		Suggestions: suggestions,
	}
}

func TestForTypo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typo   typo.Typo
		want   fix.TextEdit
		wantOK bool
	}{
		{
			name:   "first suggestion wins",
			typo:   typoAt(8, 10, "an", "a", "the"),
			want:   fix.TextEdit{StartOffset: 8, EndOffset: 10, NewText: "a", RuleID: "EN_A_VS_AN"},
			wantOK: true,
		},
		{
			name: "no suggestion",
			typo: typoAt(8, 10, "an"),
		},
		{
			name: "suggestion equals text",
			typo: typoAt(8, 10, "an", "an"),
		},
		{
			name:   "empty suggestion deletes",
			typo:   typoAt(4, 9, " the ", ""),
			want:   fix.TextEdit{StartOffset: 4, EndOffset: 9, RuleID: "EN_A_VS_AN"},
			wantOK: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, ok := fix.ForTypo(testCase.typo)
			assert.Equal(t, testCase.wantOK, ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestForTypos(t *testing.T) {
	t.Parallel()

	edits := fix.ForTypos([]typo.Typo{
		typoAt(0, 4, "this", "This"),
		typoAt(8, 10, "an"),
		typoAt(8, 10, "an", "a"),
	})
	assert.Len(t, edits, 2)
	assert.Equal(t, "This", edits[0].NewText)
	assert.Equal(t, "a", edits[1].NewText)
}

func TestIsNoop(t *testing.T) {
	t.Parallel()

	content := []byte("this is an test")
	assert.True(t, fix.TextEdit{StartOffset: 8, EndOffset: 10, NewText: "an"}.IsNoop(content))
	assert.False(t, fix.TextEdit{StartOffset: 8, EndOffset: 10, NewText: "a"}.IsNoop(content))
	assert.False(t, fix.TextEdit{StartOffset: 8, EndOffset: 99, NewText: "a"}.IsNoop(content))
}
