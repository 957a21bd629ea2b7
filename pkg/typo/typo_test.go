package typo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/typo"
)

func TestDefaultCategoryTable(t *testing.T) {
	t.Parallel()

	table := typo.DefaultCategoryTable()

	tests := []struct {
		ruleID string
		want   typo.Category
	}{
		{"EN_A_VS_AN", typo.Grammar},
		{"MORFOLOGIK_RULE_EN_US", typo.Spelling},
		{"EN_US_SPELLING_RULE", typo.Spelling},
		{"UPPERCASE_SENTENCE_START", typo.Casing},
		{"COMMA_PARENTHESIS_WHITESPACE", typo.Typography},
		{"GERMAN_WORD_REPEAT_RULE", typo.Grammar},
		{"PUNCTUATION_PARAGRAPH_END", typo.Punctuation},
		{"SOMETHING_ELSE", typo.Other},
		{"", typo.Other},
	}

	for _, testCase := range tests {
		t.Run(testCase.ruleID, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, table.Lookup(testCase.ruleID))
		})
	}
}

func TestResolvePrefersEngineCategory(t *testing.T) {
	t.Parallel()

	table := typo.DefaultCategoryTable()

	assert.Equal(t, typo.Spelling, table.Resolve("EN_A_VS_AN", "TYPOS"))
	assert.Equal(t, typo.Grammar, table.Resolve("EN_A_VS_AN", ""))
	assert.Equal(t, typo.Grammar, table.Resolve("EN_A_VS_AN", "not-a-category"))

	var nilTable *typo.CategoryTable
	assert.Equal(t, typo.Other, nilTable.Lookup("EN_A_VS_AN"))
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, err := typo.ParseCategory("casing")
	require.NoError(t, err)
	assert.Equal(t, typo.Casing, c)

	c, err = typo.ParseCategory("CONFUSED_WORDS")
	require.NoError(t, err)
	assert.Equal(t, typo.Semantics, c)

	_, err = typo.ParseCategory("VIBES")
	require.Error(t, err)

	var parsed typo.Category
	require.NoError(t, parsed.UnmarshalText([]byte("punctuation")))
	assert.Equal(t, typo.Punctuation, parsed)
	assert.True(t, parsed.IsKnown())
	assert.False(t, typo.Category("NOPE").IsKnown())
}

func at(start, end int, rule string) typo.Typo {
	return typo.Typo{
		Location: typo.Location{Absolute: span.New(start, end)},
		Info:     typo.Info{RuleID: rule, Category: typo.Grammar},
	}
}

func TestSortAndDedupe(t *testing.T) {
	t.Parallel()

	typos := []typo.Typo{at(5, 9, "B"), at(1, 3, "A"), at(5, 9, "A"), at(1, 3, "A"), at(5, 7, "C")}
	typo.Sort(typos)
	typos = typo.Dedupe(typos)

	require.Len(t, typos, 4)
	assert.Equal(t, []string{"A", "C", "A", "B"}, []string{
		typos[0].Info.RuleID, typos[1].Info.RuleID, typos[2].Info.RuleID, typos[3].Info.RuleID,
	})
	assert.Equal(t, map[typo.Category]int{typo.Grammar: 4}, typo.CountByCategory(typos))
}

func TestWithLocationCopiesSuggestions(t *testing.T) {
	t.Parallel()

	orig := typo.Typo{Suggestions: []string{"a", "b"}}
	moved := orig.WithLocation(typo.Location{Element: 2, Range: span.New(0, 1)})
	moved.Suggestions[0] = "z"

	assert.Equal(t, "a", orig.Suggestions[0])
	assert.Equal(t, 2, moved.Location.Element)
}
