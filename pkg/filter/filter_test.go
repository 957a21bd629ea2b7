package filter_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/filter"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

func mk(start, end int, rule string, cat typo.Category, text string) typo.Typo {
	return typo.Typo{
		Location: typo.Location{Range: span.New(0, end-start), Absolute: span.New(start, end)},
		Info:     typo.Info{RuleID: rule, Category: cat},
		Text:     text,
	}
}

func TestFilterByContext(t *testing.T) {
	t.Parallel()

	var spans token.Spans
	spans.Add(span.New(0, 20), token.Heading)
	spans.Add(span.New(30, 50), token.ListItem)
	spans.Add(span.New(60, 70), token.InlineCode)

	tests := []struct {
		name string
		in   typo.Typo
		keep bool
	}{
		{"casing in heading", mk(2, 5, "UPPERCASE_SENTENCE_START", typo.Casing, "foo"), false},
		{"grammar in heading", mk(2, 5, "EN_A_VS_AN", typo.Grammar, "an"), true},
		{"typography in list item", mk(31, 33, "WHITESPACE_RULE", typo.Typography, "  "), false},
		{"spelling in list item", mk(31, 35, "MORFOLOGIK_RULE_EN_US", typo.Spelling, "teh"), true},
		{"anything in inline code", mk(61, 64, "EN_A_VS_AN", typo.Grammar, "an"), false},
		{"casing outside any structure", mk(22, 25, "UPPERCASE_SENTENCE_START", typo.Casing, "foo"), true},
		{"straddling heading end", mk(18, 24, "UPPERCASE_SENTENCE_START", typo.Casing, "foo"), true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			out := filter.Filter([]typo.Typo{testCase.in}, spans, filter.DefaultSuppressions())
			if testCase.keep {
				assert.Equal(t, []typo.Typo{testCase.in}, out)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestFilterIsOrderPreservingSubset(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	cats := typo.Categories()

	var spans token.Spans
	for i := range 10 {
		spans.Add(span.New(i*20, i*20+10), token.Structures()[rng.IntN(len(token.Structures()))])
	}

	for iter := range 200 {
		var in []typo.Typo
		for i := range rng.IntN(30) {
			start := rng.IntN(200)
			in = append(in, mk(start, start+rng.IntN(8), fmt.Sprintf("R%d", i), cats[rng.IntN(len(cats))], "w"))
		}

		out := filter.Filter(in, spans, filter.DefaultSuppressions(), filter.DisabledRules("R3"))

		require.LessOrEqual(t, len(out), len(in), "iteration %d", iter)
		j := 0
		for _, kept := range out {
			for j < len(in) && in[j].Info.RuleID != kept.Info.RuleID {
				j++
			}
			require.Less(t, j, len(in), "typo %s not from input", kept.Info.RuleID)
			assert.Equal(t, in[j], kept)
			j++
		}
	}
}

func TestExtraPredicates(t *testing.T) {
	t.Parallel()

	in := []typo.Typo{
		mk(0, 7, "MORFOLOGIK_RULE_EN_US", typo.Spelling, "Gramlnt"),
		mk(8, 11, "MORFOLOGIK_RULE_EN_US", typo.Spelling, "teh"),
		mk(12, 14, "EN_A_VS_AN", typo.Grammar, "an"),
		mk(15, 17, "DOUBLE_PUNCTUATION", typo.Punctuation, ",,"),
	}

	out := filter.Filter(in, nil, nil, filter.KnownWords([]string{"gramlnt"}))
	assert.Len(t, out, 3)
	assert.Equal(t, "teh", out[0].Text)

	out = filter.Filter(in, nil, nil, filter.DisabledRules("EN_A_VS_AN"))
	assert.Len(t, out, 3)

	out = filter.Filter(in, nil, nil, filter.DisabledCategories(typo.Spelling, typo.Punctuation))
	require.Len(t, out, 1)
	assert.Equal(t, "EN_A_VS_AN", out[0].Info.RuleID)

	assert.Empty(t, filter.Filter(nil, nil, filter.DefaultSuppressions()))
}

func TestKnownWordsOnlySpelling(t *testing.T) {
	t.Parallel()

	pred := filter.KnownWords([]string{"an"})
	assert.False(t, pred(mk(0, 2, "EN_A_VS_AN", typo.Grammar, "an")))
	assert.True(t, pred(mk(0, 2, "MORFOLOGIK_RULE_EN_US", typo.Spelling, "AN")))
}

func TestParseSuppressions(t *testing.T) {
	t.Parallel()

	table, err := filter.ParseSuppressions(map[string][]string{
		"table_cell": {"casing", "PUNCTUATION"},
		"blockquote": {"*"},
	})
	require.NoError(t, err)
	assert.True(t, table.Suppresses(token.TableCell, typo.Punctuation))
	assert.False(t, table.Suppresses(token.TableCell, typo.Grammar))
	assert.True(t, table.Suppresses(token.Blockquote, typo.Spelling))

	merged := filter.DefaultSuppressions().Merge(table)
	assert.True(t, merged.Suppresses(token.Heading, typo.Casing))
	assert.True(t, merged.Suppresses(token.TableCell, typo.Punctuation))

	_, err = filter.ParseSuppressions(map[string][]string{"sidebar": {"casing"}})
	require.Error(t, err)

	_, err = filter.ParseSuppressions(map[string][]string{"heading": {"nonsense"}})
	require.Error(t, err)
}

func TestParseSuppressionsEmptyList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		raw       map[string][]string
		structure token.Structure
		category  typo.Category
		want      bool
	}{
		{
			name:      "empty list clears the default",
			raw:       map[string][]string{"heading": {}},
			structure: token.Heading,
			category:  typo.Casing,
			want:      false,
		},
		{
			name:      "untouched structures keep the default",
			raw:       map[string][]string{"heading": {}},
			structure: token.ListItem,
			category:  typo.Casing,
			want:      true,
		},
		{
			name:      "nil list clears the default",
			raw:       map[string][]string{"table_cell": nil},
			structure: token.TableCell,
			category:  typo.Casing,
			want:      false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			custom, err := filter.ParseSuppressions(testCase.raw)
			require.NoError(t, err)

			merged := filter.DefaultSuppressions().Merge(custom)
			assert.Equal(t, testCase.want, merged.Suppresses(testCase.structure, testCase.category))
		})
	}
}
