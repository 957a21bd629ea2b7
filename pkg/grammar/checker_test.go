package grammar_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/classify"
	"github.com/yaklabco/gramlint/pkg/engine"
	"github.com/yaklabco/gramlint/pkg/engine/builtin"
	"github.com/yaklabco/gramlint/pkg/grammar"
	"github.com/yaklabco/gramlint/pkg/rules"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// wordEngine reports every occurrence of word under rule, in rune offsets.
func wordEngine(word, rule string) engine.Engine {
	return engine.Func(func(_ context.Context, text string) ([]engine.RawMatch, error) {
		var out []engine.RawMatch
		from := 0
		for {
			i := strings.Index(text[from:], word)
			if i < 0 {
				return out, nil
			}
			start := utf8.RuneCountInString(text[:from+i])
			out = append(out, engine.RawMatch{
				Start:        start,
				End:          start + utf8.RuneCountInString(word),
				RuleID:       rule,
				Replacements: []string{"a"},
			})
			from += i + len(word)
		}
	})
}

func plainTokens(t *testing.T, content string) []token.Token {
	t.Helper()

	res, err := classify.PlainText{}.Classify(context.Background(), []byte(content))
	require.NoError(t, err)
	return res.Tokens
}

func newChecker(eng engine.Engine, opts ...grammar.Option) *grammar.Checker {
	return grammar.New(eng, append([]grammar.Option{grammar.WithLogger(logging.Discard())}, opts...)...)
}

func TestCheckArticleExample(t *testing.T) {
	t.Parallel()

	eng := engine.Func(func(_ context.Context, text string) ([]engine.RawMatch, error) {
		require.Equal(t, "this is an test", text)
		return []engine.RawMatch{{Start: 8, End: 10, RuleID: "EN_A_VS_AN", Message: "Use a"}}, nil
	})

	res, err := newChecker(eng).Check(context.Background(), plainTokens(t, "this is an test"))
	require.NoError(t, err)
	require.Len(t, res.Typos, 1)

	got := res.Typos[0]
	assert.Equal(t, span.New(8, 10), got.Location.Absolute)
	assert.Equal(t, span.New(8, 10), got.Location.Range)
	assert.Equal(t, 0, got.Location.Element)
	assert.Equal(t, typo.Grammar, got.Info.Category)
	assert.Equal(t, "an", got.Text)
	assert.Equal(t, 1, res.Fragments)
}

func TestCheckRemapsOffsets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    span.Range
	}{
		{"collapsed whitespace", "Two  spaces  an test", span.New(13, 15)},
		{"multibyte prefix", "Café an test", span.New(6, 8)},
		{"line break", "first line\nan test", span.New(11, 13)},
		{"nbsp replaced", "word\u00a0an test", span.New(6, 8)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			res, err := newChecker(wordEngine("an ", "EN_A_VS_AN")).Check(context.Background(), plainTokens(t, testCase.content))
			require.NoError(t, err)
			require.Len(t, res.Typos, 1)

			// The match includes the trailing space.
			got := res.Typos[0].Location.Absolute
			assert.Equal(t, testCase.want.Start, got.Start)
			assert.Equal(t, testCase.want.End+1, got.End)
		})
	}
}

func TestCheckDropsMatchesOverOpaqueTokens(t *testing.T) {
	t.Parallel()

	tokens := []token.Token{
		{Kind: token.Text, Range: span.New(0, 8), Text: "this is ", Group: 0},
		{Kind: token.Opaque, Range: span.New(8, 10), Text: "**", Group: 0},
		{Kind: token.Text, Range: span.New(10, 17), Text: "an test", Group: 0},
		{Kind: token.Opaque, Range: span.New(17, 20), Text: "`x`", Group: 0},
		{Kind: token.Text, Range: span.New(20, 25), Text: " next", Group: 0},
	}

	var seen string
	eng := engine.Func(func(_ context.Context, text string) ([]engine.RawMatch, error) {
		seen = text
		return []engine.RawMatch{
			{Start: 5, End: 11, RuleID: "SPANS_MARKUP"},
			{Start: 9, End: 11, RuleID: "EN_A_VS_AN"},
			{Start: 16, End: 17, RuleID: "PLACEHOLDER_ONLY"},
			{Start: 18, End: 22, RuleID: "AFTER_CODE"},
		}, nil
	})

	res, err := newChecker(eng).Check(context.Background(), tokens)
	require.NoError(t, err)
	assert.Equal(t, "this is "+grammar.Placeholder+"an test"+grammar.Placeholder+" next", seen)

	require.Len(t, res.Typos, 2)
	assert.Equal(t, "EN_A_VS_AN", res.Typos[0].Info.RuleID)
	assert.Equal(t, 2, res.Typos[0].Location.Element)
	assert.Equal(t, span.New(0, 2), res.Typos[0].Location.Range)

	assert.Equal(t, "AFTER_CODE", res.Typos[1].Info.RuleID)
	assert.Equal(t, 4, res.Typos[1].Location.Element)
	assert.Equal(t, "next", res.Typos[1].Text)
}

func TestCheckOpaqueTokenSeparatesWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []token.Token
		sent   string
	}{
		{
			name: "code between spaces",
			tokens: []token.Token{
				{Kind: token.Text, Range: span.New(0, 8), Text: "Pass an ", Group: 0},
				{Kind: token.Opaque, Range: span.New(8, 13), Text: "`int`", Group: 0},
				{Kind: token.Text, Range: span.New(13, 25), Text: " value here.", Group: 0},
			},
			sent: "Pass an " + grammar.Placeholder + " value here.",
		},
		{
			name: "adjacent opaque runs share one placeholder",
			tokens: []token.Token{
				{Kind: token.Text, Range: span.New(0, 4), Text: "Run ", Group: 0},
				{Kind: token.Opaque, Range: span.New(4, 6), Text: "**", Group: 0},
				{Kind: token.Opaque, Range: span.New(6, 12), Text: "`make`", Structure: token.InlineCode, Group: 0},
				{Kind: token.Text, Range: span.New(12, 17), Text: " now.", Group: 0},
			},
			sent: "Run " + grammar.Placeholder + " now.",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			eng := engine.Func(func(_ context.Context, text string) ([]engine.RawMatch, error) {
				seen = text
				return nil, nil
			})

			_, err := newChecker(eng).Check(context.Background(), testCase.tokens)
			require.NoError(t, err)
			assert.Equal(t, testCase.sent, seen)

			builtinEngine, err := builtin.New(builtin.Options{})
			require.NoError(t, err)

			res, err := newChecker(builtinEngine).Check(context.Background(), testCase.tokens)
			require.NoError(t, err)
			assert.Empty(t, res.Typos)
		})
	}
}

func TestCheckSkipsPlaceholderOnlyFragments(t *testing.T) {
	t.Parallel()

	tokens := []token.Token{
		{Kind: token.Text, Range: span.New(0, 1), Text: " ", Group: 0},
		{Kind: token.Opaque, Range: span.New(1, 6), Text: "`int`", Group: 0},
	}

	var calls atomic.Int32
	eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
		calls.Add(1)
		return nil, nil
	})

	res, err := newChecker(eng).Check(context.Background(), tokens)
	require.NoError(t, err)
	assert.Empty(t, res.Typos)
	assert.Zero(t, calls.Load())
}

func TestCheckClampsToElement(t *testing.T) {
	t.Parallel()

	eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
		return []engine.RawMatch{
			{Start: 4, End: 50, RuleID: "LONG"},
			{Start: 99, End: 100, RuleID: "PAST_END"},
		}, nil
	})

	res, err := newChecker(eng).Check(context.Background(), plainTokens(t, "abc de"))
	require.NoError(t, err)
	require.Len(t, res.Typos, 1)
	assert.Equal(t, span.New(4, 6), res.Typos[0].Location.Absolute)
}

func TestCheckEveryTypoWithinElement(t *testing.T) {
	t.Parallel()

	content := "An apple.\n\nThe  the cat\u2019s toy.\n\nLast an line here"
	tokens := plainTokens(t, content)

	eng := engine.Func(func(_ context.Context, text string) ([]engine.RawMatch, error) {
		n := utf8.RuneCountInString(text)
		var out []engine.RawMatch
		for s := 0; s <= n; s += 3 {
			out = append(out, engine.RawMatch{Start: s, End: s + 4, RuleID: "EVERYWHERE"})
		}
		return out, nil
	})

	res, err := newChecker(eng).Check(context.Background(), tokens)
	require.NoError(t, err)
	require.NotEmpty(t, res.Typos)

	for _, got := range res.Typos {
		elem := tokens[got.Location.Element]
		assert.True(t, elem.IsText())
		assert.True(t, elem.Range.ContainsRange(got.Location.Absolute), "typo %s outside %s", got.Location.Absolute, elem.Range)
		assert.LessOrEqual(t, got.Location.Range.End, elem.Range.Len())
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	t.Parallel()

	tokens := plainTokens(t, "an test and an other\n\nyet an more")
	checker := newChecker(wordEngine("an", "EN_A_VS_AN"))

	first, err := checker.Check(context.Background(), tokens)
	require.NoError(t, err)
	second, err := checker.Check(context.Background(), tokens)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Typos, 4)
}

func TestCheckEngineUnavailable(t *testing.T) {
	t.Parallel()

	eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
		return nil, engine.ErrUnavailable
	})

	res, err := newChecker(eng).Check(context.Background(), plainTokens(t, "some text"))
	require.ErrorIs(t, err, grammar.ErrEngineUnavailable)
	require.ErrorIs(t, err, engine.ErrUnavailable)
	assert.Nil(t, res)

	_, err = newChecker(nil).Check(context.Background(), plainTokens(t, "some text"))
	require.ErrorIs(t, err, grammar.ErrEngineUnavailable)
}

func TestCheckCancelled(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := newChecker(wordEngine("an", "R")).Check(ctx, plainTokens(t, "an test"))
		require.ErrorIs(t, err, grammar.ErrCancelled)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, res)
	})

	t.Run("between fragments", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
			calls.Add(1)
			cancel()
			return []engine.RawMatch{{Start: 0, End: 2, RuleID: "R"}}, nil
		})

		res, err := newChecker(eng).Check(ctx, plainTokens(t, "an one\n\nan two\n\nan three"))
		require.ErrorIs(t, err, grammar.ErrCancelled)
		assert.Nil(t, res, "no partial results")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("engine observes cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()

		eng := engine.Func(func(ctx context.Context, _ string) ([]engine.RawMatch, error) {
			<-ctx.Done()
			return nil, errors.New("request aborted")
		})

		_, err := newChecker(eng).Check(ctx, plainTokens(t, "an test"))
		require.ErrorIs(t, err, grammar.ErrCancelled)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotErrorIs(t, err, grammar.ErrEngineUnavailable)
	})
}

func TestCheckSkipsFragmentOnMalformedRule(t *testing.T) {
	t.Parallel()

	set, err := rules.NewSet([]rules.IgnoreRule{{
		Name: "explodes-on-x",
		Fn: func(_ string, current rune) bool {
			if current == 'X' {
				panic("boom")
			}
			return false
		},
	}}, nil)
	require.NoError(t, err)

	rec := &countingRecorder{}
	checker := newChecker(wordEngine("an", "EN_A_VS_AN"), grammar.WithRules(set), grammar.WithRecorder(rec))

	res, err := checker.Check(context.Background(), plainTokens(t, "good an\n\nbad X an\n\nmore an"))
	require.NoError(t, err)

	require.Len(t, res.Typos, 2)
	assert.Equal(t, 0, res.Typos[0].Location.Element)
	assert.Equal(t, 4, res.Typos[1].Location.Element)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Group)
	require.ErrorIs(t, res.Skipped[0], rules.ErrMalformedRule)

	var malformed *rules.MalformedRuleError
	require.ErrorAs(t, res.Skipped[0], &malformed)
	assert.Equal(t, "explodes-on-x", malformed.Rule)

	assert.Equal(t, 2, rec.checked)
	assert.Equal(t, 1, rec.skipped)
}

func TestCheckCategoryResolution(t *testing.T) {
	t.Parallel()

	eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
		return []engine.RawMatch{
			{Start: 0, End: 4, RuleID: "SOME_NEW_RULE", Category: "TYPOS"},
			{Start: 5, End: 9, RuleID: "UPPERCASE_SENTENCE_START"},
		}, nil
	})

	res, err := newChecker(eng).Check(context.Background(), plainTokens(t, "teh. word"))
	require.NoError(t, err)
	require.Len(t, res.Typos, 2)
	assert.Equal(t, typo.Spelling, res.Typos[0].Info.Category)
	assert.Equal(t, typo.Casing, res.Typos[1].Info.Category)
}

func TestCheckEmptyInput(t *testing.T) {
	t.Parallel()

	eng := engine.Func(func(context.Context, string) ([]engine.RawMatch, error) {
		t.Fatal("engine must not be called")
		return nil, nil
	})

	res, err := newChecker(eng).Check(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Typos)
	assert.Zero(t, res.Fragments)
}

type countingRecorder struct {
	checked, skipped, failed int
}

func (r *countingRecorder) FragmentChecked()            { r.checked++ }
func (r *countingRecorder) FragmentSkipped()            { r.skipped++ }
func (r *countingRecorder) EngineFailed()               { r.failed++ }
func (r *countingRecorder) EngineLatency(time.Duration) {}
