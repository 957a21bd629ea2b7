package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/engine"
	"github.com/yaklabco/gramlint/pkg/engine/builtin"
)

func newEngine(t *testing.T, opts builtin.Options) *builtin.Engine {
	t.Helper()

	eng, err := builtin.New(opts)
	require.NoError(t, err)
	return eng
}

func matchesFor(matches []engine.RawMatch, ruleID string) []engine.RawMatch {
	var out []engine.RawMatch
	for _, m := range matches {
		if m.RuleID == ruleID {
			out = append(out, m)
		}
	}
	return out
}

func TestArticleRule(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})

	tests := []struct {
		name      string
		text      string
		wantStart int
		wantEnd   int
		wantRepl  string
		wantNone  bool
	}{
		{name: "an before consonant", text: "this is an test", wantStart: 8, wantEnd: 10, wantRepl: "a"},
		{name: "a before vowel", text: "This is a apple.", wantStart: 8, wantEnd: 9, wantRepl: "an"},
		{name: "capitalized article", text: "An test.", wantStart: 0, wantEnd: 2, wantRepl: "A"},
		{name: "silent h", text: "It took an hour.", wantNone: true},
		{name: "consonant sounding u", text: "It is a university.", wantNone: true},
		{name: "acronym", text: "Send an SMS.", wantNone: true},
		{name: "punctuation between", text: "Plan a, order.", wantNone: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			matches, err := eng.Analyze(context.Background(), testCase.text)
			require.NoError(t, err)

			got := matchesFor(matches, builtin.RuleArticle)
			if testCase.wantNone {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, testCase.wantStart, got[0].Start)
			assert.Equal(t, testCase.wantEnd, got[0].End)
			assert.Equal(t, []string{testCase.wantRepl}, got[0].Replacements)
		})
	}
}

func TestWordRepeat(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})

	matches, err := eng.Analyze(context.Background(), "Read the the manual. I had had enough.")
	require.NoError(t, err)

	got := matchesFor(matches, builtin.RuleWordRepeat)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Start)
	assert.Equal(t, 12, got[0].End)
	assert.Equal(t, []string{"the"}, got[0].Replacements)
}

func TestSentenceStart(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})

	matches, err := eng.Analyze(context.Background(), "It works. then it fails, e.g. often. Done!")
	require.NoError(t, err)

	got := matchesFor(matches, builtin.RuleSentenceStart)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Start)
	assert.Equal(t, 14, got[0].End)
	assert.Equal(t, []string{"Then"}, got[0].Replacements)
}

func TestPunctuationSpacing(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})

	matches, err := eng.Analyze(context.Background(), "Hello , world ( see ) and .gitignore ok.")
	require.NoError(t, err)

	got := matchesFor(matches, builtin.RulePunctuationSpace)
	require.Len(t, got, 3)
	assert.Equal(t, engine.RawMatch{
		Start: 5, End: 7, RuleID: builtin.RulePunctuationSpace,
		Message: "Don't put a space before the punctuation.", Replacements: []string{","},
	}, got[0])
	assert.Equal(t, 14, got[1].Start)
	assert.Equal(t, []string{"("}, got[1].Replacements)
	assert.Equal(t, []string{")"}, got[2].Replacements)
}

func TestDoublePunctuation(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})

	matches, err := eng.Analyze(context.Background(), "Wait,, what... Fine.,")
	require.NoError(t, err)

	got := matchesFor(matches, builtin.RuleDoublePunct)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Start)
	assert.Equal(t, 19, got[1].Start)
}

func TestSpelling(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{Spelling: true, Words: []string{"gramlint"}})

	matches, err := eng.Analyze(context.Background(), "The qiuck test uses gramlint and Kubernetes.")
	require.NoError(t, err)

	got := matchesFor(matches, builtin.RuleSpelling)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Start)
	assert.Equal(t, 9, got[0].End)
	assert.Contains(t, got[0].Replacements, "quick")
	assert.Equal(t, "TYPOS", got[0].Category)

	noSpell := newEngine(t, builtin.Options{})
	matches, err = noSpell.Analyze(context.Background(), "The qiuck test.")
	require.NoError(t, err)
	assert.Empty(t, matchesFor(matches, builtin.RuleSpelling))
}

func TestCommonProseIsKnown(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{Spelling: true})

	testCases := []struct {
		name string
		text string
	}{
		{name: "short sentence", text: "The cat sat on the mat."},
		{name: "pangram", text: "The quick brown fox jumps over the lazy dog."},
		{name: "narrative", text: "She walked along the river until the evening light faded behind the hills."},
		{name: "documentation", text: "Install the package, then configure the server and restart the service."},
		{name: "technical", text: "The function returns an error when the connection times out."},
		{name: "contractions", text: "Don't worry, it isn't broken and we're nearly done."},
		{name: "hyphenated", text: "This is a well-known, long-running background process."},
		{name: "british", text: "The colour of the neighbour's favourite car."},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			matches, err := eng.Analyze(context.Background(), testCase.text)
			require.NoError(t, err)
			assert.Empty(t, matchesFor(matches, builtin.RuleSpelling))
		})
	}
}

func TestSpellingSuggestions(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{Spelling: true, Words: []string{"gramlint"}})

	testCases := []struct {
		name  string
		text  string
		first string
	}{
		{name: "swapped letters", text: "The cat sat on teh mat.", first: "the"},
		{name: "missing letter", text: "We recieved the report.", first: "received"},
		{name: "doubled letter", text: "It is a commmon mistake.", first: "common"},
		{name: "user word", text: "We run gramlnit daily.", first: "gramlint"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			matches, err := eng.Analyze(context.Background(), testCase.text)
			require.NoError(t, err)

			got := matchesFor(matches, builtin.RuleSpelling)
			require.Len(t, got, 1)
			require.NotEmpty(t, got[0].Replacements)
			assert.Equal(t, testCase.first, got[0].Replacements[0])
		})
	}
}

func TestInflectionsAreKnown(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{Spelling: true})

	matches, err := eng.Analyze(context.Background(), "Running tests, making files and tried configs.")
	require.NoError(t, err)
	assert.Empty(t, matchesFor(matches, builtin.RuleSpelling))
}

func TestDisabledRules(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{DisabledRules: []string{builtin.RuleArticle}})

	matches, err := eng.Analyze(context.Background(), "This is an test.")
	require.NoError(t, err)
	assert.Empty(t, matchesFor(matches, builtin.RuleArticle))
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{Spelling: true})
	text := "this is an test , with the the typo. and more."

	first, err := eng.Analyze(context.Background(), text)
	require.NoError(t, err)
	for range 5 {
		again, err := eng.Analyze(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, err := builtin.New(builtin.Options{Language: "de-DE"})
	require.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, builtin.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Analyze(ctx, "text")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "builtin/en-US", eng.Name())
}

func TestCacheKeyTracksSettings(t *testing.T) {
	t.Parallel()

	base := newEngine(t, builtin.Options{Spelling: true}).CacheKey()

	testCases := []struct {
		name     string
		opts     builtin.Options
		wantSame bool
	}{
		{name: "same settings", opts: builtin.Options{Spelling: true}, wantSame: true},
		{name: "spelling off", opts: builtin.Options{}},
		{name: "extra word", opts: builtin.Options{Spelling: true, Words: []string{"gramlint"}}},
		{name: "disabled rule", opts: builtin.Options{Spelling: true, DisabledRules: []string{builtin.RuleArticle}}},
		{name: "other variant", opts: builtin.Options{Spelling: true, Language: "en-GB"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			key := newEngine(t, testCase.opts).CacheKey()
			if testCase.wantSame {
				assert.Equal(t, base, key)
			} else {
				assert.NotEqual(t, base, key)
			}
		})
	}
}
