// Package builtin is a small, deterministic grammar engine for English that
// runs in-process. It covers common article, repetition, casing, spacing and
// spelling problems.
package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yaklabco/gramlint/pkg/engine"
)

// Rule ids reported by the engine.
const (
	RuleArticle          = "EN_A_VS_AN"
	RuleWordRepeat       = "ENGLISH_WORD_REPEAT_RULE"
	RuleSentenceStart    = "UPPERCASE_SENTENCE_START"
	RulePunctuationSpace = "COMMA_PARENTHESIS_WHITESPACE"
	RuleDoublePunct      = "DOUBLE_PUNCTUATION"
	RuleSpelling         = "MORFOLOGIK_RULE_EN_US"
)

// Options configures the engine.
type Options struct {
	// Language is a BCP 47 tag. Only English variants are supported.
	Language string

	// Spelling enables the dictionary check.
	Spelling bool

	// Words are added to the spelling dictionary.
	Words []string

	// DisabledRules lists rule ids to skip.
	DisabledRules []string
}

// Engine implements engine.Engine. It is stateless after construction and
// safe for concurrent use.
type Engine struct {
	tag      language.Tag
	checks   []check
	speller  *speller
	disabled map[string]bool
	key      string
}

type check struct {
	id string
	fn func(e *Engine, runes []rune, words []word) []engine.RawMatch
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine.
func New(opts Options) (*Engine, error) {
	if opts.Language == "" {
		opts.Language = "en-US"
	}

	tag, err := language.Parse(opts.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}
	if base, _ := tag.Base(); base.String() != "en" {
		return nil, fmt.Errorf("%w: builtin engine does not support %q", engine.ErrUnavailable, opts.Language)
	}

	eng := &Engine{
		tag:      tag,
		disabled: make(map[string]bool, len(opts.DisabledRules)),
		checks: []check{
			{RuleArticle, (*Engine).checkArticles},
			{RuleWordRepeat, (*Engine).checkRepeats},
			{RuleSentenceStart, (*Engine).checkSentenceStart},
			{RulePunctuationSpace, (*Engine).checkPunctuationSpace},
			{RuleDoublePunct, (*Engine).checkDoublePunctuation},
		},
	}
	for _, id := range opts.DisabledRules {
		eng.disabled[id] = true
	}

	if opts.Spelling {
		eng.speller = newSpeller(opts.Words)
		eng.checks = append(eng.checks, check{RuleSpelling, (*Engine).checkSpelling})
	}
	eng.key = cacheKey(eng.Name(), opts)

	return eng, nil
}

// Name identifies the engine in cache keys and logs.
func (e *Engine) Name() string {
	return "builtin/" + e.tag.String()
}

// CacheKey scopes cached results to the engine's settings.
func (e *Engine) CacheKey() string {
	return e.key
}

func cacheKey(name string, opts Options) string {
	settings := []string{fmt.Sprintf("spelling=%t", opts.Spelling), "rules=" + sortedJoin(opts.DisabledRules)}
	// Words only matter to the speller.
	if opts.Spelling {
		settings = append(settings, "words="+sortedJoin(opts.Words))
	}
	return engine.Fingerprint(name, settings...)
}

func sortedJoin(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n")
}

// Analyze reports problems in text. Offsets are rune offsets.
func (e *Engine) Analyze(ctx context.Context, text string) ([]engine.RawMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	words := splitWords(runes)

	var matches []engine.RawMatch
	for _, c := range e.checks {
		if e.disabled[c.id] {
			continue
		}
		matches = append(matches, c.fn(e, runes, words)...)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].RuleID < matches[j].RuleID
	})

	return matches, nil
}

func (e *Engine) checkArticles(runes []rune, words []word) []engine.RawMatch {
	var out []engine.RawMatch

	for i := 0; i+1 < len(words); i++ {
		art, next := words[i], words[i+1]
		if !onlySpaceBetween(runes, art.end, next.start) {
			continue
		}

		vowel := startsWithVowelSound(next.text)
		var want string
		switch lower(art.text) {
		case "a":
			if vowel {
				want = "an"
			}
		case "an":
			if !vowel {
				want = "a"
			}
		}
		if want == "" {
			continue
		}
		if startsUpper(art.text) {
			want = e.titleCase(want)
		}

		out = append(out, engine.RawMatch{
			Start:        art.start,
			End:          art.end,
			RuleID:       RuleArticle,
			Message:      fmt.Sprintf("Use %q instead of %q before %q.", want, art.text, next.text),
			Replacements: []string{want},
		})
	}

	return out
}

//nolint:gochecknoglobals // doubled words that are grammatical
var allowedRepeats = map[string]bool{"had": true, "that": true}

func (e *Engine) checkRepeats(runes []rune, words []word) []engine.RawMatch {
	var out []engine.RawMatch

	for i := 0; i+1 < len(words); i++ {
		first, second := words[i], words[i+1]
		if lower(first.text) != lower(second.text) || allowedRepeats[lower(first.text)] || hasDigit(first.text) {
			continue
		}
		if !onlySpaceBetween(runes, first.end, second.start) {
			continue
		}

		out = append(out, engine.RawMatch{
			Start:        first.start,
			End:          second.end,
			RuleID:       RuleWordRepeat,
			Message:      "Possible typo: you repeated a word.",
			Replacements: []string{first.text},
		})
	}

	return out
}

func (e *Engine) checkSentenceStart(runes []rune, words []word) []engine.RawMatch {
	var out []engine.RawMatch

	for idx := range sentenceStarts(runes, words) {
		w := words[idx]
		if startsUpper(w.text) || hasDigit(w.text) || hasInnerUpper(w.text) {
			continue
		}
		first := []rune(w.text)[0]
		if !isLowerLetter(first) {
			continue
		}

		out = append(out, engine.RawMatch{
			Start:        w.start,
			End:          w.end,
			RuleID:       RuleSentenceStart,
			Message:      "This sentence does not start with an uppercase letter.",
			Replacements: []string{e.titleCase(w.text)},
		})
	}

	return out
}

func (e *Engine) checkSpelling(runes []rune, words []word) []engine.RawMatch {
	var out []engine.RawMatch
	starts := sentenceStarts(runes, words)

	for i, w := range words {
		if len([]rune(w.text)) < 3 || hasDigit(w.text) || isAllUpper(w.text) || hasInnerUpper(w.text) {
			continue
		}
		// Capitalized words mid-sentence are usually names.
		if startsUpper(w.text) && !starts[i] {
			continue
		}
		if e.speller.known(w.text) {
			continue
		}

		suggestions := e.speller.suggest(w.text, maxSuggestions)
		if startsUpper(w.text) {
			for j, s := range suggestions {
				suggestions[j] = e.titleCase(s)
			}
		}

		out = append(out, engine.RawMatch{
			Start:        w.start,
			End:          w.end,
			RuleID:       RuleSpelling,
			Category:     "TYPOS",
			Message:      "Possible spelling mistake found.",
			Replacements: suggestions,
		})
	}

	return out
}

const maxSuggestions = 5

// titleCase capitalizes s. Casers are stateful, so one is made per call.
func (e *Engine) titleCase(s string) string {
	return cases.Title(e.tag, cases.NoLower).String(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}
