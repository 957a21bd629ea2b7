package builtin

import (
	_ "embed"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sajari/fuzzy"
)

//go:embed words_en.txt
var englishWords string

// lexicon is the embedded word list with its corpus counts and a fuzzy model
// for corrections. It is built once and shared by every engine.
type lexicon struct {
	counts map[string]int
	model  *fuzzy.Model
}

//nolint:gochecknoglobals // the embedded dictionary is parsed on first use
var englishLexicon = sync.OnceValue(func() *lexicon {
	return parseLexicon(englishWords)
})

// parseLexicon reads "word count" lines. Lines starting with # are comments
// and a missing count means 1.
func parseLexicon(data string) *lexicon {
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(1)

	lex := &lexicon{counts: make(map[string]int, strings.Count(data, "\n")), model: model}
	for line := range strings.Lines(data) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w, countField, _ := strings.Cut(line, " ")
		w = strings.ToLower(w)
		count, err := strconv.Atoi(strings.TrimSpace(countField))
		if err != nil || count < 1 {
			count = 1
		}
		if _, dup := lex.counts[w]; dup {
			continue
		}
		lex.counts[w] = count
		model.SetCount(w, count, true)
	}
	return lex
}

// speller checks words against the shared lexicon plus per-engine words.
type speller struct {
	lex   *lexicon
	extra map[string]struct{}
}

func newSpeller(extra []string) *speller {
	sp := &speller{lex: englishLexicon(), extra: make(map[string]struct{}, len(extra))}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			sp.extra[w] = struct{}{}
		}
	}
	return sp
}

func (s *speller) has(w string) bool {
	if _, ok := s.lex.counts[w]; ok {
		return true
	}
	_, ok := s.extra[w]
	return ok
}

//nolint:gochecknoglobals // inflection endings tried before flagging a word
var suffixes = []string{"'s", "s", "es", "ed", "d", "ing", "ly", "er", "ers", "est", "ies", "ied", "ness", "ment", "able"}

// known reports whether w, or w with a common inflection removed, is in the
// word list. A hyphenated compound is known when every part is.
func (s *speller) known(w string) bool {
	lw := strings.ToLower(w)
	if s.knownWord(lw) {
		return true
	}

	parts := strings.Split(lw, "-")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if !s.knownWord(part) {
			return false
		}
	}
	return true
}

func (s *speller) knownWord(lw string) bool {
	if s.has(lw) {
		return true
	}

	for _, suf := range suffixes {
		stem, ok := strings.CutSuffix(lw, suf)
		if !ok || len(stem) < 2 {
			continue
		}
		if s.has(stem) {
			return true
		}
		// running -> run, stopped -> stop
		if n := len(stem); n > 2 && stem[n-1] == stem[n-2] && s.has(stem[:n-1]) {
			return true
		}
		// making -> make, tried -> try
		if s.has(stem+"e") && (suf == "ing" || suf == "ed") {
			return true
		}
		if s.has(stem+"y") && (suf == "ies" || suf == "ied") {
			return true
		}
	}

	return false
}

const maxSuggestionDistance = 2

// suggest returns up to limit corrections: closest first, then most
// frequent. A swap of two neighbouring letters counts as one edit.
func (s *speller) suggest(w string, limit int) []string {
	lw := strings.ToLower(w)

	type scored struct {
		word  string
		dist  int
		count int
	}
	var ranked []scored
	seen := make(map[string]bool)
	consider := func(c string, count int) {
		if c == lw || seen[c] {
			return
		}
		seen[c] = true
		if d := editDistance(lw, c); d <= maxSuggestionDistance {
			ranked = append(ranked, scored{word: c, dist: d, count: count})
		}
	}

	for _, c := range s.lex.model.Suggestions(lw, true) {
		consider(c, s.lex.counts[c])
	}
	// User words are few, so they are compared directly.
	for c := range s.extra {
		consider(c, 1)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		out = append(out, r.word)
	}
	return out
}

// editDistance is the optimal string alignment distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}
