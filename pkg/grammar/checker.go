// Package grammar runs prose tokens through character rules and a grammar
// engine, and maps the engine's findings back to source locations.
package grammar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/engine"
	"github.com/yaklabco/gramlint/pkg/rules"
	"github.com/yaklabco/gramlint/pkg/span"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// Sentinel errors for Check.
var (
	// ErrEngineUnavailable is returned when the engine fails. No typos are
	// returned with it.
	ErrEngineUnavailable = errors.New("grammar engine unavailable")

	// ErrCancelled is returned when the context ends during a check. It also
	// wraps the context error.
	ErrCancelled = errors.New("grammar check cancelled")
)

// Placeholder stands in for opaque tokens in the text sent to an engine. It
// is neither a letter, a digit nor a space, so engines see a word boundary.
const Placeholder = "\uFFFC"

// FragmentError records a fragment that was skipped because a rule failed.
type FragmentError struct {
	Group int
	Range span.Range
	Err   error
}

func (e FragmentError) Error() string {
	return fmt.Sprintf("fragment %d %s: %v", e.Group, e.Range, e.Err)
}

func (e FragmentError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a Check.
type Result struct {
	// Typos are deduplicated and sorted by absolute position.
	Typos []typo.Typo

	// Skipped lists fragments dropped because of malformed rules.
	Skipped []FragmentError

	// Fragments is the number of fragments sent to the engine.
	Fragments int
}

// Recorder receives check events. metrics.Collector implements it.
type Recorder interface {
	FragmentChecked()
	FragmentSkipped()
	EngineFailed()
	EngineLatency(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FragmentChecked()            {}
func (nopRecorder) FragmentSkipped()            {}
func (nopRecorder) EngineFailed()               {}
func (nopRecorder) EngineLatency(time.Duration) {}

// Checker checks token streams. It holds no per-call state and may be used
// from several goroutines if its engine allows it.
type Checker struct {
	engine     engine.Engine
	rules      *rules.Set
	categories *typo.CategoryTable
	logger     *log.Logger
	recorder   Recorder
}

// Option configures a Checker.
type Option func(*Checker)

// WithRules sets the character rules. The default is rules.Default().
func WithRules(set *rules.Set) Option {
	return func(c *Checker) {
		if set != nil {
			c.rules = set
		}
	}
}

// WithCategories sets the table used to categorize rule ids.
func WithCategories(table *typo.CategoryTable) Option {
	return func(c *Checker) {
		if table != nil {
			c.categories = table
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the event recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates a Checker around eng.
func New(eng engine.Engine, opts ...Option) *Checker {
	c := &Checker{
		engine:     eng,
		rules:      rules.Default(),
		categories: typo.DefaultCategoryTable(),
		logger:     logging.Default(),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the underlying engine.
func (c *Checker) Engine() engine.Engine {
	return c.engine
}

// Check analyzes the text tokens of each fragment and returns the typos found.
//
// tokens must tile the content they were produced from. Cancellation and
// engine failures abort the whole call; a failing rule only drops the
// fragment it failed on.
func (c *Checker) Check(ctx context.Context, tokens []token.Token) (*Result, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrEngineUnavailable)
	}

	res := &Result{}
	index := 0

	for _, frag := range token.Fragments(tokens) {
		first := index
		index += len(frag.Tokens)

		if !frag.HasText() {
			continue
		}

		found, err := c.checkFragment(ctx, frag, first)
		switch {
		case err == nil:
			res.Typos = append(res.Typos, found...)
			res.Fragments++
		case errors.Is(err, rules.ErrMalformedRule):
			fe := FragmentError{Group: frag.Group, Range: fragmentRange(frag), Err: err}
			logging.FromContext(ctx, c.logger).Warn("skipping fragment",
				logging.FieldFragment, frag.Group,
				logging.FieldRange, fe.Range.String(),
				logging.FieldError, err)
			c.recorder.FragmentSkipped()
			res.Skipped = append(res.Skipped, fe)
		default:
			return nil, err
		}
	}

	typo.Sort(res.Typos)
	res.Typos = typo.Dedupe(res.Typos)

	return res, nil
}

func (c *Checker) checkFragment(ctx context.Context, frag token.Fragment, first int) ([]typo.Typo, error) {
	text, err := c.sanitize(ctx, frag)
	if err != nil {
		return nil, err
	}
	if strings.TrimFunc(text.value, isFiller) == "" {
		return nil, nil
	}

	start := time.Now()
	matches, err := c.engine.Analyze(ctx, text.value)
	c.recorder.EngineLatency(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		c.recorder.EngineFailed()
		return nil, fmt.Errorf("%w: %s: %w", ErrEngineUnavailable, engine.NameOf(c.engine), err)
	}
	c.recorder.FragmentChecked()

	var out []typo.Typo
	for _, m := range matches {
		t, ok := c.locate(frag, first, text, m)
		if !ok {
			logging.FromContext(ctx, c.logger).Debug("dropping match",
				logging.FieldRule, m.RuleID,
				logging.FieldFragment, frag.Group)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// sanitized is the text sent to the engine plus, for every rune, the source
// bytes it came from.
type sanitized struct {
	value  string
	starts []int
	ends   []int
	end    int
}

func (c *Checker) sanitize(ctx context.Context, frag token.Fragment) (sanitized, error) {
	var (
		b   strings.Builder
		out sanitized
	)

	for _, tok := range frag.Tokens {
		if err := ctx.Err(); err != nil {
			return sanitized{}, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		out.end = tok.Range.End

		if !tok.IsText() {
			// Markup inside a sentence becomes one placeholder rune mapped
			// to the whole opaque run, so its neighbours never read as
			// adjacent words and matches touching it are dropped.
			if n := len(out.ends); n > 0 && out.ends[n-1] == tok.Range.Start && strings.HasSuffix(b.String(), Placeholder) {
				out.ends[n-1] = tok.Range.End
				continue
			}
			b.WriteString(Placeholder)
			out.starts = append(out.starts, tok.Range.Start)
			out.ends = append(out.ends, tok.Range.End)
			continue
		}

		for offset, r := range tok.Text {
			emit, keep, err := c.rules.Apply(b.String(), r)
			if err != nil {
				return sanitized{}, err
			}
			if !keep {
				continue
			}
			size := utf8.RuneLen(r)
			if r == utf8.RuneError {
				size = 1
			}
			b.WriteRune(emit)
			out.starts = append(out.starts, tok.Range.Start+offset)
			out.ends = append(out.ends, tok.Range.Start+offset+size)
		}
	}

	out.value = b.String()
	return out, nil
}

// locate maps m back to the source. It fails for matches that cover opaque
// input or do not start inside a text token.
func (c *Checker) locate(frag token.Fragment, first int, text sanitized, m engine.RawMatch) (typo.Typo, bool) {
	runes := len(text.starts)
	if m.Start < 0 || m.Start > runes || m.End < m.Start {
		return typo.Typo{}, false
	}
	end := min(m.End, runes)

	var abs span.Range
	switch {
	case m.Start == runes:
		abs = span.New(text.end, text.end)
	case end == m.Start:
		abs = span.New(text.starts[m.Start], text.starts[m.Start])
	default:
		abs = span.New(text.starts[m.Start], text.ends[end-1])
	}

	element := -1
	for i, tok := range frag.Tokens {
		if tok.IsText() {
			if tok.Range.Contains(abs.Start) || (element < 0 && abs.IsEmpty() && abs.Start == tok.Range.End) {
				element = i
			}
			continue
		}
		if tok.Range.Overlaps(abs) || (abs.IsEmpty() && tok.Range.Contains(abs.Start)) {
			return typo.Typo{}, false
		}
	}
	if element < 0 {
		return typo.Typo{}, false
	}

	tok := frag.Tokens[element]
	rel := span.ToSourceRange(tok.Range.Len(), span.Relative(tok.Range, abs))

	t := typo.Typo{
		Location: typo.Location{
			Element:  first + element,
			Range:    rel,
			Absolute: rel.Shift(tok.Range.Start),
		},
		Info: typo.Info{
			RuleID:   m.RuleID,
			Category: c.categories.Resolve(m.RuleID, m.Category),
			Message:  m.Message,
		},
		Suggestions: append([]string(nil), m.Replacements...),
		Text:        tok.Text[rel.Start:rel.End],
	}
	return t, true
}

func isFiller(r rune) bool {
	return unicode.IsSpace(r) || string(r) == Placeholder
}

func fragmentRange(frag token.Fragment) span.Range {
	if len(frag.Tokens) == 0 {
		return span.Range{}
	}
	return span.New(frag.Tokens[0].Range.Start, frag.Tokens[len(frag.Tokens)-1].Range.End)
}
