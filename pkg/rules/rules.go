// Package rules implements the character-level ignore and replace rules
// applied to prose before it reaches a grammar engine.
//
// Each rule sees the sanitized text produced so far (the history) and the
// next source character. Ignore rules drop the character; replace rules
// substitute another. Rules are evaluated in registration order and the
// first match wins.
package rules

import (
	"errors"
	"fmt"
)

// IgnoreFunc reports whether current should be dropped.
type IgnoreFunc func(history string, current rune) bool

// ReplaceFunc returns a substitute for current and true, or false to leave
// the character alone.
type ReplaceFunc func(history string, current rune) (rune, bool)

// IgnoreRule is a named ignore predicate.
type IgnoreRule struct {
	Name string
	Fn   IgnoreFunc
}

// ReplaceRule is a named replacement.
type ReplaceRule struct {
	Name string
	Fn   ReplaceFunc
}

// ErrMalformedRule is matched by every *MalformedRuleError.
var ErrMalformedRule = errors.New("malformed rule")

// MalformedRuleError reports a rule that panicked while evaluating.
type MalformedRuleError struct {
	Rule  string
	Cause any
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("rule %q failed: %v", e.Rule, e.Cause)
}

// Is makes errors.Is(err, ErrMalformedRule) true.
func (e *MalformedRuleError) Is(target error) bool {
	return target == ErrMalformedRule
}

// Unwrap exposes the panic value when it was an error.
func (e *MalformedRuleError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Set is an ordered collection of ignore and replace rules.
// A Set is immutable after construction and safe for concurrent use.
type Set struct {
	ignore  []IgnoreRule
	replace []ReplaceRule
}

// NewSet creates a rule set. Nil functions are rejected.
func NewSet(ignore []IgnoreRule, replace []ReplaceRule) (*Set, error) {
	for _, r := range ignore {
		if r.Fn == nil {
			return nil, fmt.Errorf("%w: ignore rule %q has no function", ErrMalformedRule, r.Name)
		}
	}
	for _, r := range replace {
		if r.Fn == nil {
			return nil, fmt.Errorf("%w: replace rule %q has no function", ErrMalformedRule, r.Name)
		}
	}

	return &Set{
		ignore:  append([]IgnoreRule(nil), ignore...),
		replace: append([]ReplaceRule(nil), replace...),
	}, nil
}

// Empty returns a set with no rules. Every character passes unchanged.
func Empty() *Set {
	return &Set{}
}

// Names returns the rule names in evaluation order, ignore rules first.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.ignore)+len(s.replace))
	for _, r := range s.ignore {
		names = append(names, r.Name)
	}
	for _, r := range s.replace {
		names = append(names, r.Name)
	}
	return names
}

// ShouldIgnore reports whether any ignore rule matches. Evaluation stops at
// the first match.
func (s *Set) ShouldIgnore(history string, current rune) (ignored bool, err error) {
	for _, rule := range s.ignore {
		hit, err := callIgnore(rule, history, current)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

// Replace returns the substitute from the first matching replace rule.
// Callers must only consult it for characters that were not ignored.
func (s *Set) Replace(history string, current rune) (rune, bool, error) {
	for _, rule := range s.replace {
		repl, ok, err := callReplace(rule, history, current)
		if err != nil {
			return current, false, err
		}
		if ok {
			return repl, true, nil
		}
	}
	return current, false, nil
}

// Apply runs one character through the set: ignore first, then replace.
// It returns the rune to emit and false when the character is dropped.
func (s *Set) Apply(history string, current rune) (rune, bool, error) {
	ignored, err := s.ShouldIgnore(history, current)
	if err != nil {
		return current, false, err
	}
	if ignored {
		return current, false, nil
	}

	out, _, err := s.Replace(history, current)
	if err != nil {
		return current, false, err
	}
	return out, true, nil
}

func callIgnore(rule IgnoreRule, history string, current rune) (hit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MalformedRuleError{Rule: rule.Name, Cause: r}
		}
	}()
	return rule.Fn(history, current), nil
}

func callReplace(rule ReplaceRule, history string, current rune) (out rune, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MalformedRuleError{Rule: rule.Name, Cause: r}
		}
	}()
	out, ok = rule.Fn(history, current)
	return out, ok, nil
}
