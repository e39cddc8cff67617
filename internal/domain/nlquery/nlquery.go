// Package nlquery translates free-text queries into structured filters.
//
// Interpretation runs an ordered table of independent rules against the
// lower-cased phrase. Every rule that matches sets one filter field; a phrase
// may trigger several rules. A phrase that triggers none is rejected so that
// callers can tell "no constraints" apart from "not understood".
package nlquery

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/stringlens/internal/domain"
	"github.com/kailas-cloud/stringlens/internal/domain/filter"
)

// Rule inspects a lower-cased phrase and, if it matches, returns the filters
// with its field set. matched=false leaves the filters untouched.
type Rule struct {
	Name  string
	Apply func(phrase string, f filter.Filters) (out filter.Filters, matched bool, err error)
}

// Interpreter evaluates rules in order.
type Interpreter struct {
	rules []Rule
}

// NewInterpreter creates an interpreter over the given rules.
// With no rules it falls back to DefaultRules.
func NewInterpreter(rules ...Rule) *Interpreter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Interpreter{rules: rules}
}

// Interpret converts phrase into filters. It fails with domain.ErrParseFailure
// when no rule matches.
func (i *Interpreter) Interpret(phrase string) (filter.Filters, error) {
	lower := cases.Lower(language.Und).String(phrase)

	var (
		f     filter.Filters
		fired int
	)
	for _, r := range i.rules {
		out, ok, err := r.Apply(lower, f)
		if err != nil {
			return filter.Filters{}, &domain.ParseError{Rule: r.Name, Err: err}
		}
		if ok {
			f = out
			fired++
		}
	}

	if fired == 0 {
		return filter.Filters{}, domain.ErrParseFailure
	}
	return f, nil
}

// Rules returns a copy of the interpreter's vocabulary.
func (i *Interpreter) Rules() []Rule {
	return append([]Rule(nil), i.rules...)
}

var defaultInterpreter = NewInterpreter()

// Interpret runs the default vocabulary.
func Interpret(phrase string) (filter.Filters, error) {
	return defaultInterpreter.Interpret(phrase)
}

// DefaultRules returns the built-in vocabulary in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		ContainsAny("palindrome", func(f filter.Filters) filter.Filters {
			return f.WithIsPalindrome(true)
		}, "palindrome", "palindromic"),
		ContainsAny("single_word", func(f filter.Filters) filter.Filters {
			return f.WithWordCount(1)
		}, "single word"),
		CaptureInt("shorter_than", `shorter than (\d+)`, func(f filter.Filters, n int) (filter.Filters, error) {
			return f.WithMaxLength(n - 1), nil
		}),
		CaptureInt("longer_than", `longer than (\d+)`, func(f filter.Filters, n int) (filter.Filters, error) {
			if n == math.MaxInt {
				return f, fmt.Errorf("number %d out of range", n)
			}
			return f.WithMinLength(n + 1), nil
		}),
		CaptureString("letter", `letter (\w)`, func(f filter.Filters, s string) filter.Filters {
			return f.WithContainsCharacter(s)
		}),
		// Crude heuristic: "first vowel" always means "a".
		{
			Name: "first_vowel",
			Apply: func(phrase string, f filter.Filters) (filter.Filters, bool, error) {
				if !strings.Contains(phrase, "first vowel") {
					return f, false, nil
				}
				if _, set := f.ContainsCharacter(); set {
					return f, false, nil
				}
				return f.WithContainsCharacter("a"), true, nil
			},
		},
	}
}

// ContainsAny builds a rule that fires when the phrase contains any of words.
func ContainsAny(name string, effect func(filter.Filters) filter.Filters, words ...string) Rule {
	return Rule{
		Name: name,
		Apply: func(phrase string, f filter.Filters) (filter.Filters, bool, error) {
			for _, w := range words {
				if strings.Contains(phrase, w) {
					return effect(f), true, nil
				}
			}
			return f, false, nil
		},
	}
}

// CaptureInt builds a rule around a pattern with one integer capture group.
// The effect may reject the captured number.
func CaptureInt(name, pattern string, effect func(filter.Filters, int) (filter.Filters, error)) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Apply: func(phrase string, f filter.Filters) (filter.Filters, bool, error) {
			m := re.FindStringSubmatch(phrase)
			if m == nil {
				return f, false, nil
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return f, false, fmt.Errorf("invalid number %q: %w", m[1], err)
			}
			out, err := effect(f, n)
			if err != nil {
				return f, false, err
			}
			return out, true, nil
		},
	}
}

// CaptureString builds a rule around a pattern with one string capture group.
func CaptureString(name, pattern string, effect func(filter.Filters, string) filter.Filters) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Apply: func(phrase string, f filter.Filters) (filter.Filters, bool, error) {
			m := re.FindStringSubmatch(phrase)
			if m == nil {
				return f, false, nil
			}
			return effect(f, m[1]), true, nil
		},
	}
}
