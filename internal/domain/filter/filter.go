// Package filter holds the structured predicate set applied to analyzed strings.
package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/stringlens/internal/domain"
	"github.com/kailas-cloud/stringlens/internal/domain/analysis"
)

// Field names as they appear on the wire.
const (
	FieldIsPalindrome      = "is_palindrome"
	FieldMinLength         = "min_length"
	FieldMaxLength         = "max_length"
	FieldWordCount         = "word_count"
	FieldContainsCharacter = "contains_character"
)

// Filters is a set of optional predicates. An absent field imposes no
// constraint; it is distinct from a present false or zero.
type Filters struct {
	isPalindrome      *bool
	minLength         *int
	maxLength         *int
	wordCount         *int
	containsCharacter *string
}

// WithIsPalindrome returns a copy requiring properties.is_palindrome == v.
func (f Filters) WithIsPalindrome(v bool) Filters {
	f.isPalindrome = &v
	return f
}

// WithMinLength returns a copy requiring properties.length >= n.
func (f Filters) WithMinLength(n int) Filters {
	f.minLength = &n
	return f
}

// WithMaxLength returns a copy requiring properties.length <= n.
func (f Filters) WithMaxLength(n int) Filters {
	f.maxLength = &n
	return f
}

// WithWordCount returns a copy requiring properties.word_count == n.
func (f Filters) WithWordCount(n int) Filters {
	f.wordCount = &n
	return f
}

// WithContainsCharacter returns a copy requiring value to contain s.
// Any substring is accepted, not only a single character.
func (f Filters) WithContainsCharacter(s string) Filters {
	f.containsCharacter = &s
	return f
}

// IsPalindrome returns the palindrome constraint, if present.
func (f Filters) IsPalindrome() (bool, bool) { return derefBool(f.isPalindrome) }

// MinLength returns the inclusive lower length bound, if present.
func (f Filters) MinLength() (int, bool) { return derefInt(f.minLength) }

// MaxLength returns the inclusive upper length bound, if present.
func (f Filters) MaxLength() (int, bool) { return derefInt(f.maxLength) }

// WordCount returns the exact word count constraint, if present.
func (f Filters) WordCount() (int, bool) { return derefInt(f.wordCount) }

// ContainsCharacter returns the substring constraint, if present.
func (f Filters) ContainsCharacter() (string, bool) {
	if f.containsCharacter == nil {
		return "", false
	}
	return *f.containsCharacter, true
}

// IsEmpty reports whether no field is present.
func (f Filters) IsEmpty() bool {
	return f.isPalindrome == nil && f.minLength == nil && f.maxLength == nil &&
		f.wordCount == nil && f.containsCharacter == nil
}

// Validate rejects bounds that can never describe a stored string.
// min_length > max_length is allowed and simply matches nothing.
func (f Filters) Validate() error {
	if v, ok := f.MinLength(); ok && v < 0 {
		return domain.NewValidationError(FieldMinLength, fmt.Sprintf("must not be negative, got %d", v))
	}
	if v, ok := f.MaxLength(); ok && v < 0 {
		return domain.NewValidationError(FieldMaxLength, fmt.Sprintf("must not be negative, got %d", v))
	}
	if v, ok := f.WordCount(); ok && v < 0 {
		return domain.NewValidationError(FieldWordCount, fmt.Sprintf("must not be negative, got %d", v))
	}
	return nil
}

// Applied returns the present fields keyed by wire name.
func (f Filters) Applied() map[string]any {
	out := make(map[string]any)
	if v, ok := f.IsPalindrome(); ok {
		out[FieldIsPalindrome] = v
	}
	if v, ok := f.MinLength(); ok {
		out[FieldMinLength] = v
	}
	if v, ok := f.MaxLength(); ok {
		out[FieldMaxLength] = v
	}
	if v, ok := f.WordCount(); ok {
		out[FieldWordCount] = v
	}
	if v, ok := f.ContainsCharacter(); ok {
		out[FieldContainsCharacter] = v
	}
	return out
}

// Matches reports whether r satisfies every present field.
func (f Filters) Matches(r analysis.Result) bool {
	p := r.Properties()
	if v, ok := f.IsPalindrome(); ok && p.IsPalindrome() != v {
		return false
	}
	if v, ok := f.MinLength(); ok && p.Length() < v {
		return false
	}
	if v, ok := f.MaxLength(); ok && p.Length() > v {
		return false
	}
	if v, ok := f.WordCount(); ok && p.WordCount() != v {
		return false
	}
	if v, ok := f.ContainsCharacter(); ok && !strings.Contains(r.Value(), v) {
		return false
	}
	return true
}

// Apply returns the results matching f, preserving input order.
// The input slice is never modified.
func Apply(results []analysis.Result, f Filters) []analysis.Result {
	out := make([]analysis.Result, 0, len(results))
	for _, r := range results {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func derefBool(p *bool) (bool, bool) {
	if p == nil {
		return false, false
	}
	return *p, true
}

func derefInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
