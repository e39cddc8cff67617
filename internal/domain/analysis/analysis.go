// Package analysis derives the property set of a string.
package analysis

import (
	"maps"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/stringlens/internal/domain/fingerprint"
)

// Properties are the attributes derived from an analyzed value.
type Properties struct {
	length             int
	isPalindrome       bool
	sha256Hash         string
	uniqueCharacters   int
	wordCount          int
	characterFrequency map[string]int
}

// Length returns the number of characters (code points) in the value.
func (p Properties) Length() int { return p.length }

// IsPalindrome reports whether the case-folded value reads the same backwards.
func (p Properties) IsPalindrome() bool { return p.isPalindrome }

// SHA256Hash returns the content fingerprint.
func (p Properties) SHA256Hash() string { return p.sha256Hash }

// UniqueCharacters returns the number of distinct characters.
func (p Properties) UniqueCharacters() int { return p.uniqueCharacters }

// WordCount returns the number of whitespace-delimited tokens.
func (p Properties) WordCount() int { return p.wordCount }

// CharacterFrequency returns a copy of the character occurrence table.
func (p Properties) CharacterFrequency() map[string]int { return maps.Clone(p.characterFrequency) }

// Result is an analyzed string (immutable value object).
type Result struct {
	id         string
	value      string
	properties Properties
	createdAt  time.Time
}

// Analyze computes the full property set of value. Identical input yields an
// identical Result apart from createdAt.
func Analyze(value string, createdAt time.Time) Result {
	hash := fingerprint.Of(value)
	unique, freq := frequencies(value)

	return Result{
		id:    hash,
		value: value,
		properties: Properties{
			length:             utf8.RuneCountInString(value),
			isPalindrome:       IsPalindrome(value),
			sha256Hash:         hash,
			uniqueCharacters:   unique,
			wordCount:          CountWords(value),
			characterFrequency: freq,
		},
		createdAt: createdAt.UTC(),
	}
}

// ID returns the fingerprint identifying the result.
func (r Result) ID() string { return r.id }

// Value returns the analyzed string.
func (r Result) Value() string { return r.value }

// Properties returns the derived attributes.
func (r Result) Properties() Properties { return r.properties }

// CreatedAt returns the analysis timestamp (UTC).
func (r Result) CreatedAt() time.Time { return r.createdAt }

// IsPalindrome lower-cases s and compares it with its reverse.
// Whitespace and punctuation are not stripped: "race car" is not a palindrome.
func IsPalindrome(s string) bool {
	runes := []rune(cases.Lower(language.Und).String(s))
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

// CountWords returns the number of maximal runs of non-whitespace characters.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func frequencies(s string) (int, map[string]int) {
	freq := make(map[string]int)
	for _, r := range s {
		freq[string(r)]++
	}
	return len(freq), freq
}
