package stringlens

import (
	"net/url"
	"strconv"
	"time"
)

// Properties are the derived attributes of an analyzed string.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// String is a stored, analyzed string.
type String struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Filter selects strings in List. Nil fields are not sent.
type Filter struct {
	IsPalindrome      *bool
	MinLength         *int
	MaxLength         *int
	WordCount         *int
	ContainsCharacter *string
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.IsPalindrome != nil {
		q.Set("is_palindrome", strconv.FormatBool(*f.IsPalindrome))
	}
	if f.MinLength != nil {
		q.Set("min_length", strconv.Itoa(*f.MinLength))
	}
	if f.MaxLength != nil {
		q.Set("max_length", strconv.Itoa(*f.MaxLength))
	}
	if f.WordCount != nil {
		q.Set("word_count", strconv.Itoa(*f.WordCount))
	}
	if f.ContainsCharacter != nil {
		q.Set("contains_character", *f.ContainsCharacter)
	}
	return q
}

// ListResult is the response of List.
type ListResult struct {
	Data           []String       `json:"data"`
	Count          int            `json:"count"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

// InterpretedQuery echoes a natural-language query and the filters it became.
type InterpretedQuery struct {
	Original      string         `json:"original"`
	ParsedFilters map[string]any `json:"parsed_filters"`
}

// QueryResult is the response of Query.
type QueryResult struct {
	Data             []String         `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery InterpretedQuery `json:"interpreted_query"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Strings int               `json:"strings"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }
