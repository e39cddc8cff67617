package chi

import (
	domanalysis "github.com/kailas-cloud/stringlens/internal/domain/analysis"
	"github.com/kailas-cloud/stringlens/internal/domain/filter"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeInvalidType      ErrorCode = "invalid_type"
	ErrorCodeAlreadyExists    ErrorCode = "string_already_exists"
	ErrorCodeNotFound         ErrorCode = "string_not_found"
	ErrorCodeParseFailure     ErrorCode = "query_parse_failed"
	ErrorCodeRouteNotFound    ErrorCode = "route_not_found"
	ErrorCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// createdAtLayout is RFC 3339 with exactly three fractional digits.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// CreateStringRequest is the body of POST /strings.
type CreateStringRequest struct {
	Value string `json:"value"`
}

// PropertiesResponse carries the derived attributes of a string.
type PropertiesResponse struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// StringResponse is a single analyzed string.
type StringResponse struct {
	ID         string             `json:"id"`
	Value      string             `json:"value"`
	Properties PropertiesResponse `json:"properties"`
	CreatedAt  string             `json:"created_at"`
}

// ListResponse is the body of GET /strings.
type ListResponse struct {
	Data           []StringResponse `json:"data"`
	Count          int              `json:"count"`
	FiltersApplied map[string]any   `json:"filters_applied"`
}

// InterpretedQuery echoes a natural-language query and its translation.
type InterpretedQuery struct {
	Original      string         `json:"original"`
	ParsedFilters map[string]any `json:"parsed_filters"`
}

// NaturalLanguageResponse is the body of GET /strings/filter-by-natural-language.
type NaturalLanguageResponse struct {
	Data             []StringResponse `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery InterpretedQuery `json:"interpreted_query"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Strings int               `json:"strings"`
}

// listParams are the structured filter query parameters of GET /strings.
type listParams struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

func (p listParams) toFilters() filter.Filters {
	var f filter.Filters
	if p.IsPalindrome != nil {
		f = f.WithIsPalindrome(*p.IsPalindrome)
	}
	if p.MinLength != nil {
		f = f.WithMinLength(*p.MinLength)
	}
	if p.MaxLength != nil {
		f = f.WithMaxLength(*p.MaxLength)
	}
	if p.WordCount != nil {
		f = f.WithWordCount(*p.WordCount)
	}
	if p.ContainsCharacter != nil {
		f = f.WithContainsCharacter(*p.ContainsCharacter)
	}
	return f
}

func stringToResponse(r domanalysis.Result) StringResponse {
	p := r.Properties()
	return StringResponse{
		ID:    r.ID(),
		Value: r.Value(),
		Properties: PropertiesResponse{
			Length:                p.Length(),
			IsPalindrome:          p.IsPalindrome(),
			UniqueCharacters:      p.UniqueCharacters(),
			WordCount:             p.WordCount(),
			SHA256Hash:            p.SHA256Hash(),
			CharacterFrequencyMap: p.CharacterFrequency(),
		},
		CreatedAt: r.CreatedAt().UTC().Format(createdAtLayout),
	}
}

func stringsToResponse(results []domanalysis.Result) []StringResponse {
	out := make([]StringResponse, len(results))
	for i, r := range results {
		out[i] = stringToResponse(r)
	}
	return out
}
