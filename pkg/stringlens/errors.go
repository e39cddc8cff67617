package stringlens

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/stringlens/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation    = domain.ErrValidation
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrNotFound      = domain.ErrNotFound
	ErrParseFailure  = domain.ErrParseFailure
)

// Transport-level sentinels with no domain counterpart.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response decoded from the service error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("stringlens: %d %s: %s (field %s)", e.StatusCode, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("stringlens: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error code (or, failing that, the status) onto a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_failed", "invalid_type", "bad_request":
		return ErrValidation
	case "string_already_exists":
		return ErrAlreadyExists
	case "string_not_found", "route_not_found":
		return ErrNotFound
	case "query_parse_failed":
		return ErrParseFailure
	case "unauthorized":
		return ErrUnauthorized
	case "rate_limited":
		return ErrRateLimited
	}

	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrAlreadyExists
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrServer
	case e.StatusCode >= http.StatusBadRequest:
		return ErrValidation
	}
	return nil
}
