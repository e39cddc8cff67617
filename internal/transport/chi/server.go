package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stringlens/internal/domain"
	"github.com/kailas-cloud/stringlens/internal/domain/filter"
	analysisuc "github.com/kailas-cloud/stringlens/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/stringlens/internal/usecase/health"
	"github.com/kailas-cloud/stringlens/internal/version"
)

const (
	// maxBodyBytes caps POST /strings request bodies.
	maxBodyBytes = 1 << 20

	parseFailureMessage = "Unable to parse natural language query"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the strings API.
type Server struct {
	strings       *analysisuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(strings *analysisuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		strings: strings,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		parseFailureHandler,
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/strings", func(r gochi.Router) {
		r.Post("/", s.CreateString)
		r.Get("/", s.ListStrings)
		r.Get("/filter-by-natural-language", s.FilterByNaturalLanguage)
		r.Get("/{value}", s.GetString)
		r.Delete("/{value}", s.DeleteString)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeRouteNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "stringlens",
		"version": version.Version,
	})
}

// CreateString handles POST /strings.
func (s *Server) CreateString(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, `Invalid request body or missing "value" field`)
		return
	}

	raw, ok := body["value"]
	if !ok || string(raw) == "null" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, `Invalid request body or missing "value" field`)
		return
	}

	var req CreateStringRequest
	if err := json.Unmarshal(raw, &req.Value); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrorCodeInvalidType,
			Message: `Invalid data type for "value" (must be string)`,
			Field:   "value",
		})
		return
	}

	res, err := s.strings.Create(r.Context(), req.Value)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/strings/"+url.PathEscape(res.Value()))
	writeJSON(w, http.StatusCreated, stringToResponse(res))
}

// GetString handles GET /strings/{value}.
func (s *Server) GetString(w http.ResponseWriter, r *http.Request) {
	value, err := pathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid path parameter value")
		return
	}

	res, err := s.strings.Get(r.Context(), value)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stringToResponse(res))
}

// DeleteString handles DELETE /strings/{value}.
func (s *Server) DeleteString(w http.ResponseWriter, r *http.Request) {
	value, err := pathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid path parameter value")
		return
	}

	if err := s.strings.Delete(r.Context(), value); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListStrings handles GET /strings with structured filters.
func (s *Server) ListStrings(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	results, err := s.strings.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Data:           stringsToResponse(results),
		Count:          len(results),
		FiltersApplied: f.Applied(),
	})
}

// FilterByNaturalLanguage handles GET /strings/filter-by-natural-language.
func (s *Server) FilterByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	results, f, err := s.strings.Query(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NaturalLanguageResponse{
		Data:  stringsToResponse(results),
		Count: len(results),
		InterpretedQuery: InterpretedQuery{
			Original:      query,
			ParsedFilters: f.Applied(),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Strings: report.Strings,
	})
}

// filtersFromQuery binds the structured filter parameters the same way
// generated oapi-codegen wrappers bind optional form parameters.
func filtersFromQuery(q url.Values) (filter.Filters, error) {
	var params listParams
	bindings := []struct {
		name string
		dest any
	}{
		{filter.FieldIsPalindrome, &params.IsPalindrome},
		{filter.FieldMinLength, &params.MinLength},
		{filter.FieldMaxLength, &params.MaxLength},
		{filter.FieldWordCount, &params.WordCount},
		{filter.FieldContainsCharacter, &params.ContainsCharacter},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return filter.Filters{}, &invalidParamError{name: b.name, err: err}
		}
	}
	return params.toFilters(), nil
}

type invalidParamError struct {
	name string
	err  error
}

func (e *invalidParamError) Error() string {
	return "Invalid format for parameter " + e.name
}

func (e *invalidParamError) Unwrap() error { return e.err }

// pathValue returns the decoded {value} segment. chi matches on RawPath when
// the request carried escaped slashes, leaving the parameter escaped.
func pathValue(r *http.Request) (string, error) {
	v := gochi.URLParam(r, "value")
	if r.URL.RawPath == "" {
		return v, nil
	}
	unescaped, err := url.PathUnescape(v)
	if err != nil {
		return "", err //nolint:wrapcheck // reported as a generic bad request
	}
	return unescaped, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client only ever sees the sentinel's own message.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// parseFailureHandler handles ErrParseFailure, appending the rule diagnostic
// when a rule rejected the phrase.
func parseFailureHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrParseFailure) {
		return false
	}
	msg := parseFailureMessage
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		msg += ": " + pe.Reason()
	}
	writeError(w, http.StatusBadRequest, ErrorCodeParseFailure, msg)
	return true
}

// validationHandler handles ErrValidation with the offending field.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    ErrorCodeValidationFailed,
			Message: ve.Message(),
			Field:   ve.Field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, domain.ErrValidation.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
