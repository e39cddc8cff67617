package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stringlens/internal/domain"
	domanalysis "github.com/kailas-cloud/stringlens/internal/domain/analysis"
	"github.com/kailas-cloud/stringlens/internal/domain/filter"
	"github.com/kailas-cloud/stringlens/internal/logger"
	"github.com/kailas-cloud/stringlens/internal/metrics"
)

// Service handles string analysis, lookup and filtering.
type Service struct {
	repo           Repository
	interpreter    Interpreter
	clock          Clock
	maxValueLength int
}

// New creates an analysis service.
func New(repo Repository, interpreter Interpreter) *Service {
	return &Service{repo: repo, interpreter: interpreter, clock: SystemClock{}}
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(c Clock) *Service {
	s.clock = c
	return s
}

// WithMaxValueLength caps submitted values at n characters (0 = unlimited).
func (s *Service) WithMaxValueLength(n int) *Service {
	s.maxValueLength = n
	return s
}

// Create trims raw, analyzes it and stores the result.
// A value that is already stored fails with domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, raw string) (domanalysis.Result, error) {
	log := logger.FromContext(ctx)

	value := strings.TrimSpace(raw)
	if value == "" {
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return domanalysis.Result{}, domain.NewValidationError("value", "must not be empty")
	}
	if s.maxValueLength > 0 && utf8.RuneCountInString(value) > s.maxValueLength {
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return domanalysis.Result{}, domain.NewValidationError("value",
			fmt.Sprintf("must be at most %d characters", s.maxValueLength))
	}

	res := domanalysis.Analyze(value, s.clock.Now())

	if err := s.repo.Insert(ctx, res); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		} else {
			metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return domanalysis.Result{}, fmt.Errorf("store analysis: %w", err)
	}

	metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	metrics.StringsStored.Set(float64(s.repo.Count(ctx)))
	log.Debug("String analyzed",
		zap.String("id", res.ID()),
		zap.Int("length", res.Properties().Length()),
		zap.Bool("is_palindrome", res.Properties().IsPalindrome()),
	)

	return res, nil
}

// Get retrieves the result stored under the exact value.
func (s *Service) Get(ctx context.Context, value string) (domanalysis.Result, error) {
	res, err := s.repo.Get(ctx, value)
	if err != nil {
		return domanalysis.Result{}, fmt.Errorf("get analysis: %w", err)
	}
	return res, nil
}

// Delete removes the result stored under the exact value.
func (s *Service) Delete(ctx context.Context, value string) error {
	if err := s.repo.Delete(ctx, value); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	metrics.StringsStored.Set(float64(s.repo.Count(ctx)))
	return nil
}

// List returns stored results matching f, in insertion order.
func (s *Service) List(ctx context.Context, f filter.Filters) ([]domanalysis.Result, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validate filters: %w", err)
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return filter.Apply(all, f), nil
}

// Query interprets a natural-language phrase and returns the matching results
// together with the filters it was translated into.
func (s *Service) Query(ctx context.Context, phrase string) ([]domanalysis.Result, filter.Filters, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(phrase) == "" {
		metrics.NLQueriesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, filter.Filters{}, domain.NewValidationError("query", "must not be empty")
	}

	f, err := s.interpreter.Interpret(phrase)
	if err != nil {
		metrics.NLQueriesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		log.Debug("Natural language query rejected", zap.String("query", phrase), zap.Error(err))
		return nil, filter.Filters{}, fmt.Errorf("interpret query: %w", err)
	}

	metrics.NLQueriesTotal.WithLabelValues(metrics.OutcomeParsed).Inc()
	for field := range f.Applied() {
		metrics.NLRuleHitsTotal.WithLabelValues(field).Inc()
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, filter.Filters{}, fmt.Errorf("list analyses: %w", err)
	}
	return filter.Apply(all, f), f, nil
}
