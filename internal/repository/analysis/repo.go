package analysis

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/stringlens/internal/domain"
	domanalysis "github.com/kailas-cloud/stringlens/internal/domain/analysis"
)

// Repo is the process-lifetime store of analyzed strings.
// Results are kept in insertion order and keyed by exact value.
// Lookups are linear scans; the collection is expected to stay small.
type Repo struct {
	mu    sync.RWMutex
	items []domanalysis.Result
}

// New creates an empty repository.
func New() *Repo {
	return &Repo{}
}

// Insert appends r unless a result with the same value is already stored.
func (s *Repo) Insert(_ context.Context, r domanalysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(r.Value()) >= 0 {
		return fmt.Errorf("insert %q: %w", r.Value(), domain.ErrAlreadyExists)
	}
	s.items = append(s.items, r)
	return nil
}

// Get returns the result stored under value.
func (s *Repo) Get(_ context.Context, value string) (domanalysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(value)
	if i < 0 {
		return domanalysis.Result{}, domain.ErrNotFound
	}
	return s.items[i], nil
}

// Delete removes the result stored under value, keeping the order of the rest.
func (s *Repo) Delete(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(value)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// List returns a copy of all results in insertion order.
func (s *Repo) List(_ context.Context) ([]domanalysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domanalysis.Result, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Count returns the number of stored results.
func (s *Repo) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Ping always succeeds; the store lives in process memory.
func (s *Repo) Ping(_ context.Context) error {
	return nil
}

// indexOf must be called with mu held.
func (s *Repo) indexOf(value string) int {
	for i := range s.items {
		if s.items[i].Value() == value {
			return i
		}
	}
	return -1
}
