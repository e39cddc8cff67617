package analysis

import (
	"context"
	"time"

	domanalysis "github.com/kailas-cloud/stringlens/internal/domain/analysis"
	"github.com/kailas-cloud/stringlens/internal/domain/filter"
)

// Repository defines the storage contract for analyzed strings.
type Repository interface {
	Insert(ctx context.Context, r domanalysis.Result) error
	Get(ctx context.Context, value string) (domanalysis.Result, error)
	Delete(ctx context.Context, value string) error
	List(ctx context.Context) ([]domanalysis.Result, error)
	Count(ctx context.Context) int
}

// Interpreter converts a natural-language phrase into filters.
type Interpreter interface {
	Interpret(phrase string) (filter.Filters, error)
}

// Clock supplies analysis timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
