package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/stringlens/internal/domain"
	domanalysis "github.com/kailas-cloud/stringlens/internal/domain/analysis"
)

func result(v string) domanalysis.Result {
	return domanalysis.Analyze(v, time.Unix(1700000000, 0))
}

func values(t *testing.T, repo *Repo) []string {
	t.Helper()
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Value()
	}
	return out
}

func TestInsert_Duplicate(t *testing.T) {
	repo := New()
	ctx := context.Background()

	if err := repo.Insert(ctx, result("hello")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := repo.Insert(ctx, result("hello"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.Count(ctx) != 1 {
		t.Errorf("expected 1 stored result, got %d", repo.Count(ctx))
	}
}

func TestInsert_CaseSensitive(t *testing.T) {
	repo := New()
	ctx := context.Background()

	if err := repo.Insert(ctx, result("Hello")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, result("hello")); err != nil {
		t.Fatalf("differently cased value should be accepted: %v", err)
	}
}

func TestGet(t *testing.T) {
	repo := New()
	ctx := context.Background()
	_ = repo.Insert(ctx, result("abc"))

	got, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value() != "abc" {
		t.Errorf("got %q", got.Value())
	}

	if _, err := repo.Get(ctx, "ABC"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_KeepsOrder(t *testing.T) {
	repo := New()
	ctx := context.Background()
	for _, v := range []string{"one", "two", "three", "four"} {
		if err := repo.Insert(ctx, result(v)); err != nil {
			t.Fatalf("insert %q: %v", v, err)
		}
	}

	if err := repo.Delete(ctx, "two"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if diff := cmp.Diff([]string{"one", "three", "four"}, values(t, repo)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if _, err := repo.Get(ctx, "two"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted value still found: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := New()
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_ThenReinsertAppends(t *testing.T) {
	repo := New()
	ctx := context.Background()
	for _, v := range []string{"a", "b", "c"} {
		_ = repo.Insert(ctx, result(v))
	}

	_ = repo.Delete(ctx, "a")
	if err := repo.Insert(ctx, result("a")); err != nil {
		t.Fatalf("reinsert: %v", err)
	}

	if diff := cmp.Diff([]string{"b", "c", "a"}, values(t, repo)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestList_ReturnsDefensiveCopy(t *testing.T) {
	repo := New()
	ctx := context.Background()
	_ = repo.Insert(ctx, result("x"))
	_ = repo.Insert(ctx, result("y"))

	list, _ := repo.List(ctx)
	list[0] = result("mutated")
	_ = repo.Insert(ctx, result("z"))

	if len(list) != 2 {
		t.Errorf("snapshot grew to %d", len(list))
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, values(t, repo)); diff != "" {
		t.Errorf("store mutated through snapshot (-want +got):\n%s", diff)
	}
}

func TestList_Empty(t *testing.T) {
	list, err := New().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}

func TestConcurrentInsert_SameValue(t *testing.T) {
	repo := New()
	ctx := context.Background()

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, result("contended")); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly one successful insert, got %d", successes)
	}
}

func TestConcurrentInsertAndList(t *testing.T) {
	repo := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Insert(ctx, result(fmt.Sprintf("value-%d", i)))
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.List(ctx)
		}()
	}
	wg.Wait()

	if repo.Count(ctx) != 50 {
		t.Errorf("expected 50 results, got %d", repo.Count(ctx))
	}
}
