package stringlens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stringlens/internal/domain/nlquery"
	analysisrepo "github.com/kailas-cloud/stringlens/internal/repository/analysis"
	chiTransport "github.com/kailas-cloud/stringlens/internal/transport/chi"
	analysisuc "github.com/kailas-cloud/stringlens/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/stringlens/internal/usecase/health"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, apiKeys ...string) *httptest.Server {
	t.Helper()
	repo := analysisrepo.New()
	svc := analysisuc.New(repo, nlquery.NewInterpreter()).WithClock(fixedClock{})
	srv := chiTransport.NewServer(svc, healthuc.New(repo), zap.NewNop())

	r := gochi.NewRouter()
	if len(apiKeys) > 0 {
		r.Use(chiTransport.BearerAuthMiddleware(apiKeys))
	}
	srv.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:3000", "/strings", "://bad"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := newTestClient(t, "http://example.com/api/")
	if c.baseURL != "http://example.com/api" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestClient_CreateGetDelete(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	created, err := c.Create(ctx, "racecar")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := String{
		ID:    "e00f9ef51a95f6e854862eed28dc0f1a68f154d9f75ddd841ab00de6ede9209b",
		Value: "racecar",
		Properties: Properties{
			Length:                7,
			IsPalindrome:          true,
			UniqueCharacters:      4,
			WordCount:             1,
			SHA256Hash:            "e00f9ef51a95f6e854862eed28dc0f1a68f154d9f75ddd841ab00de6ede9209b",
			CharacterFrequencyMap: map[string]int{"r": 2, "a": 2, "c": 2, "e": 1},
		},
		CreatedAt: fixedClock{}.Now(),
	}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("Create mismatch (-want +got):\n%s", diff)
	}

	got, err := c.Get(ctx, "racecar")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	if err := c.Delete(ctx, "racecar"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "racecar"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, "racecar"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestClient_CreateDuplicate(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	if _, err := c.Create(ctx, "hello"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := c.Create(ctx, "hello")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", apiErr.StatusCode)
	}
}

func TestClient_CreateBlank(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	_, err := c.Create(context.Background(), "   ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Field != "value" {
		t.Errorf("field = %q, want value", apiErr.Field)
	}
}

func TestClient_EscapedValues(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	for _, v := range []string{"a/b", "hello world", "50% off?", "naïve"} {
		if _, err := c.Create(ctx, v); err != nil {
			t.Fatalf("Create(%q): %v", v, err)
		}
		got, err := c.Get(ctx, v)
		if err != nil {
			t.Fatalf("Get(%q): %v", v, err)
		}
		if got.Value != v {
			t.Errorf("Get(%q).Value = %q", v, got.Value)
		}
	}
}

func TestClient_List(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	for _, v := range []string{"racecar", "hello world", "level", "noon at noon"} {
		if _, err := c.Create(ctx, v); err != nil {
			t.Fatalf("Create(%q): %v", v, err)
		}
	}

	all, err := c.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Count != 4 || len(all.Data) != 4 {
		t.Errorf("count = %d, len = %d, want 4", all.Count, len(all.Data))
	}

	res, err := c.List(ctx, Filter{IsPalindrome: Bool(true), WordCount: Int(1)})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	var values []string
	for _, s := range res.Data {
		values = append(values, s.Value)
	}
	if diff := cmp.Diff([]string{"racecar", "level"}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	wantApplied := map[string]any{"is_palindrome": true, "word_count": float64(1)}
	if diff := cmp.Diff(wantApplied, res.FiltersApplied); diff != "" {
		t.Errorf("filters_applied mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ListInvalidFilter(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	_, err := c.List(context.Background(), Filter{MinLength: Int(-1)})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestClient_Query(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	for _, v := range []string{"racecar", "a man a plan", "level", "hello"} {
		if _, err := c.Create(ctx, v); err != nil {
			t.Fatalf("Create(%q): %v", v, err)
		}
	}

	res, err := c.Query(ctx, "all single word palindromic strings")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Count != 2 {
		t.Errorf("count = %d, want 2", res.Count)
	}
	want := InterpretedQuery{
		Original:      "all single word palindromic strings",
		ParsedFilters: map[string]any{"is_palindrome": true, "word_count": float64(1)},
	}
	if diff := cmp.Diff(want, res.InterpretedQuery); diff != "" {
		t.Errorf("interpreted_query mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_QueryUnparseable(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	_, err := c.Query(context.Background(), "show me something nice")
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("got %v, want ErrParseFailure", err)
	}
}

func TestClient_Health(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	if _, err := c.Create(ctx, "abc"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" || h.Strings != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestClient_APIKey(t *testing.T) {
	ts := newTestServer(t, "secret")
	ctx := context.Background()

	anon := newTestClient(t, ts.URL)
	if _, err := anon.List(ctx, Filter{}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("without key: got %v, want ErrUnauthorized", err)
	}

	authed := newTestClient(t, ts.URL, WithAPIKey("secret"))
	if _, err := authed.List(ctx, Filter{}); err != nil {
		t.Errorf("with key: %v", err)
	}
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)
	c := newTestClient(t, ts.URL)

	_, err := c.Get(context.Background(), "x")
	if !errors.Is(err, ErrServer) {
		t.Fatalf("got %v, want ErrServer", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAPIError_UnwrapByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrAlreadyExists},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
	}
	for _, tt := range tests {
		err := &APIError{StatusCode: tt.status}
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: Unwrap = %v, want %v", tt.status, err.Unwrap(), tt.want)
		}
	}
}

func TestClient_UnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(t, ts.URL+"/v2")

	_, err := c.List(context.Background(), Filter{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("route miss must not unwrap to ErrValidation")
	}
}

func TestClient_Metrics(t *testing.T) {
	ts := newTestServer(t)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, ts.URL, WithPrometheus(reg), WithLogger(zap.NewNop()))
	ctx := context.Background()

	if _, err := c.Create(ctx, "abc"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, _ = c.Create(ctx, "abc")

	ops := c.obs.metrics.operations
	if got := testutil.ToFloat64(ops.WithLabelValues("create", "ok")); got != 1 {
		t.Errorf("create ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ops.WithLabelValues("create", "error")); got != 1 {
		t.Errorf("create error = %v, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	c2 := newTestClient(t, ts.URL, WithPrometheus(reg))
	if c2.obs.metrics.operations != c.obs.metrics.operations {
		t.Error("expected collectors to be reused")
	}
}
