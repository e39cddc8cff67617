package stringlens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/stringlens/internal/version"
)

const maxErrorBody = 64 << 10

// Client talks to a stringlens server over HTTP.
type Client struct {
	baseURL   string
	http      *http.Client
	apiKey    string
	userAgent string
	obs       *observer
}

// New creates a Client for the server at baseURL (scheme and host required).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("stringlens: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("stringlens: base url %q must include scheme and host", baseURL)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.userAgent == "" {
		cfg.userAgent = "stringlens-go/" + version.Version
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      cfg.httpClient,
		apiKey:    cfg.apiKey,
		userAgent: cfg.userAgent,
		obs:       obs,
	}, nil
}

// Create submits value for analysis. Duplicates fail with ErrAlreadyExists.
func (c *Client) Create(ctx context.Context, value string) (s String, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create", start, err) }()

	body, err := json.Marshal(struct {
		Value string `json:"value"`
	}{Value: value})
	if err != nil {
		return String{}, fmt.Errorf("encode request: %w", err)
	}
	err = c.do(ctx, http.MethodPost, "/strings", nil, body, http.StatusCreated, &s)
	return s, err
}

// Get fetches a stored string by its exact value.
func (c *Client) Get(ctx context.Context, value string) (s String, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	err = c.do(ctx, http.MethodGet, stringPath(value), nil, nil, http.StatusOK, &s)
	return s, err
}

// Delete removes a stored string by its exact value.
func (c *Client) Delete(ctx context.Context, value string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	return c.do(ctx, http.MethodDelete, stringPath(value), nil, nil, http.StatusNoContent, nil)
}

// List returns every stored string matching f, in insertion order.
func (c *Client) List(ctx context.Context, f Filter) (res ListResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	err = c.do(ctx, http.MethodGet, "/strings", f.query(), nil, http.StatusOK, &res)
	return res, err
}

// Query filters stored strings with a natural-language phrase.
func (c *Client) Query(ctx context.Context, phrase string) (res QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	q := url.Values{"query": {phrase}}
	err = c.do(ctx, http.MethodGet, "/strings/filter-by-natural-language", q, nil, http.StatusOK, &res)
	return res, err
}

// Health reports the server health. A degraded server is not an error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	resp, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return HealthStatus{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return HealthStatus{}, fmt.Errorf("decode health response: %w", err)
	}
	return h, nil
}

func stringPath(value string) string {
	return "/strings/" + url.PathEscape(value)
}

func (c *Client) do(
	ctx context.Context, method, path string, query url.Values, body []byte, want int, out any,
) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(
	ctx context.Context, method, path string, query url.Values, body []byte,
) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Field = body.Field
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
