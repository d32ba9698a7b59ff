package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/observability"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second

	maxBodySize = 32 << 20
)

// Client performs GET requests with retry, caching and hooks.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache sets the response cache used by Cached.
func WithCache(cc cache.Cache) Option { return func(c *Client) { c.cache = cc } }

// WithHeaders sets headers sent on every request.
func WithHeaders(h map[string]string) Option { return func(c *Client) { c.headers = h } }

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// New creates a Client. Without options it uses a 10s timeout, no cache and
// three attempts starting at one second.
func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NullCache{},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached returns the bytes stored under key, or calls fetch and stores its
// result for ttl. With refresh set the cache is bypassed but still updated.
// Cache backend failures are not fatal; the fetch result wins.
func (c *Client) Cached(ctx context.Context, key string, ttl time.Duration, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, ttl)
	return data, nil
}

// Get fetches rawURL and returns the body, retrying transient failures.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := cache.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.do(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, unwrapRetryable(err)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", rawURL)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	host, path := hostPath(req.URL)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "GET %s", rawURL)
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, stderrors.Join(cache.ErrNetwork, err), "GET %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, stderrors.Join(cache.ErrNetwork, err), "read %s", rawURL))
	}
	return body, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, cache.ErrNotFound, "GET %s", rawURL)
	case code >= 500:
		return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, cache.ErrNetwork, "GET %s: status %d", rawURL, code))
	default:
		return errors.Wrap(errors.ErrCodeNetwork, cache.ErrNetwork, "GET %s: status %d", rawURL, code)
	}
}

// unwrapRetryable strips the retry marker so callers see the coded error.
func unwrapRetryable(err error) error {
	var re *cache.RetryableError
	if stderrors.As(err, &re) && re.Err != nil {
		return re.Err
	}
	return err
}

func hostPath(u *url.URL) (string, string) {
	return u.Host, u.Path
}
