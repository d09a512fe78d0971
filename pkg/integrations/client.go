package integrations

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/cximage/pkg/cache"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/httputil"
	"github.com/matzehuels/cximage/pkg/observability"
)

// Client provides shared HTTP functionality for remote service clients.
// It handles caching, retry logic, authentication and common request headers.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	headers  map[string]string
	user     string
	password string
}

// NewClient creates a Client with the given cache and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed; a nil cache
// disables caching.
func NewClient(c cache.Cache, cacheTTL time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:     NewHTTPClient(),
		cache:    c,
		cacheTTL: cacheTTL,
		headers:  headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SetBasicAuth makes every request authenticate as user.
// An empty user disables authentication.
func (c *Client) SetBasicAuth(user, password string) {
	c.user, c.password = user, password
}

// Cached retrieves a payload from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed for reading but still updated.
// fetch is retried with backoff when it returns a retryable error.
// keyType names the kind of entry for the observability cache hooks.
func (c *Client) Cached(ctx context.Context, keyType, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			hooks.OnCacheHit(ctx, keyType)
			return data, nil
		}
		hooks.OnCacheMiss(ctx, keyType)
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.cache.Set(ctx, key, data, c.cacheTTL) == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}

// GetBytes performs an HTTP GET and returns the whole response body.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := httputil.Do(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url))
	}

	if err := checkStatus(resp, url); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	if code == http.StatusOK {
		return nil
	}
	se := &errors.StatusError{StatusCode: code, Body: httputil.ReadExcerpt(resp.Body)}
	switch {
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, se, "GET %s", url)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Wrap(errors.ErrCodeUnauthorized, se, "GET %s", url)
	case code >= 500:
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, se, "GET %s", url))
	default:
		return errors.Wrap(errors.ErrCodeNetwork, se, "GET %s", url)
	}
}
