package httputil

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/cximage/pkg/observability"
)

// maxExcerpt bounds how much of an error body is kept for messages.
const maxExcerpt = 4 << 10

// NewClient creates an HTTP client with the given overall request timeout.
// A zero timeout leaves requests bounded only by their context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Do sends req with client and reports the exchange to the registered
// observability HTTP hooks. The caller owns the response body.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// ReadExcerpt reads at most 4 KiB of r for inclusion in an error message.
// Surrounding whitespace is trimmed and read errors are ignored.
func ReadExcerpt(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxExcerpt))
	return strings.TrimSpace(string(data))
}
