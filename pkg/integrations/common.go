package integrations

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/cximage/pkg/httputil"
)

const httpTimeout = 2 * time.Minute

// NewHTTPClient creates an HTTP client with a standard timeout for service
// requests. Network downloads can be large, so the bound is generous.
func NewHTTPClient() *http.Client {
	return httputil.NewClient(httpTimeout)
}

// NormalizeBaseURL turns a bare host ("www.ndexbio.org") into an HTTPS base
// URL and strips trailing slashes. Full URLs keep their scheme.
func NormalizeBaseURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return strings.TrimRight(s, "/")
}

// HostOf returns the host part of a base URL, or raw if it cannot be parsed.
func HostOf(raw string) string {
	u, err := url.Parse(NormalizeBaseURL(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// URLEncode percent-encodes a string for use in a URL path segment.
func URLEncode(s string) string { return url.PathEscape(s) }
