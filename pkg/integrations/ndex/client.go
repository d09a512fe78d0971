package ndex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cximage/pkg/buildinfo"
	"github.com/matzehuels/cximage/pkg/cache"
	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/integrations"
)

// DefaultHost is the public NDEx server.
const DefaultHost = "www.ndexbio.org"

// Client provides access to an NDEx server's network API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	host    string
	keyer   cache.Keyer
}

// NewClient creates an NDEx client for host, which may be a bare host name
// ("www.ndexbio.org") or a full base URL ("http://localhost:8080").
// An empty host selects [DefaultHost].
func NewClient(backend cache.Cache, cacheTTL time.Duration, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(backend, cacheTTL, headers),
		baseURL: integrations.NormalizeBaseURL(host),
		host:    integrations.HostOf(host),
		keyer:   cache.NewDefaultKeyer(),
	}
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Host returns the server host name.
func (c *Client) Host() string { return c.host }

// FetchNetwork downloads the CX document of the network with the given UUID.
//
// If refresh is true the cache is bypassed for reading but still updated.
// Only documents that parse as CX are cached.
//
// Returns:
//   - INVALID_INPUT if id is not a UUID
//   - NOT_FOUND if the server has no such network
//   - UNAUTHORIZED if the network is private and credentials are missing or wrong
//   - NETWORK_ERROR for transport failures and 5xx responses (after retries)
//   - INVALID_FORMAT if the body is not a CX document
func (c *Client) FetchNetwork(ctx context.Context, id string, refresh bool) (*cx.Document, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "not an NDEx network UUID: %q", id)
	}
	id = u.String()

	var doc *cx.Document
	data, err := c.Cached(ctx, "network", c.keyer.NetworkKey(c.host, id), refresh, func() ([]byte, error) {
		data, err := c.GetBytes(ctx, c.networkURL(id), nil)
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "ndex network %s", id)
			}
			return nil, err
		}
		if doc, err = cx.Parse(data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "ndex network %s", id)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if doc != nil {
		return doc, nil
	}

	// Cache hit.
	if doc, err = cx.Parse(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cached ndex network %s", id)
	}
	return doc, nil
}

func (c *Client) networkURL(id string) string {
	return fmt.Sprintf("%s/v2/network/%s", c.baseURL, integrations.URLEncode(id))
}
