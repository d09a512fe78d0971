package jobclient

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cximage/pkg/errors"
)

// Defaults for the public CDAPS deployment.
const (
	DefaultBaseURL   = "http://cd.ndexbio.org/cd/communitydetection/v1"
	DefaultAlgorithm = "cytojsimageexport"
	DefaultWidth     = 2048
	DefaultHeight    = 2048
	DefaultTimeout   = 30 * time.Second
)

// Config configures a Client. The zero value of every field except BaseURL
// selects a default.
type Config struct {
	BaseURL       string        // Service endpoint, e.g. DefaultBaseURL
	SubmitTimeout time.Duration // Bound on the whole submit exchange
	FetchTimeout  time.Duration // Bound on the wait for response headers and on each body read
	HTTPClient    *http.Client  // Defaults to a client without an overall timeout
	Poll          PollPolicy    // Defaults to PollSingle
	Logger        *log.Logger   // Defaults to a discarding logger
}

// DefaultConfig returns the configuration of the public service.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		SubmitTimeout: DefaultTimeout,
		FetchTimeout:  DefaultTimeout,
		Poll:          DefaultPollPolicy(),
	}
}

func (c Config) withDefaults() (Config, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return c, errors.New(errors.ErrCodeInvalidConfig, "invalid service url %q", c.BaseURL)
	}
	c.BaseURL = base

	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultTimeout
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if err := c.Poll.validate(); err != nil {
		return c, err
	}
	return c, nil
}
