// Package config loads cximage settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. Built-in defaults (the public CDAPS and NDEx deployments)
//  2. A TOML file: --config, or $XDG_CONFIG_HOME/cximage/config.toml
//  3. Environment variables prefixed CXIMAGE_, including those read from a
//     .env file in the working directory
//  4. Command-line flags (applied by the cli package)
//
// Example config.toml:
//
//	service_url = "http://localhost:8081/cd/communitydetection/v1"
//	ndex_host   = "public.ndexbio.org"
//	width       = 1024
//	height      = 768
//	poll        = "backoff"
//	poll_interval = "2s"
//
//	[params]
//	layout = "cose"
package config

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/cximage/pkg/artifact"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/integrations/ndex"
	"github.com/matzehuels/cximage/pkg/jobclient"
)

// AppName names the config and cache directories.
const AppName = "cximage"

// EnvPrefix is the prefix of all environment variables.
const EnvPrefix = "CXIMAGE"

// DefaultNetworkTTL is how long downloaded networks stay cached.
const DefaultNetworkTTL = 24 * time.Hour

// Config holds every setting of the CLI.
type Config struct {
	// Rendering service
	ServiceURL    string            `toml:"service_url" split_words:"true"`
	Algorithm     string            `toml:"algorithm" split_words:"true"`
	Width         int               `toml:"width" split_words:"true"`
	Height        int               `toml:"height" split_words:"true"`
	Params        map[string]string `toml:"params" split_words:"true"`
	SubmitTimeout time.Duration     `toml:"submit_timeout" split_words:"true"`
	FetchTimeout  time.Duration     `toml:"fetch_timeout" split_words:"true"`

	// Polling
	Poll            string        `toml:"poll" split_words:"true"`
	PollAttempts    int           `toml:"poll_attempts" split_words:"true"`
	PollInterval    time.Duration `toml:"poll_interval" split_words:"true"`
	PollMaxInterval time.Duration `toml:"poll_max_interval" split_words:"true"`

	// NDEx
	NdexHost     string `toml:"ndex_host" split_words:"true"`
	NdexUser     string `toml:"ndex_user" split_words:"true"`
	NdexPassword string `toml:"ndex_password" split_words:"true"`

	// Output
	ChunkSize int `toml:"chunk_size" split_words:"true"`

	// Network cache
	CacheDir string        `toml:"cache_dir" split_words:"true"`
	CacheTTL time.Duration `toml:"cache_ttl" split_words:"true"`
	NoCache  bool          `toml:"no_cache" split_words:"true"`
	RedisURL string        `toml:"redis_url" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	poll := jobclient.DefaultPollPolicy()
	return &Config{
		ServiceURL:      jobclient.DefaultBaseURL,
		Algorithm:       jobclient.DefaultAlgorithm,
		Width:           jobclient.DefaultWidth,
		Height:          jobclient.DefaultHeight,
		SubmitTimeout:   jobclient.DefaultTimeout,
		FetchTimeout:    jobclient.DefaultTimeout,
		Poll:            string(poll.Mode),
		PollAttempts:    poll.Attempts,
		PollInterval:    poll.Interval,
		PollMaxInterval: poll.MaxInterval,
		NdexHost:        ndex.DefaultHost,
		ChunkSize:       artifact.DefaultChunkSize,
		CacheTTL:        DefaultNetworkTTL,
	}
}

// Source records where the configuration came from.
type Source struct {
	File   string // Config file that was read, or ""
	DotEnv string // .env file that was read, or ""
}

// Load builds the configuration from defaults, the config file and the
// environment. If path is empty the default location is used and may be
// absent; an explicit path must exist.
func Load(path string) (*Config, Source, error) {
	cfg := Default()
	var src Source

	if err := godotenv.Load(".env"); err == nil {
		src.DotEnv = ".env"
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		return nil, src, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read .env")
	}

	file, explicit := path, path != ""
	if !explicit {
		file = DefaultPath()
	}
	if file != "" {
		err := cfg.decodeFile(file)
		switch {
		case err == nil:
			src.File = file
		case !explicit && stderrors.Is(err, fs.ErrNotExist):
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, src, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", file)
		default:
			return nil, src, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, src, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	return cfg, src, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks value ranges. It does not contact any service.
func (c *Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "image size must not be negative, got %dx%d", c.Width, c.Height)
	}
	if _, err := jobclient.ParsePollMode(c.Poll); err != nil {
		return err
	}
	if c.ChunkSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "chunk size must not be negative, got %d", c.ChunkSize)
	}
	if c.SubmitTimeout < 0 || c.FetchTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeouts must not be negative")
	}
	return nil
}

// PollPolicy returns the configured poll policy.
func (c *Config) PollPolicy() jobclient.PollPolicy {
	mode, _ := jobclient.ParsePollMode(c.Poll)
	return jobclient.PollPolicy{
		Mode:        mode,
		Attempts:    c.PollAttempts,
		Interval:    c.PollInterval,
		MaxInterval: c.PollMaxInterval,
	}
}

// Request returns the rendering request described by the configuration.
func (c *Config) Request() jobclient.Request {
	return jobclient.Request{Algorithm: c.Algorithm, Width: c.Width, Height: c.Height, Params: c.Params}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.NdexPassword != "" {
		out.NdexPassword = "********"
	}
	return &out
}

// WriteTOML encodes the configuration as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultPath returns $XDG_CONFIG_HOME/cximage/config.toml, falling back
// to ~/.config. It returns "" if no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// CacheDirectory returns the configured cache directory, or the XDG default
// ($XDG_CACHE_HOME/cximage, falling back to ~/.cache/cximage).
func (c *Config) CacheDirectory() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate cache directory")
	}
	return filepath.Join(home, ".cache", AppName), nil
}
