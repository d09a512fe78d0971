// Package cli implements the cximage command-line interface.
//
// The root command exports a CX network to an image:
//
//	cximage <network-source> <output-image-path>
//
// The source is a CX file or the UUID of a network on an NDEx server. The
// network is submitted to the rendering service and the finished image is
// written to the output path. Further commands inspect and manage rendering
// tasks, list the service's algorithms, render a local Graphviz preview and
// manage the network download cache.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces every HTTP exchange and cache lookup.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/internal/config"
	"github.com/matzehuels/cximage/pkg/buildinfo"
	"github.com/matzehuels/cximage/pkg/cache"
	"github.com/matzehuels/cximage/pkg/integrations/ndex"
	"github.com/matzehuels/cximage/pkg/jobclient"
	"github.com/matzehuels/cximage/pkg/observability"
	"github.com/matzehuels/cximage/pkg/source"
)

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	status  io.Writer // spinner output, normally stderr
	verbose bool
	global  globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath    string
	serviceURL    string
	ndexHost      string
	ndexUser      string
	submitTimeout time.Duration
	fetchTimeout  time.Duration
	noCache       bool
}

// New creates a new CLI instance whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	setLevel(c.Logger, level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself performs an export.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.exportCommand()
	root.Use = appName + " <network-source> <output-image-path>"
	root.Short = "Render CX networks to images with the CDAPS rendering service"
	root.Long = `cximage loads a CX network from a file or an NDEx server, submits it to the
CDAPS image export service and writes the rendered image to disk.

The network source is either the path of a CX file or the UUID of a network
on NDEx (see --ndex-host).`
	root.Example = `  cximage network.cx network.png
  cximage 0a1b2c3d-4e5f-6789-abcd-ef0123456789 network.png --width 1024 --height 1024
  cximage network.cx out.png --wait --param layout=cose`
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.global.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cximage/config.toml)")
	pf.StringVar(&c.global.serviceURL, "service-url", jobclient.DefaultBaseURL, "rendering service endpoint")
	pf.StringVar(&c.global.ndexHost, "ndex-host", ndex.DefaultHost, "NDEx server host or URL")
	pf.StringVar(&c.global.ndexUser, "ndex-user", "", "NDEx user for private networks (password from CXIMAGE_NDEX_PASSWORD)")
	pf.DurationVar(&c.global.submitTimeout, "submit-timeout", jobclient.DefaultTimeout, "timeout for the submit request")
	pf.DurationVar(&c.global.fetchTimeout, "fetch-timeout", jobclient.DefaultTimeout, "timeout waiting for result data")
	pf.BoolVar(&c.global.noCache, "no-cache", false, "do not read or write the network cache")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if c.verbose {
			level = LogDebug
			registerDebugHooks(c.Logger)
		}
		c.SetLogLevel(level)
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.algorithmsCommand())
	root.AddCommand(c.serverStatusCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig layers command-line flags over the file and environment
// configuration. Only flags the user actually set take precedence.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, src, err := config.Load(c.global.configPath)
	if err != nil {
		return nil, err
	}
	if src.File != "" {
		c.Logger.Debug("loaded config file", "path", src.File)
	}
	if src.DotEnv != "" {
		c.Logger.Debug("loaded environment file", "path", src.DotEnv)
	}

	f := cmd.Flags()
	if f.Changed("service-url") {
		cfg.ServiceURL = c.global.serviceURL
	}
	if f.Changed("ndex-host") {
		cfg.NdexHost = c.global.ndexHost
	}
	if f.Changed("ndex-user") {
		cfg.NdexUser = c.global.ndexUser
	}
	if f.Changed("submit-timeout") {
		cfg.SubmitTimeout = c.global.submitTimeout
	}
	if f.Changed("fetch-timeout") {
		cfg.FetchTimeout = c.global.fetchTimeout
	}
	if f.Changed("no-cache") {
		cfg.NoCache = c.global.noCache
	}
	return cfg, nil
}

// =============================================================================
// Client Factories
// =============================================================================

// newJobClient creates a rendering service client from cfg.
func (c *CLI) newJobClient(cfg *config.Config) (*jobclient.Client, error) {
	return jobclient.New(jobclient.Config{
		BaseURL:       cfg.ServiceURL,
		SubmitTimeout: cfg.SubmitTimeout,
		FetchTimeout:  cfg.FetchTimeout,
		Poll:          cfg.PollPolicy(),
		Logger:        c.Logger,
	})
}

// newNDExClient creates an NDEx client backed by the configured cache.
// The returned close function releases the cache.
func (c *CLI) newNDExClient(ctx context.Context, cfg *config.Config) (*ndex.Client, func(), error) {
	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client := ndex.NewClient(backend, cfg.CacheTTL, cfg.NdexHost)
	if cfg.NdexUser != "" {
		client.SetBasicAuth(cfg.NdexUser, cfg.NdexPassword)
	}
	return client, func() { backend.Close() }, nil
}

// resolveSource resolves arg to a network source. The NDEx client and its
// cache are only opened for NDEx sources, so a local file never touches the
// cache backend. The returned close function is always non-nil.
func (c *CLI) resolveSource(ctx context.Context, cfg *config.Config, arg string, refresh bool) (source.Source, func(), error) {
	src, err := source.Resolve(arg, source.Options{Refresh: refresh})
	if err != nil {
		return nil, nil, err
	}
	remote, ok := src.(source.NDEx)
	if !ok {
		return src, func() {}, nil
	}
	client, closeCache, err := c.newNDExClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	remote.Fetcher = client
	remote.Host = client.Host()
	return remote, closeCache, nil
}

// newCache selects the cache backend: none with --no-cache, Redis when a
// URL is configured, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.NoCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		c.Logger.Debug("using redis cache")
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := cfg.CacheDirectory()
	if err != nil {
		c.Logger.Warn("network cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("network cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Observability
// =============================================================================

// registerDebugHooks traces pipeline stages, HTTP exchanges and cache
// lookups at debug level.
func registerDebugHooks(l *log.Logger) {
	observability.RegisterAll(observability.NewLogHooks(l))
}
