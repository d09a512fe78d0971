package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/internal/config"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/jobclient"
	"github.com/matzehuels/cximage/pkg/pipeline"
)

// renderFlags are the flags that shape a rendering request and the wait
// for its result.
type renderFlags struct {
	algorithm    string
	width        int
	height       int
	params       []string
	wait         bool
	pollAttempts int
	pollInterval time.Duration
	chunkSize    int
}

func (f *renderFlags) register(cmd *cobra.Command, request bool) {
	fs := cmd.Flags()
	if request {
		fs.StringVar(&f.algorithm, "algorithm", jobclient.DefaultAlgorithm, "rendering algorithm")
		fs.IntVar(&f.width, "width", jobclient.DefaultWidth, "image width in pixels")
		fs.IntVar(&f.height, "height", jobclient.DefaultHeight, "image height in pixels")
		fs.StringArrayVar(&f.params, "param", nil, "extra custom parameter as key=value (repeatable)")
	}
	fs.BoolVar(&f.wait, "wait", false, "poll the task status with backoff before fetching")
	fs.IntVar(&f.pollAttempts, "poll-attempts", jobclient.DefaultPollPolicy().Attempts, "status checks before giving up (with --wait)")
	fs.DurationVar(&f.pollInterval, "poll-interval", jobclient.DefaultPollPolicy().Interval, "initial interval between status checks (with --wait)")
	fs.IntVar(&f.chunkSize, "chunk-size", 1024, "bytes per read while writing the image")
}

// apply layers the flags the user set over cfg.
func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("algorithm") {
		cfg.Algorithm = f.algorithm
	}
	if fs.Changed("width") {
		cfg.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Height = f.height
	}
	if fs.Changed("param") {
		params, err := jobclient.ParseParams(f.params)
		if err != nil {
			return err
		}
		merged := make(map[string]string, len(cfg.Params)+len(params))
		for k, v := range cfg.Params {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		cfg.Params = merged
	}
	if fs.Changed("wait") && f.wait {
		cfg.Poll = string(jobclient.PollBackoff)
	}
	if fs.Changed("poll-attempts") {
		cfg.PollAttempts = f.pollAttempts
	}
	if fs.Changed("poll-interval") {
		cfg.PollInterval = f.pollInterval
	}
	if fs.Changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	return cfg.Validate()
}

// exportCommand creates the export command: load, submit, fetch, write.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags   renderFlags
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "export <network-source> <output-image-path>",
		Short: "Render a CX network to an image file",
		Long: `Render a CX network to an image file.

The network source is a CX file or an NDEx network UUID. The network is
submitted to the rendering service, and the image is written to the output
path once the service returns it. No file is written if any step fails.`,
		Args:              usageArgs(2, "<network-source> <output-image-path>"),
		ValidArgsFunction: completeNetworkSource("png"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			src, closeSource, err := c.resolveSource(ctx, cfg, args[0], refresh)
			if err != nil {
				return err
			}
			defer closeSource()

			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}

			dl := c.downloadProgress(ctx)
			runner := pipeline.NewRunner(jobs, c.Logger)
			result, err := runner.Execute(ctx, pipeline.Options{
				Source:    src,
				Output:    args[1],
				Request:   cfg.Request(),
				ChunkSize: cfg.ChunkSize,
				Progress:  dl.update,
			})
			dl.stop()
			if err != nil {
				return err
			}

			printExportResult(result)
			return nil
		},
	}

	flags.register(cmd, true)
	registerRenderCompletions(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-download NDEx networks even if cached")

	return cmd
}

// download shows a spinner with the running byte count. The spinner starts
// with the first chunk written, so failed fetches draw nothing.
type download struct {
	ctx  context.Context
	w    io.Writer
	spin *spinner
}

func (c *CLI) downloadProgress(ctx context.Context) *download {
	return &download{ctx: ctx, w: c.status}
}

func (d *download) update(n int64) {
	if d.spin == nil {
		d.spin = startSpinner(d.ctx, d.w, "Downloading image")
	}
	d.spin.byteProgress("Downloading image")(n)
}

func (d *download) stop() {
	if d.spin != nil {
		d.spin.Stop()
	}
}

func printExportResult(r *pipeline.Result) {
	name := r.NetworkName
	if name == "" {
		name = "network"
	}
	printSuccess("Rendered %s", StyleHighlight.Render(name))
	printStats(r.Stats.NodeCount, r.Stats.EdgeCount, r.Bytes, r.Stats.Total())
	printKeyValue("Task id", r.Job.ID)
	if r.ContentType != "" {
		printKeyValue("Type", r.ContentType)
	}
	printFile(r.Output)
}

// usageArgs validates the positional argument count and reports a mismatch
// as a USAGE error.
func usageArgs(n int, synopsis string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(errors.ErrCodeUsage, "accepts %d arg(s), received %d\nUsage: %s %s",
				n, len(args), cmd.CommandPath(), synopsis)
		}
		return nil
	}
}
