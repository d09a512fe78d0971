package cli

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/pkg/artifact"
	"github.com/matzehuels/cximage/pkg/render/nodelink"
)

// previewOptions holds the flags of the preview command.
type previewOptions struct {
	detailed bool
	maxNodes int
	dotOnly  bool
	refresh  bool
}

// previewCommand renders a network locally with Graphviz, without the
// rendering service. It is a quick look at a network's topology, not a
// substitute for the service's styled export.
func (c *CLI) previewCommand() *cobra.Command {
	opts := previewOptions{maxNodes: nodelink.DefaultMaxNodes}

	cmd := &cobra.Command{
		Use:   "preview <network-source> <output.svg|output.png|output.dot>",
		Short: "Render a quick node-link preview locally with Graphviz",
		Long: `Render a quick node-link preview of a network locally with Graphviz.

The output format follows the file extension: .png writes PNG, .dot writes the
Graphviz source, anything else writes SVG. No rendering service is contacted.`,
		Args:              usageArgs(2, "<network-source> <output.svg|output.png|output.dot>"),
		ValidArgsFunction: completeNetworkSource("svg", "png", "dot"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label edges with interactions and nodes with what they represent")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "refuse networks with more nodes (negative for no limit)")
	cmd.Flags().BoolVar(&opts.dotOnly, "dot", false, "write Graphviz DOT regardless of the output extension")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-download NDEx networks even if cached")

	return cmd
}

func (c *CLI) runPreview(cmd *cobra.Command, arg, output string, opts previewOptions) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	src, closeSource, err := c.resolveSource(ctx, cfg, arg, opts.refresh)
	if err != nil {
		return err
	}
	defer closeSource()

	prog := newProgress(c.Logger)
	doc, err := src.Load(ctx)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded network", "source", src.Describe())

	dot, err := nodelink.ToDOT(doc, nodelink.Options{Detailed: opts.detailed, MaxNodes: opts.maxNodes})
	if err != nil {
		return err
	}

	data := []byte(dot)
	if !opts.dotOnly && !isDOTPath(output) {
		spin := startSpinner(ctx, c.status, "Running Graphviz layout...")
		data, err = nodelink.Render(ctx, dot, output)
		if err != nil {
			spin.Fail("Layout failed")
			return err
		}
		spin.Stop()
	}

	n, err := artifact.WriteFile(output, bytes.NewReader(data), artifact.Options{ChunkSize: cfg.ChunkSize})
	if err != nil {
		return err
	}
	prog.done("Rendered preview", "bytes", n)

	printSuccess("Preview of %s", StyleHighlight.Render(src.Describe()))
	nodes, edges := doc.Counts()
	printStats(nodes, edges, n, 0)
	printFile(output)
	printNextStep("Render with the service", appName+" "+arg+" <output.png>")
	return nil
}

func isDOTPath(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".dot" || ext == ".gv"
}
