package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
)

// DefaultMaxNodes bounds the size of a preview; Graphviz layout time grows
// quickly beyond a few thousand nodes.
const DefaultMaxNodes = 2000

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed labels edges with their interaction and nodes with what
	// they represent.
	Detailed bool
	// MaxNodes rejects larger networks. 0 means DefaultMaxNodes, negative
	// means unlimited.
	MaxNodes int
}

// ToDOT converts a CX document to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(doc *cx.Document, opts Options) (string, error) {
	nodes, err := doc.Nodes()
	if err != nil {
		return "", err
	}
	edges, err := doc.Edges()
	if err != nil {
		return "", err
	}

	limit := opts.MaxNodes
	if limit == 0 {
		limit = DefaultMaxNodes
	}
	if limit > 0 && len(nodes) > limit {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"network has %d nodes, preview is limited to %d", len(nodes), limit)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if name := doc.Name(); name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", name)
	}
	buf.WriteString("\n")

	known := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
		fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeID(n.ID), fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		if opts.Detailed && e.Interaction != "" {
			fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", nodeID(e.Source), nodeID(e.Target), e.Interaction)
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(e.Source), nodeID(e.Target))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeID(id int64) string { return "n" + strconv.FormatInt(id, 10) }

func fmtLabel(n cx.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = strconv.FormatInt(n.ID, 10)
	}
	if detailed && n.Represents != "" {
		label += "\n" + n.Represents
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// Render renders dot in the format implied by the file extension of path:
// ".png" selects PNG, anything else SVG.
func Render(ctx context.Context, dot, path string) ([]byte, error) {
	if strings.EqualFold(pathExt(path), ".png") {
		return RenderPNG(ctx, dot)
	}
	return RenderSVG(ctx, dot)
}

func pathExt(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 && !strings.ContainsAny(p[i:], `/\`) {
		return p[i:]
	}
	return ""
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
