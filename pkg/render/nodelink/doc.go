// Package nodelink renders CX networks as node-link diagrams with Graphviz.
//
// # Overview
//
// The rendering service produces the real image; this package is a local
// preview that needs no network access. Nodes appear as rounded boxes labelled
// with their name, edges as arrows optionally labelled with their interaction.
//
// # Usage
//
// Convert a document to DOT, then render:
//
//	dot, err := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG] or [RenderPNG]
//   - Saved and processed with external Graphviz tools
//
// Edges whose endpoints are not declared in the nodes aspect are skipped.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
