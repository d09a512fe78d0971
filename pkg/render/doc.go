// Package render groups the local renderers of cximage.
//
// Final images come from the remote rendering service (see
// [github.com/matzehuels/cximage/pkg/jobclient]). The renderers below run
// in-process and exist for quick previews:
//
//   - [nodelink]: Graphviz node-link diagrams (SVG, PNG or DOT)
package render
