// Package nodelink renders object graphs as node-link diagrams.
//
// # Overview
//
// Vertices appear as rounded boxes named by identity ("ν3") and edges as
// arrows carrying their attribute label. The root vertex is drawn with a
// double outline.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels add the payload in dash hex and a short digest
//   - From: draw only the subgraph reachable from a vertex
//
// # DOT Format
//
// [ToDOT] is deterministic: vertices in ascending identity order and edges
// in label insertion order, so diagrams of an unchanged graph diff cleanly.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
