// Package render converts rendered graph diagrams between output formats.
//
// # Overview
//
// Diagrams are produced as SVG by the [nodelink] subpackage. The [ToPDF]
// and [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// When rsvg-convert is not installed the conversions fail with
// [ErrConverterMissing]; SVG and DOT output never need it.
//
// [nodelink]: github.com/matzehuels/objgraph/pkg/render/nodelink
package render
