package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/objgraph/pkg/digest"
	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/payload"
	"github.com/matzehuels/objgraph/pkg/render"
)

// maxPayloadChars truncates long payloads in detailed labels.
const maxPayloadChars = 32

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the payload and a short digest to node labels.
	// When false, only the identity is shown.
	Detailed bool

	// From restricts the diagram to vertices reachable from this identity.
	// Nil draws every vertex.
	From *graph.ID
}

// ToDOT converts a graph to Graphviz DOT format. The result can be rendered
// with [RenderSVG], [RenderPDF], or [RenderPNG].
//
// It returns an error only when From names an absent vertex or the
// reachability walk fails.
func ToDOT(g *graph.Graph, opts Options) (string, error) {
	ids := g.IDs()
	if opts.From != nil {
		sub, err := g.Reachable(*opts.From)
		if err != nil {
			return "", err
		}
		keep := make(map[graph.ID]bool, len(sub))
		for _, id := range sub {
			keep[id] = true
		}
		ids = ids[:0]
		for id := range g.All() {
			if keep[id] {
				ids = append(ids, id)
			}
		}
	}

	var sums map[graph.ID]digest.Digest
	if opts.Detailed {
		// A failed digest only drops the digest line from labels.
		sums, _ = digest.All(g)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range ids {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g, id, sums))}
		if id == g.Root() {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		for label, to := range g.Kids(id) {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", id.String(), to.String(), label)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(g *graph.Graph, id graph.ID, sums map[graph.ID]digest.Digest) string {
	if sums == nil {
		return id.String()
	}
	parts := []string{id.String()}
	if data, ok := g.Payload(id); ok {
		text := payload.Print(data)
		if len(text) > maxPayloadChars {
			text = text[:maxPayloadChars] + "..."
		}
		parts = append(parts, text)
	}
	if sum, ok := sums[id]; ok {
		parts = append(parts, "#"+sum.Short())
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales from a
// zero origin at its natural size.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
