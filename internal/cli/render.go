package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/render/nodelink"
)

// Output formats accepted by the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output path, "-" or empty writes DOT to stdout
	format   string  // overrides the output extension
	detailed bool    // show payloads and digests in node labels
	from     string  // draw only what is reachable from this vertex
	scale    float64 // PNG scale factor
}

// renderCommand creates the render command for drawing node-link diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph as a node-link diagram",
		Long: `render draws the graph with Graphviz. The output format comes from
--format or the extension of --output: dot, svg, pdf or png. PDF and PNG
need rsvg-convert (librsvg) on PATH.

Without --output the DOT source is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show payloads and digests")
	cmd.Flags().StringVar(&opts.from, "from", "", "draw only vertices reachable from this one")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	format, err := renderFormat(opts)
	if err != nil {
		return err
	}

	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}
	nopts := nodelink.Options{Detailed: opts.detailed}
	if opts.from != "" {
		from, err := startVertex(g, opts.from)
		if err != nil {
			return err
		}
		nopts.From = &from
	}
	dot, err := nodelink.ToDOT(g, nopts)
	if err != nil {
		return err
	}

	if opts.output == "" || opts.output == "-" {
		fmt.Fprint(cmd.OutOrStdout(), dot)
		return nil
	}

	data, err := renderDOT(cmd.Context(), dot, format, opts.scale)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}

	prog.done("Rendered " + path)
	printSuccess("Rendered %s", strings.ToUpper(format))
	printFile(opts.output)
	return nil
}

// renderFormat picks the output format from --format or the extension.
func renderFormat(opts renderOpts) (string, error) {
	f := opts.format
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	if f == "" {
		f = formatDOT
	}
	switch f {
	case formatDOT, formatSVG, formatPDF, formatPNG:
		return f, nil
	case "gv":
		return formatDOT, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidInput, "unknown render format %q (want dot, svg, pdf or png)", f)
}

func renderDOT(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, scale)
	}
	return []byte(dot), nil
}
