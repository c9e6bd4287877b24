package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/digest"
	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/gc"
	"github.com/matzehuels/objgraph/pkg/graph"
	objio "github.com/matzehuels/objgraph/pkg/io"
)

// convertCommand creates the convert command for re-encoding graph files.
func (c *CLI) convertCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "Convert a graph between binary, XML and zstd",
		Long: `Convert reads a graph in any supported format and writes it to out.

The output format comes from --format, then from the extension of out
(.sodg, .xml, .zst), then from codec.format in the config.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			if format != "" {
				f, err := objio.ParseFormat(format)
				if err != nil {
					return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "--format")
				}
				if err := writeFormat(g, args[1], f); err != nil {
					return err
				}
			} else if err := c.saveGraph(g, args[1]); err != nil {
				return err
			}

			prog.done("Converted " + args[0])
			if args[1] != "-" {
				printSuccess("Converted graph")
				printStats(g.Len(), g.EdgeCount())
				printFile(args[1])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: binary, xml, zstd")
	return cmd
}

// inspectCommand creates the inspect command that prints a vertex tree.
func (c *CLI) inspectCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the graph reachable from a vertex as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			start, err := startVertex(g, from)
			if err != nil {
				return err
			}
			text, err := g.Inspect(start)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start vertex (default: the root)")
	return cmd
}

// statsCommand creates the stats command summarizing a graph.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Show vertex, edge and reachability counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			st, err := collectStats(g)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(args[0]))
			printKeyValue("Vertices", StyleNumber.Render(strconv.Itoa(st.vertices)))
			printKeyValue("Edges", StyleNumber.Render(strconv.Itoa(st.edges)))
			printKeyValue("Root", st.root)
			printKeyValue("Reachable", StyleNumber.Render(strconv.Itoa(st.reachable)))
			printKeyValue("Garbage", StyleNumber.Render(strconv.Itoa(st.garbage)))
			printKeyValue("Duplicates", StyleNumber.Render(strconv.Itoa(st.duplicates)))
			printKeyValue("Digest", st.digest)
			return nil
		},
	}
}

type graphStats struct {
	vertices   int
	edges      int
	root       string
	reachable  int
	garbage    int
	duplicates int // vertices sharing a digest with an earlier one
	digest     string
}

func collectStats(g *graph.Graph) (graphStats, error) {
	st := graphStats{
		vertices: g.Len(),
		edges:    g.EdgeCount(),
		root:     g.Root().String(),
	}
	if g.Exists(g.Root()) {
		dead, err := gc.New(g).Unreachable()
		if err != nil {
			return st, err
		}
		st.garbage = len(dead)
		st.reachable = st.vertices - st.garbage
	} else {
		st.root += " (absent)"
	}

	groups, err := digest.Duplicates(g)
	if err != nil {
		return st, err
	}
	for _, grp := range groups {
		st.duplicates += len(grp) - 1
	}
	sum, err := digest.Graph(g)
	if err != nil {
		return st, err
	}
	st.digest = sum.String()
	return st, nil
}

// resolveCommand creates the resolve command that follows a dotted path.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		from  string
		trail bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [file] [path]",
		Short: "Follow a dotted attribute path and print the vertex reached",
		Long: `Resolve follows a path such as "x.y.z" or "x/y/z" one label per hop
and prints the identity reached. --trail prints every identity on the way.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			start, err := startVertex(g, from)
			if err != nil {
				return err
			}
			path := graph.SplitPath(args[1])
			out := cmd.OutOrStdout()

			if trail {
				ids, err := g.Walk(start, path)
				if err != nil {
					return err
				}
				names := make([]string, len(ids))
				for i, id := range ids {
					names[i] = id.String()
				}
				fmt.Fprintln(out, strings.Join(names, " "+iconArrow+" "))
				return nil
			}

			id, err := g.Resolve(start, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start vertex (default: the root)")
	cmd.Flags().BoolVar(&trail, "trail", false, "print every vertex on the path")
	return cmd
}

// startVertex parses a --from flag, defaulting to the graph root.
func startVertex(g *graph.Graph, from string) (graph.ID, error) {
	if from == "" {
		return g.Root(), nil
	}
	ids, err := parseIDs([]string{from})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}
