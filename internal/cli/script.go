package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/script"
)

// scriptOpts holds the command-line flags for the script command.
type scriptOpts struct {
	output string // output graph path
	base   string // graph to deploy onto, empty starts from an empty graph
	vars   bool   // print the variable bindings
}

// scriptCommand creates the script command that builds graphs from
// ADD/BIND/PUT instructions.
func (c *CLI) scriptCommand() *cobra.Command {
	var opts scriptOpts

	cmd := &cobra.Command{
		Use:   "script [file]",
		Short: "Build a graph from ADD/BIND/PUT instructions",
		Long: `script deploys a file of ;-terminated instructions onto a graph:

  ADD(v);               create vertex v
  BIND(from, to, label); connect from -label-> to
  PUT(v, hex);          set the payload of v

Vertices are numbers or $variables. ADD($x) binds $x to a fresh vertex.
Lines starting with # are comments. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScript(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output graph file (required)")
	cmd.Flags().StringVar(&opts.base, "base", "", "existing graph to deploy onto")
	cmd.Flags().BoolVar(&opts.vars, "vars", false, "print variable bindings")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (c *CLI) runScript(cmd *cobra.Command, path string, opts scriptOpts) error {
	logger := loggerFromContext(cmd.Context())

	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	g := graph.New(c.config.graphOptions()...)
	if opts.base != "" {
		if g, err = c.loadGraph(opts.base); err != nil {
			return err
		}
	}

	s := script.New(string(text))
	n, err := s.Deploy(g)
	if err != nil {
		return err
	}
	logger.Debug("script deployed", "commands", n, "vertices", g.Len())

	if err := c.saveGraph(g, opts.output); err != nil {
		return err
	}

	if opts.vars {
		vars := s.Vars()
		out := cmd.OutOrStdout()
		for _, name := range slices.Sorted(maps.Keys(vars)) {
			fmt.Fprintf(out, "$%s = %s\n", name, vars[name])
		}
	}

	printSuccess("Applied %d commands", n)
	printStats(g.Len(), g.EdgeCount())
	printFile(opts.output)
	printNextStep("Inspect it", "objgraph inspect "+opts.output)
	return nil
}

// readInput reads path, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		buf, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return buf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return data, nil
}
