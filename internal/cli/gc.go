package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/gc"
	"github.com/matzehuels/objgraph/pkg/graph"
)

// gcOpts holds the command-line flags for the gc command.
type gcOpts struct {
	output string   // output path, empty rewrites the input
	roots  []string // collection roots, empty means the graph root
	dryRun bool     // list garbage without removing it
}

// gcCommand creates the gc command that removes unreachable vertices.
func (c *CLI) gcCommand() *cobra.Command {
	var opts gcOpts

	cmd := &cobra.Command{
		Use:   "gc [file]",
		Short: "Remove vertices unreachable from the roots",
		Long: `gc marks every vertex reachable from the roots and removes the rest,
together with any edges pointing at them.

Without --root the graph root (config "root", default ν0) is used.
--dry-run prints the identities that would be removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGC(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite the input)")
	cmd.Flags().StringSliceVar(&opts.roots, "root", nil, "collection root, repeatable")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list unreachable vertices without removing them")
	return cmd
}

func (c *CLI) runGC(cmd *cobra.Command, path string, opts gcOpts) error {
	logger := loggerFromContext(cmd.Context())

	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}
	roots, err := parseIDs(opts.roots)
	if err != nil {
		return err
	}
	col := gc.New(g, gc.WithLogger(logger), gc.WithHooks(gcHooks(logger)))

	if opts.dryRun {
		dead, err := col.Unreachable(roots...)
		if err != nil {
			return err
		}
		if len(dead) == 0 {
			printInfo("Nothing to collect")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), joinIDs(dead))
		return nil
	}

	rep, err := col.Collect(roots...)
	if err != nil {
		return err
	}
	out := opts.output
	if out == "" {
		out = path
	}
	if err := c.saveGraph(g, out); err != nil {
		return err
	}

	logger.Infof("Collected %d vertices in %s", len(rep.Removed), rep.Duration)
	if len(rep.Removed) == 0 {
		printInfo("Nothing to collect")
	} else {
		printSuccess("Removed %d unreachable vertices", len(rep.Removed))
		printDetail("Roots: %s", joinIDs(rep.Roots))
	}
	printStats(g.Len(), g.EdgeCount())
	printFile(out)
	return nil
}

func joinIDs(ids []graph.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, " ")
}
