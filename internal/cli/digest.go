package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/digest"
)

// digestCommand creates the digest command printing content digests.
func (c *CLI) digestCommand() *cobra.Command {
	var (
		all  bool
		dups bool
	)

	cmd := &cobra.Command{
		Use:   "digest [file] [id...]",
		Short: "Print structural content digests",
		Long: `digest prints the BLAKE3 content digest of the given vertices. A vertex
digest covers its payload and everything reachable from it, and ignores
identities, so structurally equal subgraphs share a digest.

Without ids the digest of the whole graph is printed. --all prints every
vertex and --dups prints groups of vertices sharing a digest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case dups:
				groups, err := digest.Duplicates(g)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					printInfo("No duplicates")
					return nil
				}
				for _, grp := range groups {
					sum, err := digest.Of(g, grp[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s\n", sum.Short(), joinIDs(grp))
				}
			case all:
				sums, err := digest.All(g)
				if err != nil {
					return err
				}
				for _, id := range g.IDs() {
					fmt.Fprintf(out, "%s %s\n", id, sums[id])
				}
			case len(ids) == 0:
				sum, err := digest.Graph(g)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sum)
			default:
				slices.Sort(ids)
				for _, id := range slices.Compact(ids) {
					sum, err := digest.Of(g, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s\n", id, sum)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print the digest of every vertex")
	cmd.Flags().BoolVar(&dups, "dups", false, "print groups of vertices with equal digests")
	return cmd
}
