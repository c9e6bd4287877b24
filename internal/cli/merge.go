package cli

import (
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/graph"
)

// mergeOpts holds the command-line flags for the merge command.
type mergeOpts struct {
	anchor string // destination vertex the source root is unified with
	from   string // source start vertex, empty means the source root
	output string // output path, empty rewrites the destination
	policy string // payload policy, empty means the configured one
}

// mergeCommand creates the merge command that unifies two graphs.
func (c *CLI) mergeCommand() *cobra.Command {
	var opts mergeOpts

	cmd := &cobra.Command{
		Use:   "merge [dst] [src]",
		Short: "Merge a source graph into a destination graph",
		Long: `merge unifies the structure reachable from the source root with the
destination at the anchor vertex. Vertices are matched by attribute path,
not by identity: an edge label present on both sides is followed, a label
missing from the destination is added. Nothing in the destination is
removed, and merging the same source twice changes nothing.

--policy decides what happens to payloads of matched vertices:
keep (default) leaves them, fill sets only missing ones, overwrite
replaces them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.anchor, "anchor", "", "destination anchor vertex (default: the root)")
	cmd.Flags().StringVar(&opts.from, "from", "", "source start vertex (default: the source root)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite dst)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "payload policy: keep, fill, overwrite")
	return cmd
}

func (c *CLI) runMerge(cmd *cobra.Command, dstPath, srcPath string, opts mergeOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	policy := c.config.policy()
	if opts.policy != "" {
		p, err := graph.ParseMergePolicy(opts.policy)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "--policy")
		}
		policy = p
	}

	dst, err := c.loadGraph(dstPath)
	if err != nil {
		return err
	}
	src, err := c.loadGraph(srcPath)
	if err != nil {
		return err
	}
	anchor, err := startVertex(dst, opts.anchor)
	if err != nil {
		return err
	}
	start, err := startVertex(src, opts.from)
	if err != nil {
		return err
	}

	rep, err := dst.MergeFrom(src, start, anchor, graph.MergeOptions{Policy: policy})
	if err != nil {
		return err
	}
	logger.Debug("merge complete",
		"created", rep.Created, "connected", rep.Connected,
		"reused", rep.Reused, "updated", rep.Updated, "visited", rep.Visited)

	out := opts.output
	if out == "" {
		out = dstPath
	}
	if !rep.Changed() && out == dstPath {
		printInfo("Nothing to merge")
		return nil
	}
	if err := c.saveGraph(dst, out); err != nil {
		return err
	}

	prog.done("Merged " + srcPath)
	printSuccess("Merged %s into %s at %s", srcPath, dstPath, anchor)
	printDetail("%d created, %d connected, %d reused, %d updated (policy %s)",
		rep.Created, rep.Connected, rep.Reused, rep.Updated, policy)
	printStats(dst.Len(), dst.EdgeCount())
	printFile(out)
	return nil
}
