package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/store"
)

// snapshotCommand creates the snapshot command group for the configured store.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and load graphs in the snapshot store",
		Long: `snapshot keeps zstd-compressed graphs in the store selected by the
[store] config section: a directory of files (default), a SQLite
database, Redis, or none.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotLoadCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())
	cmd.AddCommand(c.snapshotPathCommand())

	return cmd
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var (
		key string
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Store a graph and print its key",
		Long: `save stores the graph under --key, or under a key derived from its
content digest when --key is omitted. Equal graphs get equal content keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			if ttl == 0 {
				if ttl, err = c.config.ttl(); err != nil {
					return err
				}
			}

			s, err := c.newStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if key == "" {
				if key, err = store.SaveContent(ctx, s, g, ttl); err != nil {
					return err
				}
			} else if err := store.SaveGraph(ctx, s, key, g, ttl); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), key)
			printSuccess("Saved snapshot")
			printStats(g.Len(), g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "snapshot key (default: content digest)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry (default: store.ttl from the config)")
	return cmd
}

// snapshotLoadCommand creates the "snapshot load" subcommand.
func (c *CLI) snapshotLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [key]",
		Short: "Write a stored graph to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newStore()
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := store.LoadGraph(cmd.Context(), s, args[0], c.config.graphOptions()...)
			if err != nil {
				return err
			}
			if err := c.saveGraph(g, output); err != nil {
				return err
			}

			printSuccess("Loaded snapshot %s", args[0])
			printStats(g.Len(), g.EdgeCount())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output graph file (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [key]",
		Short: "Remove a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apperr.ValidateKey(args[0]); err != nil {
				return err
			}
			s, err := c.newStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}

// snapshotPathCommand creates the "snapshot path" subcommand.
func (c *CLI) snapshotPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the file or sqlite store keeps snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := c.config.Store.Backend
			if b != backendFile && b != backendSQLite {
				printWarning("Store backend is %s, not file or sqlite", b)
				return nil
			}
			dir, err := c.storeDir()
			if err != nil {
				return err
			}
			if b == backendSQLite {
				dir = filepath.Join(dir, sqliteFile)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
