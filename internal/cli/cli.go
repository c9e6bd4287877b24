package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/buildinfo"
	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/graph"
	objio "github.com/matzehuels/objgraph/pkg/io"
	"github.com/matzehuels/objgraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "objgraph"

	// snapshotDir is the file store directory below the cache directory.
	snapshotDir = "snapshots"

	// sqliteFile is the sqlite store database inside the store directory.
	sqliteFile = "snapshots.db"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "objgraph manipulates object di-graphs",
		Long:         `objgraph is a CLI tool for building, inspecting, collecting, merging and hashing object di-graphs stored as SODG binary, XML or zstd documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: objgraph.toml or objgraph.yaml in the config dir)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.gcCommand())
	root.AddCommand(c.digestCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.scriptCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Graph Files
// =============================================================================

// loadGraph reads a graph file with the configured root and visit limit.
func (c *CLI) loadGraph(path string) (*graph.Graph, error) {
	return objio.Load(path, c.config.graphOptions()...)
}

// saveGraph writes g to path. The extension picks the codec; paths without
// a known extension use the configured format.
func (c *CLI) saveGraph(g *graph.Graph, path string) error {
	f := objio.DetectFormat(path)
	if f == objio.FormatUnknown {
		f = c.config.format()
	}
	return writeFormat(g, path, f)
}

// writeFormat writes g to path in format f regardless of the extension.
func writeFormat(g *graph.Graph, path string, f objio.Format) error {
	var buf bytes.Buffer
	if err := objio.Encode(g, &buf, f); err != nil {
		return err
	}
	return writeOutput(path, buf.Bytes())
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseIDs parses vertex identities given as flags or arguments.
func parseIDs(args []string) ([]graph.ID, error) {
	ids := make([]graph.ID, 0, len(args))
	for _, a := range args {
		id, err := graph.ParseID(strings.TrimSpace(a))
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid vertex %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore builds the snapshot store selected by the config. Under
// --verbose the store reports hits, misses and failures to the logger.
func (c *CLI) newStore() (store.Store, error) {
	cfg := c.config.Store
	var s store.Store
	switch cfg.Backend {
	case backendNone:
		s = store.NewNullStore()
	case backendRedis:
		s = store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case backendSQLite:
		dir, err := c.storeDir()
		if err != nil {
			return nil, err
		}
		ss, err := store.NewSQLiteStore(filepath.Join(dir, sqliteFile))
		if err != nil {
			return nil, err
		}
		s = ss
	default:
		dir, err := c.storeDir()
		if err != nil {
			return nil, err
		}
		fs, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		s = fs
	}
	if cfg.Prefix != "" {
		s = store.NewScopedStore(s, cfg.Prefix)
	}
	return store.Instrument(s, storeHooks(c.Logger)), nil
}

// storeDir returns the file or sqlite store directory: store.dir from the config or
// snapshots below cacheDir.
func (c *CLI) storeDir() (string, error) {
	if dir := expandHome(c.config.Store.Dir); dir != "" {
		return dir, nil
	}
	base, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(base, snapshotDir), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/objgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/objgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
