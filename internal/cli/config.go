package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/graph"
	objio "github.com/matzehuels/objgraph/pkg/io"
)

// Store backends accepted in [StoreConfig.Backend].
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendSQLite = "sqlite"
	backendNone   = "none"
)

// configNames are the file names searched in the config directory, in order.
var configNames = []string{"objgraph.toml", "objgraph.yaml", "objgraph.yml"}

// Config is the CLI configuration file. Every field is optional.
type Config struct {
	Root       uint32      `toml:"root" yaml:"root"`
	VisitLimit int         `toml:"visit_limit" yaml:"visit_limit"`
	Codec      CodecConfig `toml:"codec" yaml:"codec"`
	Merge      MergeConfig `toml:"merge" yaml:"merge"`
	Store      StoreConfig `toml:"store" yaml:"store"`
}

// CodecConfig selects the format for output paths without a known extension.
type CodecConfig struct {
	Format string `toml:"format" yaml:"format"` // binary | xml | zstd
}

// MergeConfig holds the default merge policy.
type MergeConfig struct {
	Policy string `toml:"policy" yaml:"policy"` // keep | fill | overwrite
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	Backend       string `toml:"backend" yaml:"backend"` // file | sqlite | redis | none
	Dir           string `toml:"dir" yaml:"dir"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db"`
	Prefix        string `toml:"prefix" yaml:"prefix"`
	TTL           string `toml:"ttl" yaml:"ttl"` // Go duration, empty means no expiry
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		VisitLimit: graph.DefaultVisitLimit,
		Codec:      CodecConfig{Format: objio.FormatBinary.String()},
		Merge:      MergeConfig{Policy: graph.MergeKeep.String()},
		Store: StoreConfig{
			Backend:   backendFile,
			RedisAddr: "localhost:6379",
			Prefix:    appName + ":",
		},
	}
}

// loadConfig reads the config at path. An empty path searches the config
// directory and falls back to [DefaultConfig] when nothing is there.
func loadConfig(path string) (Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil || found == "" {
			return DefaultConfig(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := parseConfig(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	for _, name := range configNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// parseConfig decodes data on top of the defaults. Files ending in .yaml or
// .yml are YAML, everything else is TOML. Unknown keys are rejected.
func parseConfig(data []byte, ext string) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse yaml")
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, apperr.New(apperr.ErrCodeInvalidInput, "unknown key %q", undecoded[0].String())
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.VisitLimit < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "visit_limit must not be negative")
	}
	if _, err := objio.ParseFormat(c.Codec.Format); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "codec.format")
	}
	if _, err := graph.ParseMergePolicy(c.Merge.Policy); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "merge.policy")
	}
	switch c.Store.Backend {
	case backendFile, backendSQLite, backendRedis, backendNone:
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "store.backend %q (want file, sqlite, redis or none)", c.Store.Backend)
	}
	if _, err := c.ttl(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "store.ttl")
	}
	return nil
}

// graphOptions returns the options every loaded graph is built with.
func (c Config) graphOptions() []graph.Option {
	return []graph.Option{
		graph.WithRoot(graph.ID(c.Root)),
		graph.WithVisitLimit(c.VisitLimit),
	}
}

// format returns the configured codec. The config has been validated.
func (c Config) format() objio.Format {
	f, err := objio.ParseFormat(c.Codec.Format)
	if err != nil {
		return objio.FormatBinary
	}
	return f
}

func (c Config) policy() graph.MergePolicy {
	p, err := graph.ParseMergePolicy(c.Merge.Policy)
	if err != nil {
		return graph.MergeKeep
	}
	return p
}

func (c Config) ttl() (time.Duration, error) {
	if c.Store.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Store.TTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
