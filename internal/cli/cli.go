package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lifelines/pkg/buildinfo"
	"github.com/matzehuels/lifelines/pkg/cache"
	"github.com/matzehuels/lifelines/pkg/config"
	"github.com/matzehuels/lifelines/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lifelines"

	// Cache backends accepted by --cache.
	backendNone  = "none"
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Lifelines lays out family trees as life-line charts",
		Long: `Lifelines draws every person of a family tree as a vertical line spanning
their life, joined to spouses and parents by connectors, and packs the chart
into as few columns as the family structure allows.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Input Flags
// =============================================================================

// inputFlags are the flags every chart-producing command shares.
type inputFlags struct {
	config      string // chart config file (.toml, .yaml, .json)
	roots       []string
	generations int
	noCache     bool
	refresh     bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "chart config file (.toml, .yaml, .yml, .json)")
	cmd.Flags().StringSliceVarP(&f.roots, "root", "r", nil, "root individual id (repeatable; overrides config roots)")
	cmd.Flags().IntVarP(&f.generations, "generations", "g", 0, "generations above each --root (default 4, negative for all)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options reads the tree file and assembles pipeline options for it.
func (f *inputFlags) options(treePath string, formats []string) (pipeline.Options, error) {
	data, err := os.ReadFile(treePath)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read tree %s: %w", treePath, err)
	}
	cfg, err := f.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Tree:       data,
		TreeFormat: treeFormat(treePath),
		Source:     treePath,
		Refresh:    f.refresh,
		Config:     cfg,
		Formats:    formats,
	}, nil
}

// loadConfig reads --config and applies --root/--generations on top.
func (f *inputFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if f.config != "" {
		loaded, err := config.Read(f.config)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", f.config, err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	if len(f.roots) > 0 {
		cfg.Roots = cfg.Roots[:0]
		for _, id := range f.roots {
			cfg.Roots = append(cfg.Roots, config.Root{ID: id, Generations: f.generations})
		}
	} else if f.generations != 0 {
		for i := range cfg.Roots {
			cfg.Roots[i].Generations = f.generations
		}
	}
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("no root individual: pass --root or set roots in --config")
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// treeFormat picks the tree document format from the file extension.
func treeFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return pipeline.TreeYAML
	}
	return pipeline.TreeJSON
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags select the cache backend.
type cacheFlags struct {
	backend  string
	redisURL string
	mongoURI string
	scope    string
}

func (f *cacheFlags) register(cmd *cobra.Command, defaultBackend string) {
	cmd.Flags().StringVar(&f.backend, "cache", defaultBackend, "cache backend: none, file, redis, mongo")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "redis://localhost:6379/0", "redis URL (--cache redis)")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "mongodb://localhost:27017", "mongo URI (--cache mongo)")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "key prefix when several charts share one backend")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	backend := backendFile
	if noCache {
		backend = backendNone
	}
	return c.newRunnerWithBackend(context.Background(), cacheFlags{backend: backend})
}

func (c *CLI) newRunnerWithBackend(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if f.scope != "" {
		keyer = cache.NewScopedKeyer(nil, f.scope+":")
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	switch f.backend {
	case backendNone, "":
		return cache.NewNullCache(), nil
	case backendFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case backendRedis:
		return cache.NewRedisCache(ctx, f.redisURL, cache.WithRedisPrefix(appName+":"))
	case backendMongo:
		return cache.NewMongoCache(ctx, f.mongoURI, "", "")
	}
	return nil, fmt.Errorf("invalid cache backend: %s (must be none, file, redis or mongo)", f.backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the per-user cache directory ($XDG_CACHE_HOME/lifelines
// on Linux).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
