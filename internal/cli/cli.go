// Package cli implements the coursegraph command-line interface.
//
// # Commands
//
//   - render: draw the catalog diagram with a selection to PNG, SVG, PDF, DOT or JSON
//   - layout: print the computed layers and node positions
//   - hover: hit-test a pointer position and describe the course under it
//   - advise: run the five-question advising interview
//   - serve: start the HTTP server
//   - cache: manage the local cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings come from flags, then the environment (OPENAI_API_KEY,
// OPENAI_BASE_URL, OPENAI_MODEL, COURSEGRAPH_REDIS_ADDR), then
// ~/.config/coursegraph/config.toml (or --config), then built-in defaults.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/pkg/buildinfo"
	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "coursegraph"

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
	Config Config

	configFile string
	getenv     func(string) string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		getenv: os.Getenv,
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
		Short:        "coursegraph recommends MBA courses and draws their prerequisites",
		Long:         `coursegraph interviews a student about their goals, asks a chat-completion service for course recommendations, and renders the catalog as a layered prerequisite diagram with the recommended courses highlighted.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ~/.config/coursegraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.hoverCommand())
	root.AddCommand(c.adviseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig populates c.Config from the config file and environment.
func (c *CLI) loadConfig() error {
	cfg, unknown, err := loadConfig(c.configFile, c.getenv)
	if err != nil {
		return err
	}
	for _, k := range unknown {
		c.Logger.Warn("unknown config key", "key", k)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(cc, "artifact"), nil, c.Logger), nil
}

// newCache opens the configured backend: Redis when an address is set,
// otherwise the file cache. An unusable cache directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		prefix := c.Config.Cache.Prefix
		if prefix == "" {
			prefix = cache.DefaultRedisPrefix
		}
		return cache.NewRedisCache(ctx, addr, prefix)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Debug("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// loadCatalog reads the catalog named by the flag, the config file or,
// when neither is set, the embedded one.
func (c *CLI) loadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	return pipeline.LoadCatalog(ctx, pipeline.Options{CatalogPath: c.catalogPath(path)})
}

func (c *CLI) catalogPath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.Config.Catalog
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/coursegraph/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseIDs splits comma- or space-separated course IDs and uppercases them.
func parseIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			ids = append(ids, strings.ToUpper(id))
		}
	}
	return ids
}
