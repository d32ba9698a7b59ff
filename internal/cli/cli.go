// Package cli implements the districtviz command-line interface.
//
// # Commands
//
//   - render: draw a ranking chart to SVG, HTML, JSON or PNG files
//   - list: print the columns of a dataset, or its districts ranked by one
//   - search: interactive navigation search over districts and addresses
//   - serve: run the HTTP server
//   - cache: manage the local response and artifact cache
//
// # Configuration
//
// Settings are read from ~/.config/districtviz/config.toml (or --config) and
// overridden by flags. All commands support --verbose (-v) for debug-level
// logging; the logger travels on the command context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/buildinfo"
	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/chart/sink"
	"github.com/matzehuels/districtviz/pkg/observability"
	"github.com/matzehuels/districtviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "districtviz"

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

	out        io.Writer
	configFile string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "districtviz ranks community districts and draws them as bar charts",
		Long:          `districtviz loads community district statistics, ranks the districts by an indicator and renders the ranking as an interactive bar chart, from the command line or over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.readConfig(); err != nil {
				return err
			}
			observability.LogHooks{Logger: c.Logger}.Register()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ~/.config/districtviz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) readConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			path = ""
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
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
	return pipeline.NewRunner(cc, cacheKeyer(), c.Logger), nil
}

// cacheSchema scopes every cache key; bump it when cached encodings change.
const cacheSchema = "v1:"

func cacheKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheSchema)
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		r := c.Config.Cache.Redis
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix + ":"})
		if err != nil {
			return nil, err
		}
		return cache.Instrumented(rc, "redis"), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Instrumented(fc, "file"), nil
}

// =============================================================================
// Paths
// =============================================================================

func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/districtviz/).
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
		return []string{string(sink.FormatSVG)}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
