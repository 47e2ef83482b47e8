// Package cli implements the graphscope command-line interface.
//
// This package provides commands for laying out Graphviz diagrams, parsing
// them into graph models, viewing them interactively in the terminal, serving
// the pipeline over HTTP, and managing the layout cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Lay out DOT text and write SVG, PNG, or JSON artifacts
//   - parse: Emit the parsed graph model as JSON
//   - view: Interactive terminal viewer (pan/zoom/selection/fancy mode)
//   - serve: Expose the pipeline over HTTP
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/graphscope/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/buildinfo"
	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "graphscope"

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

	// configPath overrides the default config file location (--config).
	configPath string
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
		Use:          appName,
		Short:        "Graphscope is an interactive viewer for Graphviz diagrams",
		Long:         `Graphscope lays out Graphviz DOT text, parses the result into a graph model, and renders it either statically or through a force-directed simulation, with pan/zoom, selection highlighting, and PNG export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/graphscope/config.toml)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	}

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, honoring --config.
func (c *CLI) loadConfig() *config.Config {
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		c.Logger.Warn("config load failed, using defaults", "error", err)
		return config.Default()
	}
	return cfg
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the cache backend selected by the config, or a null cache
// when --no-cache is set. Backend failures degrade to no caching rather than
// failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache()
	}

	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphscope/).
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

// readInput reads DOT text from a file path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
