// Package cli implements the docviz command-line interface.
//
// This package provides commands for building the link-graph export from a
// built documentation site, serving the interactive viewer locally, rendering
// static snapshots, browsing cluster assignments, and pushing graphs into
// Neo4j or the snapshot archive. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: scan the site and write the export plus viewer assets
//   - serve: serve the built site and viewer locally
//   - render: generate SVG, PDF, or PNG snapshots
//   - clusters: show cluster assignments (table or interactive)
//   - cache: manage the external-project fetch cache
//   - push: load the exported graph into Neo4j
//   - archive: store and diff build snapshots
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/buildinfo"
	"github.com/docviz/docviz/pkg/cache"
	"github.com/docviz/docviz/pkg/config"
	"github.com/docviz/docviz/pkg/external"
	"github.com/docviz/docviz/pkg/httputil"
)

// appName is the application name used for directories and display.
const appName = "docviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

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
		Use:          "docviz",
		Short:        "Docviz turns a built documentation site into interactive link graphs",
		Long:         `Docviz scans a built documentation site, extracts cross-page references and the table-of-contents hierarchy, and writes an interactive graph viewer plus a GraphSON export alongside the site.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.clustersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.archiveCommand())

	return root
}

// loadConfig reads the project configuration and returns it together with
// the directory all relative config paths resolve against.
func loadConfig(path string) (config.Config, string, error) {
	if path == "" {
		path = config.DefaultFilename
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, filepath.Dir(abs), nil
}

// newFetcher assembles the external-project fetcher with the configured
// cache backend. A broken cache setup degrades to no caching rather than
// failing the command.
func (c *CLI) newFetcher(ctx context.Context, cfg config.Cache, noCache bool) *external.Fetcher {
	store := c.newCache(ctx, cfg, noCache)
	client := httputil.NewClient(store, cache.NewDefaultKeyer(), cfg.TTL.Duration)
	return external.NewFetcher(client, c.Logger)
}

func (c *CLI) newCache(ctx context.Context, cfg config.Cache, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return store
	}
	dir, err := cacheDir(cfg.Dir)
	if err != nil {
		return cache.NewNullCache()
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return store
}

// cacheDir returns the cache directory: the configured one, or the XDG
// standard location (~/.cache/docviz/).
func cacheDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
