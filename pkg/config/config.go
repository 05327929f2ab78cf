// Package config loads and validates the docviz.toml project configuration.
//
// The configuration names the built documentation tree to scan, the manual
// cluster definitions, the automatic clustering switch, and the external
// projects whose graphs are merged into the home graph. Validation happens
// at load time and fails fast with a descriptive coded error on missing
// required fields, rather than tolerating partially-formed cluster entries.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/docviz/docviz/pkg/cluster"
	"github.com/docviz/docviz/pkg/errors"
)

// DefaultFilename is the config filename looked up in the working directory.
const DefaultFilename = "docviz.toml"

// Duration wraps time.Duration for TOML decoding of strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML strings.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Cache holds caching settings for external project fetches.
type Cache struct {
	// Dir is the cache directory. Empty selects ~/.cache/docviz.
	Dir string `toml:"dir"`
	// TTL bounds the age of cached external graphs. Zero means no expiry.
	TTL Duration `toml:"ttl"`
	// RedisAddr selects a Redis cache backend when non-empty (host:port).
	RedisAddr string `toml:"redis_addr"`
}

// Serve holds settings for the local preview server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Config is the full docviz project configuration.
type Config struct {
	// SiteRoot is the built documentation tree to scan (required).
	SiteRoot string `toml:"site_root"`
	// OutputDir receives the exported data and viewer assets.
	// Empty selects <site_root>/_static/docviz.
	OutputDir string `toml:"output_dir"`
	// RootDoc is the document the toctree is rooted at. Defaults to "index".
	RootDoc string `toml:"root_doc"`
	// AutoCluster groups unmatched pages by their first path segment.
	AutoCluster bool `toml:"auto_cluster"`
	// Clusters are evaluated in order; the first pattern match wins.
	Clusters []cluster.Cluster `toml:"clusters"`
	// Externals maps external project names to base URLs or local paths of
	// sites that also publish a docviz graph.
	Externals map[string]string `toml:"externals"`

	Cache Cache `toml:"cache"`
	Serve Serve `toml:"serve"`
}

// Default returns a configuration with defaults applied for a site root.
func Default(siteRoot string) Config {
	cfg := Config{SiteRoot: siteRoot}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.RootDoc == "" {
		c.RootDoc = "index"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 24 * time.Hour
	}
}

// Load reads and validates a TOML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates TOML configuration bytes.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and cluster definitions.
func (c *Config) Validate() error {
	if c.SiteRoot == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "site_root is required")
	}
	seen := make(map[string]bool, len(c.Clusters))
	for i, cl := range c.Clusters {
		if cl.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "clusters[%d]: name is required", i)
		}
		if len(cl.Patterns) == 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "cluster %q: at least one pattern is required", cl.Name)
		}
		if seen[cl.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "cluster %q defined twice", cl.Name)
		}
		seen[cl.Name] = true
	}
	for name, base := range c.Externals {
		if base == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "external project %q: base URL or path is required", name)
		}
	}
	return nil
}
