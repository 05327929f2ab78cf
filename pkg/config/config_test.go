package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docviz/docviz/pkg/errors"
)

const validConfig = `
site_root = "docs/_build/html"
auto_cluster = true
root_doc = "contents"

[[clusters]]
name = "API"
patterns = ["api/**"]

[[clusters]]
name = "Guides"
patterns = ["guide/*", "tutorial"]

[externals]
sphinx = "https://www.sphinx-doc.org/en/master"

[cache]
ttl = "1h"
redis_addr = "localhost:6379"

[serve]
addr = ":9000"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.SiteRoot != "docs/_build/html" {
		t.Errorf("SiteRoot = %q", cfg.SiteRoot)
	}
	if !cfg.AutoCluster {
		t.Error("AutoCluster = false, want true")
	}
	if cfg.RootDoc != "contents" {
		t.Errorf("RootDoc = %q, want contents", cfg.RootDoc)
	}
	if len(cfg.Clusters) != 2 || cfg.Clusters[0].Name != "API" {
		t.Errorf("Clusters = %+v", cfg.Clusters)
	}
	if cfg.Externals["sphinx"] == "" {
		t.Error("externals not decoded")
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`site_root = "site"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.RootDoc != "index" {
		t.Errorf("RootDoc = %q, want index", cfg.RootDoc)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want :8080", cfg.Serve.Addr)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h default", cfg.Cache.TTL.Duration)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{name: "MissingSiteRoot", toml: `auto_cluster = true`},
		{
			name: "ClusterWithoutName",
			toml: "site_root = \"s\"\n[[clusters]]\npatterns = [\"a/*\"]",
		},
		{
			name: "ClusterWithoutPatterns",
			toml: "site_root = \"s\"\n[[clusters]]\nname = \"X\"",
		},
		{
			name: "DuplicateClusterName",
			toml: "site_root = \"s\"\n[[clusters]]\nname = \"X\"\npatterns = [\"a\"]\n[[clusters]]\nname = \"X\"\npatterns = [\"b\"]",
		},
		{
			name: "EmptyExternalBase",
			toml: "site_root = \"s\"\n[externals]\nsphinx = \"\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestParseMalformedTOML(t *testing.T) {
	_, err := Parse([]byte(`site_root = [broken`))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteRoot == "" {
		t.Error("Load returned empty config")
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}
