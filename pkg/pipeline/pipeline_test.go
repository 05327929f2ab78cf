package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/docviz/docviz/pkg/cache"
	"github.com/docviz/docviz/pkg/cluster"
	"github.com/docviz/docviz/pkg/config"
	"github.com/docviz/docviz/pkg/external"
	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/httputil"
)

// writeSite materializes a small built documentation tree.
func writeSite(t *testing.T, pages map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for doc, body := range pages {
		path := filepath.Join(root, filepath.FromSlash(doc)+".html")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testSite(t *testing.T) string {
	return writeSite(t, map[string]string{
		"index": `<html><head><title>Home</title></head><body>
<nav><ul>
  <li><a href="guide/intro.html">Introduction</a></li>
  <li><a href="api/core.html">Core API</a></li>
</ul></nav>
<h1>Home</h1>
<p><a href="guide/intro.html">intro</a>, <a href="guide/intro.html">again</a>,
and the <a href="api/core.html">API</a>.</p>
</body></html>`,
		"guide/intro": `<html><body><h1>Introduction</h1>
<p><a href="../api/core.html">core</a></p></body></html>`,
		"api/core": `<html><body><h1>Core API</h1></body></html>`,
	})
}

func testConfig(root string) config.Config {
	cfg := config.Default(root)
	cfg.Clusters = []cluster.Cluster{{Name: "guides", Patterns: []string{"guide/**"}}}
	cfg.AutoCluster = true
	return cfg
}

func TestRun(t *testing.T) {
	root := testSite(t)
	res, err := Run(context.Background(), Options{Config: testConfig(root)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.BuildID == "" {
		t.Error("BuildID should be set")
	}
	if res.Pages != 3 {
		t.Errorf("Pages = %d, want 3", res.Pages)
	}
	if res.Toctree == nil || len(res.Toctree.Children) != 2 {
		t.Fatalf("Toctree = %+v, want root with 2 children", res.Toctree)
	}

	doc := res.Document
	if len(doc.Vertices) != 3 {
		t.Fatalf("vertices = %d, want 3", len(doc.Vertices))
	}
	if got := doc.Meta["build_id"]; got != res.BuildID {
		t.Errorf("meta build_id = %v, want %v", got, res.BuildID)
	}

	// Duplicate index -> guide/intro references fold into one edge.
	if len(doc.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(doc.Edges))
	}
	clusters := map[string]string{}
	for _, v := range doc.Vertices {
		name, _ := v.Properties[graphson.PropName].(string)
		c, _ := v.Properties[graphson.PropCluster].(string)
		clusters[name] = c
	}
	if clusters["Introduction"] != "guides" {
		t.Errorf("Introduction cluster = %q, want guides (manual pattern)", clusters["Introduction"])
	}
	if clusters["Core API"] != "api" {
		t.Errorf("Core API cluster = %q, want api (auto cluster)", clusters["Core API"])
	}
	if clusters["Home"] != "" {
		t.Errorf("Home cluster = %q, want unclustered root page", clusters["Home"])
	}

	// Default output location inside the scanned site.
	wantOut := filepath.Join(root, "_static", "docviz")
	if res.OutDir != wantOut {
		t.Errorf("OutDir = %q, want %q", res.OutDir, wantOut)
	}
	for _, rel := range []string{
		"graphson.json",
		"js/nodes.js",
		"js/links.js",
		"js/toctree.js",
		"html/linkgraph.html",
		"html/toctree.html",
	} {
		if _, err := os.Stat(filepath.Join(wantOut, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing output %s: %v", rel, err)
		}
	}

	exported, err := graphson.ReadFile(filepath.Join(wantOut, "graphson.json"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(exported.Vertices) != 3 || len(exported.Edges) != 3 {
		t.Errorf("export has %d vertices / %d edges, want 3 / 3",
			len(exported.Vertices), len(exported.Edges))
	}
}

func TestRunFoldsDuplicateReferences(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Config:     testConfig(testSite(t)),
		SkipAssets: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Pages are discovered in lexical order: api/core=0, guide/intro=1, index=2.
	found := false
	for _, e := range res.Document.Edges {
		if e.OutV == 2 && e.InV == 1 { // index -> guide/intro
			found = true
			if count, _ := e.Properties[graphson.PropReferenceCount].(int); count != 2 {
				t.Errorf("folded edge reference_count = %v, want 2", e.Properties[graphson.PropReferenceCount])
			}
		}
	}
	if !found {
		t.Error("missing index -> guide/intro edge")
	}
	if res.OutDir != "" {
		t.Errorf("SkipAssets should leave OutDir empty, got %q", res.OutDir)
	}
}

func TestRunSkipAssetsWritesNothing(t *testing.T) {
	root := testSite(t)
	if _, err := Run(context.Background(), Options{
		Config:     testConfig(root),
		SkipAssets: true,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "_static")); !os.IsNotExist(err) {
		t.Errorf("no output should be written with SkipAssets, stat err = %v", err)
	}
}

func TestRunCustomOutputDir(t *testing.T) {
	root := testSite(t)
	out := t.TempDir()
	cfg := testConfig(root)
	cfg.OutputDir = out

	res, err := Run(context.Background(), Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OutDir != out {
		t.Errorf("OutDir = %q, want %q", res.OutDir, out)
	}
	if _, err := os.Stat(filepath.Join(out, "graphson.json")); err != nil {
		t.Errorf("missing graphson.json in custom output dir: %v", err)
	}
}

func TestRunMergesLocalExternal(t *testing.T) {
	root := testSite(t)

	// A neighboring built site that published its own export.
	extSite := t.TempDir()
	extDoc := graphson.Document{
		Vertices: []graphson.Vertex{
			{ID: 0, Label: "page", Properties: map[string]any{
				graphson.PropName: "Other Home", graphson.PropPath: "../../../index.html",
			}},
		},
	}
	extOut := filepath.Join(extSite, "_static", "docviz")
	if err := os.MkdirAll(extOut, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(extDoc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(extOut, "graphson.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(root)
	cfg.Externals = map[string]string{"other": extSite}

	fetcher := external.NewFetcher(
		httputil.NewClient(cache.NewNullCache(), cache.NewDefaultKeyer(), 0),
		log.New(io.Discard))

	res, err := Run(context.Background(), Options{
		Config:     cfg,
		Fetcher:    fetcher,
		SkipAssets: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Merged) != 1 || res.Merged[0] != "other" {
		t.Fatalf("Merged = %v, want [other]", res.Merged)
	}
	if len(res.Document.Vertices) != 4 {
		t.Fatalf("vertices = %d, want 3 home + 1 imported", len(res.Document.Vertices))
	}
	imported := res.Document.Vertices[3]
	if c, _ := imported.Properties[graphson.PropCluster].(string); c != "other (external)" {
		t.Errorf("imported vertex cluster = %q, want synthetic external cluster", c)
	}
}

func TestRunUnreachableExternalIsSkipped(t *testing.T) {
	cfg := testConfig(testSite(t))
	cfg.Externals = map[string]string{"ghost": filepath.Join(t.TempDir(), "missing")}

	fetcher := external.NewFetcher(
		httputil.NewClient(cache.NewNullCache(), cache.NewDefaultKeyer(), 0),
		log.New(io.Discard))

	res, err := Run(context.Background(), Options{
		Config:     cfg,
		Fetcher:    fetcher,
		SkipAssets: true,
	})
	if err != nil {
		t.Fatalf("Run should not fail on an unreachable external: %v", err)
	}
	if len(res.Merged) != 0 {
		t.Errorf("Merged = %v, want none", res.Merged)
	}
	if len(res.Document.Vertices) != 3 {
		t.Errorf("vertices = %d, want just the home pages", len(res.Document.Vertices))
	}
}

func TestRunMissingSiteRoot(t *testing.T) {
	cfg := config.Default(filepath.Join(t.TempDir(), "nope"))
	if _, err := Run(context.Background(), Options{Config: cfg}); err == nil {
		t.Fatal("Run should fail for a missing site root")
	}
}
