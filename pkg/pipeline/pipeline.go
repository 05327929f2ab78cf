// Package pipeline orchestrates a full docviz build: scan the built site,
// assemble and classify the link graph, merge configured external project
// graphs, and write the export plus viewer assets into the output directory.
//
// Stages run strictly in order with no feedback loop. Every stage reports
// timing through the observability hooks and structured logging; external
// project failures degrade to warnings so a broken neighbor never fails the
// home build.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/docviz/docviz/pkg/assets"
	"github.com/docviz/docviz/pkg/cluster"
	"github.com/docviz/docviz/pkg/config"
	"github.com/docviz/docviz/pkg/external"
	"github.com/docviz/docviz/pkg/graph"
	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/observability"
	"github.com/docviz/docviz/pkg/scan"
	"github.com/docviz/docviz/pkg/toctree"
)

// Options configures a pipeline run.
type Options struct {
	// Config is the validated project configuration.
	Config config.Config
	// BaseDir anchors relative paths from the configuration, typically the
	// directory holding docviz.toml. Empty means the working directory.
	BaseDir string
	// Logger receives stage progress. Nil disables logging.
	Logger *log.Logger
	// Fetcher retrieves external project graphs. Nil disables merging even
	// when externals are configured.
	Fetcher *external.Fetcher
	// SkipAssets suppresses writing the viewer and data files, leaving only
	// the in-memory result. Used by commands that post-process the graph.
	SkipAssets bool
}

// Result is the outcome of a pipeline run.
type Result struct {
	BuildID  string
	Document graphson.Document
	Graph    *graph.Graph
	Toctree  *toctree.Node
	OutDir   string
	Merged   []string // external projects merged into the document
	Pages    int
	Duration time.Duration
}

// Run executes the build pipeline and returns the merged, exported result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg := opts.Config
	started := time.Now()
	buildID := uuid.NewString()
	logger = logger.With("build", shortID(buildID))

	siteRoot := resolve(opts.BaseDir, cfg.SiteRoot)
	hooks := observability.Pipeline()

	// Scan.
	hooks.OnScanStart(ctx, siteRoot)
	scanStart := time.Now()
	result, err := scan.Scan(ctx, scan.Options{
		Root:      siteRoot,
		RootDoc:   cfg.RootDoc,
		Externals: cfg.Externals,
		Logger:    logger,
	})
	pages := 0
	if result != nil {
		pages = len(result.Pages)
	}
	hooks.OnScanComplete(ctx, siteRoot, pages, time.Since(scanStart), err)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned site", "pages", len(result.Pages),
		"references", len(result.Refs), "externals", len(result.Externals))

	// Build and classify.
	g, err := buildGraph(buildID, result, cfg, logger)
	if err != nil {
		return nil, err
	}
	doc := graphson.FromGraph(g, cfg.Clusters)

	// Merge external project graphs.
	merged, doc := mergeExternals(ctx, doc, opts, logger, hooks)

	res := &Result{
		BuildID:  buildID,
		Document: doc,
		Graph:    g,
		Toctree:  result.Toctree,
		Merged:   merged,
		Pages:    len(result.Pages),
	}

	// Export.
	if !opts.SkipAssets {
		outDir := outputDir(opts.BaseDir, cfg, siteRoot)
		hooks.OnExportStart(ctx, buildID, len(doc.Vertices), len(doc.Edges))
		exportStart := time.Now()
		err = writeOutput(outDir, doc, result.Toctree)
		hooks.OnExportComplete(ctx, buildID, time.Since(exportStart), err)
		if err != nil {
			return nil, err
		}
		res.OutDir = outDir
		logger.Info("wrote viewer and export", "dir", outDir,
			"vertices", len(doc.Vertices), "edges", len(doc.Edges))
	}

	res.Duration = time.Since(started)
	return res, nil
}

// buildGraph turns scan output into a classified in-memory graph.
func buildGraph(buildID string, result *scan.Result, cfg config.Config, logger *log.Logger) (*graph.Graph, error) {
	g := graph.New(graph.Metadata{
		"build_id":     buildID,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})

	classifier := cluster.NewClassifier(cfg.Clusters, cfg.AutoCluster)

	for _, p := range result.Pages {
		v, err := g.AddPage(p.Doc, p.Title, viewerPath(p.Doc))
		if err != nil {
			return nil, err
		}
		v.Cluster = classifier.Classify(p.Doc)
	}
	for _, e := range result.Externals {
		if _, err := g.AddExternal(e.Key, e.Project, e.URL); err != nil {
			return nil, err
		}
	}
	for _, ref := range result.Refs {
		_, folded, err := g.AddReference(ref.From, ref.To, ref.Type)
		if err != nil {
			return nil, err
		}
		if folded {
			logger.Debug("folded duplicate reference", "from", ref.From, "to", ref.To)
		}
	}
	return g, nil
}

// mergeExternals folds each configured external project's export into doc.
// Projects merge in name order so repeated builds produce identical output.
func mergeExternals(ctx context.Context, doc graphson.Document, opts Options,
	logger *log.Logger, hooks observability.PipelineHooks) ([]string, graphson.Document) {

	if opts.Fetcher == nil || len(opts.Config.Externals) == 0 {
		return nil, doc
	}

	names := make([]string, 0, len(opts.Config.Externals))
	for name := range opts.Config.Externals {
		names = append(names, name)
	}
	sort.Strings(names)

	var merged []string
	for _, name := range names {
		base := opts.Config.Externals[name]
		hooks.OnMergeStart(ctx, name)
		mergeStart := time.Now()

		ext, err := opts.Fetcher.Fetch(ctx, name, base, opts.BaseDir)
		if err != nil {
			hooks.OnMergeComplete(ctx, name, 0, time.Since(mergeStart), err)
			logger.Warn("skipping external project", "project", name, "err", err)
			continue
		}

		doc = external.Merge(doc, ext, name, base)
		hooks.OnMergeComplete(ctx, name, len(ext.Vertices), time.Since(mergeStart), nil)
		logger.Info("merged external project", "project", name, "vertices", len(ext.Vertices))
		merged = append(merged, name)
	}
	return merged, doc
}

func writeOutput(outDir string, doc graphson.Document, tree *toctree.Node) error {
	if err := assets.Write(outDir); err != nil {
		return err
	}
	return assets.WriteData(outDir, doc, tree)
}

// viewerPath is the location of a page relative to the viewer HTML, which
// sits three directories below the site root.
func viewerPath(doc string) string {
	return fmt.Sprintf("../../../%s.html", doc)
}

// outputDir picks the export directory: the configured one, or the default
// _static/docviz inside the site being scanned.
func outputDir(baseDir string, cfg config.Config, siteRoot string) string {
	if cfg.OutputDir != "" {
		return resolve(baseDir, cfg.OutputDir)
	}
	return filepath.Join(siteRoot, "_static", "docviz")
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
