// Package external integrates graphs exported by other documentation sites.
//
// A configured external project is another site that also publishes a
// docviz export under _static/docviz/graphson.json. Its graph is fetched
// (over HTTP, or read from a local build directory) and merged into the home
// graph: the external project's pages replace the bare intersphinx stub
// vertices the scanner created for links into that project, so the combined
// view shows real page titles on both sides of a cross-project edge.
//
// Fetch failures are warnings, never fatal; the home graph is always usable
// on its own.
package external

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/docviz/docviz/pkg/errors"
	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/httputil"
)

// exportPath is where a docviz-enabled site publishes its graph, relative
// to the site root.
const exportPath = "_static/docviz/graphson.json"

// Fetcher retrieves exported graphs from external projects.
type Fetcher struct {
	client *httputil.Client
	logger *log.Logger
}

// NewFetcher creates a fetcher. The client handles retry and caching for
// remote bases; local bases are read directly from disk.
func NewFetcher(client *httputil.Client, logger *log.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// Fetch retrieves the exported graph of the named project. The base is
// either a URL or a local path to a built site; local relative paths are
// resolved against baseDir (typically the directory holding docviz.toml).
func (f *Fetcher) Fetch(ctx context.Context, name, base, baseDir string) (graphson.Document, error) {
	if isRemote(base) {
		return f.fetchRemote(ctx, name, base)
	}
	return f.fetchLocal(name, base, baseDir)
}

func (f *Fetcher) fetchRemote(ctx context.Context, name, base string) (graphson.Document, error) {
	url := strings.TrimSuffix(base, "/") + "/" + exportPath
	body, err := f.client.Get(ctx, "external:"+name, url)
	if err != nil {
		return graphson.Document{}, err
	}
	var doc graphson.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return graphson.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "project %q: invalid graph document", name)
	}
	return doc, nil
}

func (f *Fetcher) fetchLocal(name, base, baseDir string) (graphson.Document, error) {
	if !filepath.IsAbs(base) {
		base = filepath.Join(baseDir, base)
	}
	path := filepath.Join(base, filepath.FromSlash(exportPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graphson.Document{}, errors.New(errors.ErrCodeProjectNotFound,
				"project %q: no graph export at %s (is the project built with docviz?)", name, path)
		}
		return graphson.Document{}, errors.Wrap(errors.ErrCodeInternal, err, "project %q: read export", name)
	}
	var doc graphson.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return graphson.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "project %q: invalid graph document", name)
	}
	return doc, nil
}

// isRemote reports whether the project base is a URL rather than a path.
func isRemote(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") ||
		strings.HasPrefix(base, "file://")
}
