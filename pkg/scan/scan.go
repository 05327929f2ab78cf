// Package scan walks a built documentation site and extracts the raw
// material for the link graph: page titles, cross-page references, links to
// configured external projects, and the table-of-contents hierarchy.
//
// The scanner reads already-materialized build artifacts (the HTML output of
// the docs generator); it never runs the generator itself. Pages are
// discovered in lexical walk order, which keeps vertex identifiers stable
// across rebuilds of an unchanged site.
package scan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/docviz/docviz/pkg/errors"
	"github.com/docviz/docviz/pkg/toctree"
)

// Reference types recorded by the scanner.
const (
	RefTypeInternal    = "ref"
	RefTypeIntersphinx = "intersphinx"
)

// Pages that documentation generators emit but that are not content:
// index/search apparatus whose link farms would drown the graph.
var skippedDocs = map[string]bool{
	"search":      true,
	"genindex":    true,
	"py-modindex": true,
}

// Page is a discovered documentation page.
type Page struct {
	Doc   string // normalized docname, e.g. "guide/intro"
	Title string // extracted title, falls back to the docname
}

// External is a discovered link target in a configured external project.
type External struct {
	Key     string // stable key: "external:<project>:<url>"
	Project string
	URL     string
}

// Reference is a single directed link occurrence between two targets.
// From is always a docname; To is a docname or an External key.
type Reference struct {
	From string
	To   string
	Type string
}

// Options configures a scan.
type Options struct {
	// Root is the built site directory (required).
	Root string
	// RootDoc is the docname the toctree is rooted at (default "index").
	RootDoc string
	// Externals maps external project names to base URLs. Links under a
	// base URL are recorded as intersphinx references; other external
	// links are ignored.
	Externals map[string]string
	// Logger receives per-page debug output. Nil disables logging.
	Logger *log.Logger
}

// Result is the raw output of a scan, consumed by the graph builder.
type Result struct {
	Pages     []Page      // internal pages in discovery order
	Externals []External  // intersphinx targets in discovery order
	Refs      []Reference // individual references, duplicates preserved
	Toctree   *toctree.Node
}

// Scan walks the built site under opts.Root and extracts pages, references
// and the toctree. Pages that fail to parse are skipped with a warning
// rather than aborting the scan.
func Scan(ctx context.Context, opts Options) (*Result, error) {
	if opts.Root == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scan root is required")
	}
	if opts.RootDoc == "" {
		opts.RootDoc = "index"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "site root %s is not a directory", opts.Root)
	}

	docs, err := collectDocs(opts.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "walk %s", opts.Root)
	}

	res := &Result{}
	seenExternal := make(map[string]bool)
	docSet := make(map[string]bool, len(docs))
	for _, d := range docs {
		docSet[d] = true
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pg, err := parseFile(filepath.Join(opts.Root, filepath.FromSlash(doc)+".html"))
		if err != nil {
			logger.Warn("skipping unparsable page", "doc", doc, "err", err)
			continue
		}

		title := pg.title
		if title == "" {
			// Tolerate missing titles with a fallback label.
			title = doc
		}
		res.Pages = append(res.Pages, Page{Doc: doc, Title: title})

		for _, href := range pg.hrefs {
			target, kind := classifyHref(doc, href, opts.Externals)
			switch kind {
			case hrefInternal:
				if !docSet[target] {
					logger.Debug("dropping dangling link", "doc", doc, "target", target)
					continue
				}
				res.Refs = append(res.Refs, Reference{From: doc, To: target, Type: RefTypeInternal})
			case hrefIntersphinx:
				project, url, _ := strings.Cut(target, "|")
				key := fmt.Sprintf("external:%s:%s", project, url)
				if !seenExternal[key] {
					seenExternal[key] = true
					res.Externals = append(res.Externals, External{Key: key, Project: project, URL: url})
				}
				res.Refs = append(res.Refs, Reference{From: doc, To: key, Type: RefTypeIntersphinx})
			}
		}

		if doc == opts.RootDoc {
			res.Toctree = buildNav(pg.nav, opts.RootDoc, title)
		}
		logger.Debug("scanned page", "doc", doc, "title", title, "links", len(pg.hrefs))
	}

	return res, nil
}

// collectDocs returns the normalized docnames of all content pages under
// root, in lexical order.
func collectDocs(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			// Generated asset trees are not content.
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		doc := strings.TrimSuffix(filepath.ToSlash(rel), ".html")
		if skippedDocs[doc] {
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}

type hrefKind int

const (
	hrefIgnored hrefKind = iota
	hrefInternal
	hrefIntersphinx
)

// classifyHref resolves an anchor target found on page doc.
// Internal targets resolve to a docname; intersphinx targets resolve to
// "project|url". Everything else is ignored.
func classifyHref(doc, href string, externals map[string]string) (string, hrefKind) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", hrefIgnored
	}
	if strings.Contains(href, ":") && !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		// mailto:, javascript:, data: and friends.
		return "", hrefIgnored
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		url, _, _ := strings.Cut(href, "#")
		if project := externalProject(url, externals); project != "" {
			return project + "|" + url, hrefIntersphinx
		}
		return "", hrefIgnored
	}

	// Relative link: resolve against the page's directory.
	target, _, _ := strings.Cut(href, "#")
	if target == "" || !strings.HasSuffix(target, ".html") {
		return "", hrefIgnored
	}
	resolved := path.Join(path.Dir(doc), target)
	resolved = strings.TrimSuffix(resolved, ".html")
	if resolved == "" || strings.HasPrefix(resolved, "../") {
		return "", hrefIgnored
	}
	return resolved, hrefInternal
}

// externalProject returns the configured project name whose base URL covers
// url, or "" when none does. A URL matches a base when it equals the base or
// extends it at a path boundary.
func externalProject(url string, externals map[string]string) string {
	url = strings.TrimSuffix(url, "/")
	for name, base := range externals {
		base = strings.TrimSuffix(base, "/")
		if base == "" || !strings.HasPrefix(base, "http") {
			continue
		}
		if url == base || strings.HasPrefix(url, base+"/") {
			return name
		}
	}
	return ""
}
