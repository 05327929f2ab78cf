// Package cluster assigns documentation pages to named clusters.
//
// Clusters group pages that share a visual color in the rendered graph.
// Assignment is by ordered glob-pattern matching: clusters are evaluated in
// configuration order and the first pattern match wins, so a page receives
// at most one cluster. When automatic clustering is enabled and no manual
// cluster matched, a synthetic cluster named after the first path segment is
// derived; root-level pages stay unclustered.
//
// Pattern syntax follows doublestar glob semantics:
//   - `*` matches one path segment
//   - `**` matches recursively across segments
//   - anything else matches literally
//
// Malformed patterns are treated as non-matching.
package cluster

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Cluster is a named group of pages defined by an ordered glob pattern list.
// An empty pattern list matches nothing.
type Cluster struct {
	Name     string   `json:"name" toml:"name"`
	Patterns []string `json:"patterns" toml:"patterns"`
}

// Classifier resolves page paths to cluster names.
type Classifier struct {
	clusters []Cluster
	auto     bool
}

// NewClassifier creates a classifier over the given ordered cluster list.
// When auto is true, pages that match no manual cluster are grouped by their
// first path segment.
func NewClassifier(clusters []Cluster, auto bool) *Classifier {
	return &Classifier{clusters: clusters, auto: auto}
}

// Clusters returns the manual cluster definitions in evaluation order.
func (c *Classifier) Clusters() []Cluster { return c.clusters }

// Classify returns the cluster name for a page path, or "" when the page is
// unclustered. The path is normalized before matching: leading slashes and a
// trailing extension are stripped, so "/api/core/index.html" and
// "api/core/index" resolve identically.
//
// Manual clusters are evaluated first, in order; the automatic cluster is
// derived only when no manual cluster matched.
func (c *Classifier) Classify(path string) string {
	normalized := Normalize(path)

	for _, cl := range c.clusters {
		for _, pattern := range cl.Patterns {
			ok, err := doublestar.Match(pattern, normalized)
			if err != nil {
				// Malformed pattern: treated as non-matching.
				continue
			}
			if ok {
				return cl.Name
			}
		}
	}

	if c.auto {
		if i := strings.IndexByte(normalized, '/'); i > 0 {
			return normalized[:i]
		}
	}
	return ""
}

// Normalize strips leading slashes and a trailing file extension from a page
// path, producing the canonical form used for pattern matching.
func Normalize(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') && i >= 0 {
		path = path[:i]
	}
	return path
}
