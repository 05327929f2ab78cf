// Package archive stores exported graph snapshots keyed by build id and
// diffs them across builds, answering "which pages and references appeared
// or disappeared since the last release".
//
// Two backends are provided: a local file store for single-machine use and
// a MongoDB store for teams archiving every CI build.
package archive

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/docviz/docviz/pkg/graphson"
)

// Snapshot is one archived build export.
type Snapshot struct {
	BuildID   string            `json:"build_id"`
	CreatedAt time.Time         `json:"created_at"`
	Vertices  int               `json:"vertices"`
	Edges     int               `json:"edges"`
	Document  graphson.Document `json:"document"`
}

// Info is snapshot metadata without the document payload, as returned by List.
type Info struct {
	BuildID   string    `json:"build_id"`
	CreatedAt time.Time `json:"created_at"`
	Vertices  int       `json:"vertices"`
	Edges     int       `json:"edges"`
}

// Store persists and retrieves snapshots.
type Store interface {
	// Put archives a snapshot. An existing snapshot with the same build id
	// is overwritten.
	Put(ctx context.Context, snap Snapshot) error

	// Get retrieves a snapshot by build id.
	Get(ctx context.Context, buildID string) (Snapshot, error)

	// List returns snapshot metadata, newest first.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewSnapshot wraps a document for archiving.
func NewSnapshot(buildID string, doc graphson.Document) Snapshot {
	return Snapshot{
		BuildID:   buildID,
		CreatedAt: time.Now().UTC(),
		Vertices:  len(doc.Vertices),
		Edges:     len(doc.Edges),
		Document:  doc,
	}
}

// DiffResult lists the structural changes between two snapshots. Pages are
// identified by their path and references by "from -> to" page paths, so the
// result survives the id renumbering that happens between builds.
type DiffResult struct {
	AddedPages   []string `json:"added_pages"`
	RemovedPages []string `json:"removed_pages"`
	AddedRefs    []string `json:"added_refs"`
	RemovedRefs  []string `json:"removed_refs"`
}

// Empty reports whether the two snapshots are structurally identical.
func (d DiffResult) Empty() bool {
	return len(d.AddedPages) == 0 && len(d.RemovedPages) == 0 &&
		len(d.AddedRefs) == 0 && len(d.RemovedRefs) == 0
}

// Diff compares two exported documents, old to new.
func Diff(old, curr graphson.Document) DiffResult {
	oldPages := vertexPaths(old)
	currPages := vertexPaths(curr)
	oldRefs := edgeKeys(old)
	currRefs := edgeKeys(curr)

	return DiffResult{
		AddedPages:   missingFrom(oldPages, currPages),
		RemovedPages: missingFrom(currPages, oldPages),
		AddedRefs:    missingFrom(oldRefs, currRefs),
		RemovedRefs:  missingFrom(currRefs, oldRefs),
	}
}

func vertexPaths(doc graphson.Document) map[string]bool {
	paths := make(map[string]bool, len(doc.Vertices))
	for _, v := range doc.Vertices {
		if path, _ := v.Properties[graphson.PropPath].(string); path != "" {
			paths[path] = true
		}
	}
	return paths
}

func edgeKeys(doc graphson.Document) map[string]bool {
	byID := make(map[int]string, len(doc.Vertices))
	for _, v := range doc.Vertices {
		path, _ := v.Properties[graphson.PropPath].(string)
		byID[v.ID] = path
	}
	keys := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		from, to := byID[e.OutV], byID[e.InV]
		if from == "" || to == "" {
			continue
		}
		keys[fmt.Sprintf("%s -> %s", from, to)] = true
	}
	return keys
}

// missingFrom returns the keys of b that are not in a, sorted.
func missingFrom(a, b map[string]bool) []string {
	var out []string
	for k := range b {
		if !a[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
