// Package graph provides the in-memory link-graph model built during a
// documentation scan.
//
// Pages become vertices and cross-references become directed edges. Vertices
// are identified internally by a stable string key (the normalized page path,
// or an "external:project:url" key for intersphinx targets) and receive a
// sequential integer ID in insertion order, which is the ID used in exports.
//
// Multiple references between the same page pair collapse into a single edge
// with an aggregated reference count. The model is write-once per build
// invocation: vertices and edges are added during the scan and never removed.
//
// Graph is not safe for concurrent use without external synchronization.
package graph

import (
	"errors"
)

var (
	// ErrInvalidVertexKey is returned by AddPage and AddExternal when the
	// vertex key is empty. All vertices must have non-empty keys.
	ErrInvalidVertexKey = errors.New("vertex key must not be empty")

	// ErrUnknownSourceVertex is returned by AddReference when the source
	// vertex does not exist in the graph.
	ErrUnknownSourceVertex = errors.New("unknown source vertex")

	// ErrUnknownTargetVertex is returned by AddReference when the target
	// vertex does not exist in the graph.
	ErrUnknownTargetVertex = errors.New("unknown target vertex")
)

// Vertex labels distinguishing page kinds in exports.
const (
	VertexLabelPage        = "page"        // internal documentation page
	VertexLabelIntersphinx = "intersphinx" // cross-project reference target
)

// EdgeLabelRef is the default edge label for internal cross-references.
const EdgeLabelRef = "ref"

// Metadata stores arbitrary key-value pairs attached to vertices or the graph.
// Metadata maps are never nil - they are automatically initialized when needed.
type Metadata map[string]any

// Vertex represents a documentation page (or an external reference target)
// in the link graph. Vertices are created once per discovered page and are
// immutable after export, except for cluster assignment which happens in a
// classification pass before export.
type Vertex struct {
	ID          int      // Sequential identifier, assigned by insertion order
	Key         string   // Stable internal key (normalized path or external key)
	Name        string   // Display name (page title or external project name)
	Path        string   // Output path relative to the viewer, or full URL
	Cluster     string   // Cluster name, empty when unclustered
	Intersphinx bool     // True for cross-project reference targets
	Meta        Metadata // Arbitrary key-value metadata (never nil)
}

// Label returns the vertex label used in exports.
func (v *Vertex) Label() string {
	if v.Intersphinx {
		return VertexLabelIntersphinx
	}
	return VertexLabelPage
}

// Edge represents an aggregated directed reference between two vertices.
// RefCount counts the individual references folded into this edge; Strength
// is the force-layout weight (constant 1 in the current export, kept as a
// separate attribute for viewer compatibility).
type Edge struct {
	From     int    // Source vertex ID
	To       int    // Target vertex ID
	Label    string // Reference type (e.g., "ref", "intersphinx")
	Strength int    // Layout weight
	RefCount int    // Number of individual references between the pair
}

type edgeKey struct {
	from, to int
}

// Graph is the documentation link graph under construction.
// The zero value is not usable - use New to create a valid instance.
type Graph struct {
	vertices []*Vertex
	byKey    map[string]*Vertex
	edges    []*Edge
	byPair   map[edgeKey]*Edge
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
// Graph-level metadata typically carries the build ID and scan settings.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		byKey:  make(map[string]*Vertex),
		byPair: make(map[edgeKey]*Edge),
		meta:   meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (g *Graph) Meta() Metadata { return g.meta }

// AddPage inserts an internal page vertex, or returns the existing vertex
// when the key was already added. Name and path are only set on first
// insertion; later calls with the same key leave them unchanged.
func (g *Graph) AddPage(key, name, path string) (*Vertex, error) {
	return g.add(key, name, path, false)
}

// AddExternal inserts an intersphinx target vertex, or returns the existing
// vertex when the key was already added. The name is the external project
// name and the path is the full target URL.
func (g *Graph) AddExternal(key, project, url string) (*Vertex, error) {
	return g.add(key, project, url, true)
}

func (g *Graph) add(key, name, path string, intersphinx bool) (*Vertex, error) {
	if key == "" {
		return nil, ErrInvalidVertexKey
	}
	if v, ok := g.byKey[key]; ok {
		return v, nil
	}
	v := &Vertex{
		ID:          len(g.vertices),
		Key:         key,
		Name:        name,
		Path:        path,
		Intersphinx: intersphinx,
		Meta:        Metadata{},
	}
	g.vertices = append(g.vertices, v)
	g.byKey[key] = v
	return v, nil
}

// AddReference records a directed reference between two existing vertices.
// References between the same pair fold into a single edge: the first call
// creates the edge, later calls increment its RefCount. The returned bool
// reports whether the reference was folded into an existing edge.
//
// The label of the first reference wins for the folded edge.
func (g *Graph) AddReference(fromKey, toKey, label string) (*Edge, bool, error) {
	from, ok := g.byKey[fromKey]
	if !ok {
		return nil, false, ErrUnknownSourceVertex
	}
	to, ok := g.byKey[toKey]
	if !ok {
		return nil, false, ErrUnknownTargetVertex
	}

	k := edgeKey{from: from.ID, to: to.ID}
	if e, ok := g.byPair[k]; ok {
		e.RefCount++
		return e, true, nil
	}

	if label == "" {
		label = EdgeLabelRef
	}
	e := &Edge{
		From:     from.ID,
		To:       to.ID,
		Label:    label,
		Strength: 1,
		RefCount: 1,
	}
	g.edges = append(g.edges, e)
	g.byPair[k] = e
	return e, false, nil
}

// Vertex returns the vertex with the given key, or nil when absent.
func (g *Graph) Vertex(key string) *Vertex {
	return g.byKey[key]
}

// Vertices returns all vertices in insertion order.
// The returned slice is shared with the graph; callers must not reorder it.
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// Edges returns all edges in insertion order.
// The returned slice is shared with the graph; callers must not reorder it.
func (g *Graph) Edges() []*Edge { return g.edges }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges after reference folding.
func (g *Graph) EdgeCount() int { return len(g.edges) }
