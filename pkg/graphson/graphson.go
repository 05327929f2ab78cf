// Package graphson serializes link graphs to a GraphSON-like interchange
// format compatible with generic graph-analysis tooling and the bundled
// browser viewer.
//
// This package sits at the serialization boundary between the in-memory
// model ([graph.Graph]) and the on-disk format:
//
//   - [Document], [Vertex], [Edge]: serialization types (this package)
//   - pkg/graph.Graph: internal graph representation
//
// # Schema
//
//	{
//	  "vertices": [
//	    {"id": 0, "label": "page", "properties": {"name": "Home", "path": "../../../index.html"}}
//	  ],
//	  "edges": [
//	    {"id": 0, "label": "ref", "outV": 0, "inV": 1,
//	     "outVLabel": "page", "inVLabel": "page",
//	     "properties": {"strength": 1, "reference_count": 2}}
//	  ],
//	  "clusters": [{"name": "API", "patterns": ["api/**"]}]
//	}
//
// Vertices appear in insertion order and every attribute present at build
// time survives a write/read round trip.
package graphson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/docviz/docviz/pkg/cluster"
	"github.com/docviz/docviz/pkg/graph"
)

// Property keys used in vertex and edge property maps.
const (
	PropName           = "name"
	PropPath           = "path"
	PropCluster        = "cluster"
	PropIsExternal     = "is_external"
	PropIsIntersphinx  = "is_intersphinx"
	PropStrength       = "strength"
	PropReferenceCount = "reference_count"
)

// Vertex is the serialized form of a graph vertex.
type Vertex struct {
	ID         int            `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// Edge is the serialized form of an aggregated reference.
type Edge struct {
	ID         int            `json:"id"`
	Label      string         `json:"label"`
	OutV       int            `json:"outV"`
	InV        int            `json:"inV"`
	OutVLabel  string         `json:"outVLabel"`
	InVLabel   string         `json:"inVLabel"`
	Properties map[string]any `json:"properties"`
}

// Document is the top-level interchange structure.
type Document struct {
	Vertices []Vertex          `json:"vertices"`
	Edges    []Edge            `json:"edges"`
	Clusters []cluster.Cluster `json:"clusters,omitempty"`
	Meta     map[string]any    `json:"meta,omitempty"`
}

// FromGraph converts an in-memory graph to its serialized form.
// The clusters argument carries the manual cluster definitions for the
// viewer's legend; pass nil when no clusters are configured.
func FromGraph(g *graph.Graph, clusters []cluster.Cluster) Document {
	doc := Document{
		Vertices: make([]Vertex, 0, g.VertexCount()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
		Clusters: clusters,
	}
	if len(g.Meta()) > 0 {
		doc.Meta = g.Meta()
	}

	for _, v := range g.Vertices() {
		props := map[string]any{
			PropName: v.Name,
			PropPath: v.Path,
		}
		if v.Cluster != "" {
			props[PropCluster] = v.Cluster
		}
		if v.Intersphinx {
			props[PropIsExternal] = true
			props[PropIsIntersphinx] = true
		}
		for k, val := range v.Meta {
			props[k] = val
		}
		doc.Vertices = append(doc.Vertices, Vertex{
			ID:         v.ID,
			Label:      v.Label(),
			Properties: props,
		})
	}

	for i, e := range g.Edges() {
		doc.Edges = append(doc.Edges, Edge{
			ID:        i,
			Label:     e.Label,
			OutV:      e.From,
			InV:       e.To,
			OutVLabel: graph.VertexLabelPage,
			InVLabel:  graph.VertexLabelPage,
			Properties: map[string]any{
				PropStrength:       e.Strength,
				PropReferenceCount: e.RefCount,
			},
		})
	}

	return doc
}

// ToGraph rebuilds an in-memory graph from a serialized document.
// Vertex keys are recovered from the path property, which is unique per
// page within a single export.
func ToGraph(doc Document) (*graph.Graph, error) {
	var meta graph.Metadata
	if doc.Meta != nil {
		meta = graph.Metadata(doc.Meta)
	}
	g := graph.New(meta)

	keyByID := make(map[int]string, len(doc.Vertices))
	for _, v := range doc.Vertices {
		name, _ := v.Properties[PropName].(string)
		path, _ := v.Properties[PropPath].(string)
		key := path
		if key == "" {
			key = fmt.Sprintf("vertex:%d", v.ID)
		}

		var (
			vert *graph.Vertex
			err  error
		)
		if v.Label == graph.VertexLabelIntersphinx {
			vert, err = g.AddExternal(key, name, path)
		} else {
			vert, err = g.AddPage(key, name, path)
		}
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", v.ID, err)
		}
		if c, ok := v.Properties[PropCluster].(string); ok {
			vert.Cluster = c
		}
		for k, val := range v.Properties {
			switch k {
			case PropName, PropPath, PropCluster, PropIsExternal, PropIsIntersphinx:
			default:
				vert.Meta[k] = val
			}
		}
		keyByID[v.ID] = key
	}

	for _, e := range doc.Edges {
		fromKey, ok := keyByID[e.OutV]
		if !ok {
			return nil, fmt.Errorf("edge %d: unknown outV %d", e.ID, e.OutV)
		}
		toKey, ok := keyByID[e.InV]
		if !ok {
			return nil, fmt.Errorf("edge %d: unknown inV %d", e.ID, e.InV)
		}
		edge, folded, err := g.AddReference(fromKey, toKey, e.Label)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", e.ID, err)
		}
		if folded {
			return nil, fmt.Errorf("edge %d: duplicate pair %d->%d", e.ID, e.OutV, e.InV)
		}
		if n, ok := asInt(e.Properties[PropReferenceCount]); ok {
			edge.RefCount = n
		}
		if n, ok := asInt(e.Properties[PropStrength]); ok {
			edge.Strength = n
		}
	}

	return g, nil
}

// asInt normalizes JSON numbers, which decode as float64, back to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *graph.Graph, clusters []cluster.Cluster) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, clusters, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a graph as indented JSON to w.
func Write(g *graph.Graph, clusters []cluster.Cluster, w io.Writer) error {
	return WriteDocument(FromGraph(g, clusters), w)
}

// WriteDocument writes an already-serialized document as indented JSON to w.
func WriteDocument(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(g *graph.Graph, clusters []cluster.Cluster, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, clusters, f)
}

// Read decodes a JSON document from r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

// ReadFile reads and decodes a JSON document from a file.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
