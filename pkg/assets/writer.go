package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docviz/docviz/pkg/errors"
	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/toctree"
)

// nodeData is the viewer-side shape of a vertex, kept flat for the
// graphology loader.
type nodeData struct {
	ID            int    `json:"id"`
	Label         string `json:"label"`
	Path          string `json:"path"`
	Cluster       string `json:"cluster,omitempty"`
	IsExternal    bool   `json:"is_external,omitempty"`
	IsIntersphinx bool   `json:"is_intersphinx,omitempty"`
}

// linkData is the viewer-side shape of an aggregated reference.
type linkData struct {
	Source         int    `json:"source"`
	Target         int    `json:"target"`
	Type           string `json:"type"`
	Strength       int    `json:"strength"`
	ReferenceCount int    `json:"reference_count"`
}

// WriteData writes the graph data files the viewer pages load: nodes.js,
// links.js, toctree.js under js/, and graphson.json at the output root.
// A nil tree writes an empty toctree rather than failing the build.
func WriteData(outDir string, doc graphson.Document, tree *toctree.Node) error {
	if err := os.MkdirAll(filepath.Join(outDir, "js"), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output dir")
	}

	nodes := make([]nodeData, 0, len(doc.Vertices))
	for _, v := range doc.Vertices {
		n := nodeData{ID: v.ID}
		n.Label, _ = v.Properties[graphson.PropName].(string)
		n.Path, _ = v.Properties[graphson.PropPath].(string)
		n.Cluster, _ = v.Properties[graphson.PropCluster].(string)
		n.IsExternal, _ = v.Properties[graphson.PropIsExternal].(bool)
		n.IsIntersphinx, _ = v.Properties[graphson.PropIsIntersphinx].(bool)
		nodes = append(nodes, n)
	}

	links := make([]linkData, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		l := linkData{Source: e.OutV, Target: e.InV, Type: e.Label, Strength: 1, ReferenceCount: 1}
		if s, ok := asInt(e.Properties[graphson.PropStrength]); ok {
			l.Strength = s
		}
		if c, ok := asInt(e.Properties[graphson.PropReferenceCount]); ok {
			l.ReferenceCount = c
		}
		links = append(links, l)
	}

	if err := writeJSVar(filepath.Join(outDir, "js", "nodes.js"), "nodes_data", nodes); err != nil {
		return err
	}
	if err := writeJSVar(filepath.Join(outDir, "js", "links.js"), "links_data", links); err != nil {
		return err
	}
	if err := writeJSVar(filepath.Join(outDir, "js", "toctree.js"), "toctree_data", toctree.Flatten(tree)); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, "graphson.json"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write graphson.json")
	}
	defer f.Close()
	return graphson.WriteDocument(doc, f)
}

// writeJSVar serializes v as a javascript variable assignment, the form the
// viewer pages load via plain <script src> tags without any fetch.
func writeJSVar(path, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", name)
	}
	content := fmt.Sprintf("var %s = %s;\n", name, data)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", filepath.Base(path))
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
