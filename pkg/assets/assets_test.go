package assets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/toctree"
)

func TestWriteCopiesViewer(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := []string{
		"html/linkgraph.html",
		"html/toctree.html",
		"js/graph-view.js",
		"js/tree-view.js",
		"css/style.css",
	}
	for _, rel := range want {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing viewer file %s: %v", rel, err)
		}
	}
}

func TestFilesListsEmbedded(t *testing.T) {
	files := Files()
	if len(files) < 5 {
		t.Fatalf("Files() = %d entries, want at least 5", len(files))
	}
	found := false
	for _, f := range files {
		if f == "html/linkgraph.html" {
			found = true
		}
	}
	if !found {
		t.Error("Files() missing html/linkgraph.html")
	}
}

func TestWriteData(t *testing.T) {
	dir := t.TempDir()

	doc := graphson.Document{
		Vertices: []graphson.Vertex{
			{ID: 0, Label: "page", Properties: map[string]any{
				graphson.PropName: "Home", graphson.PropPath: "../../../index.html",
			}},
			{ID: 1, Label: "page", Properties: map[string]any{
				graphson.PropName: "Guide", graphson.PropPath: "../../../guide.html",
				graphson.PropCluster: "guides",
			}},
			{ID: 2, Label: "intersphinx", Properties: map[string]any{
				graphson.PropName: "other", graphson.PropPath: "https://other.example/page.html",
				graphson.PropIsExternal: true, graphson.PropIsIntersphinx: true,
			}},
		},
		Edges: []graphson.Edge{
			{ID: 0, Label: "ref", OutV: 0, InV: 1, OutVLabel: "page", InVLabel: "page",
				Properties: map[string]any{graphson.PropStrength: 1, graphson.PropReferenceCount: 3}},
		},
	}
	tree := &toctree.Node{
		Label: "Home", Path: "../../../index.html",
		Children: []*toctree.Node{{Label: "Guide", Path: "../../../guide.html"}},
	}

	if err := WriteData(dir, doc, tree); err != nil {
		t.Fatalf("WriteData: %v", err)
	}

	nodesJS := readFile(t, filepath.Join(dir, "js", "nodes.js"))
	if !strings.HasPrefix(nodesJS, "var nodes_data = ") {
		t.Errorf("nodes.js should declare nodes_data, got %q", nodesJS[:30])
	}
	var nodes []map[string]any
	mustUnmarshalVar(t, nodesJS, &nodes)
	if len(nodes) != 3 {
		t.Fatalf("nodes.js has %d nodes, want 3", len(nodes))
	}
	if nodes[1]["cluster"] != "guides" {
		t.Errorf("node 1 cluster = %v, want guides", nodes[1]["cluster"])
	}
	if nodes[2]["is_intersphinx"] != true {
		t.Errorf("node 2 should be flagged intersphinx")
	}

	linksJS := readFile(t, filepath.Join(dir, "js", "links.js"))
	var links []map[string]any
	mustUnmarshalVar(t, linksJS, &links)
	if len(links) != 1 {
		t.Fatalf("links.js has %d links, want 1", len(links))
	}
	if links[0]["reference_count"] != float64(3) {
		t.Errorf("link reference_count = %v, want 3", links[0]["reference_count"])
	}

	tocJS := readFile(t, filepath.Join(dir, "js", "toctree.js"))
	var flat struct {
		Nodes []map[string]any `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	mustUnmarshalVar(t, tocJS, &flat)
	if len(flat.Nodes) != 2 || len(flat.Edges) != 1 {
		t.Errorf("toctree.js has %d nodes / %d edges, want 2 / 1", len(flat.Nodes), len(flat.Edges))
	}

	exported, err := graphson.ReadFile(filepath.Join(dir, "graphson.json"))
	if err != nil {
		t.Fatalf("read graphson.json: %v", err)
	}
	if len(exported.Vertices) != 3 || len(exported.Edges) != 1 {
		t.Errorf("graphson.json has %d vertices / %d edges, want 3 / 1",
			len(exported.Vertices), len(exported.Edges))
	}
}

func TestWriteDataNilTree(t *testing.T) {
	dir := t.TempDir()
	if err := WriteData(dir, graphson.Document{}, nil); err != nil {
		t.Fatalf("WriteData with nil tree: %v", err)
	}
	tocJS := readFile(t, filepath.Join(dir, "js", "toctree.js"))
	if !strings.HasPrefix(tocJS, "var toctree_data = ") {
		t.Errorf("toctree.js should still be written for a nil tree")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// mustUnmarshalVar strips the "var name = " prefix and trailing ";" from a
// data file and decodes the JSON payload.
func mustUnmarshalVar(t *testing.T, content string, v any) {
	t.Helper()
	_, payload, ok := strings.Cut(content, "= ")
	if !ok {
		t.Fatalf("data file has no assignment: %q", content[:min(len(content), 40)])
	}
	payload = strings.TrimSuffix(strings.TrimSpace(payload), ";")
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		t.Fatalf("decode data file: %v", err)
	}
}
