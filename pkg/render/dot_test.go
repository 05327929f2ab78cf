package render

import (
	"strings"
	"testing"

	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/toctree"
)

func testDoc() graphson.Document {
	return graphson.Document{
		Vertices: []graphson.Vertex{
			{ID: 0, Label: "page", Properties: map[string]any{
				graphson.PropName: "Home", graphson.PropPath: "../../../index.html",
			}},
			{ID: 1, Label: "page", Properties: map[string]any{
				graphson.PropName: "Intro", graphson.PropPath: "../../../guide/intro.html",
				graphson.PropCluster: "guides",
			}},
			{ID: 2, Label: "page", Properties: map[string]any{
				graphson.PropName: "Advanced", graphson.PropPath: "../../../guide/advanced.html",
				graphson.PropCluster: "guides",
			}},
			{ID: 3, Label: "intersphinx", Properties: map[string]any{
				graphson.PropName: "other", graphson.PropPath: "https://other.example/api.html",
				graphson.PropIsExternal: true, graphson.PropIsIntersphinx: true,
			}},
		},
		Edges: []graphson.Edge{
			{ID: 0, Label: "ref", OutV: 0, InV: 1,
				Properties: map[string]any{graphson.PropReferenceCount: 1}},
			{ID: 1, Label: "intersphinx", OutV: 1, InV: 3,
				Properties: map[string]any{graphson.PropReferenceCount: 2}},
		},
	}
}

func TestLinkGraphDOT(t *testing.T) {
	dot := LinkGraphDOT(testDoc(), Options{})

	if !strings.HasPrefix(dot, "digraph linkgraph {") {
		t.Errorf("DOT should open a digraph, got %q", dot[:30])
	}
	for _, want := range []string{
		`n0 [label="Home"]`,
		`label="guides"`,
		"subgraph cluster_0 {",
		"n0 -> n1",
		"n1 -> n3",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Clustered pages share a fill, the external stub is dashed.
	if !strings.Contains(dot, "dashed") {
		t.Error("external vertex should be rendered dashed")
	}
	if strings.Count(dot, `fillcolor="#4e79a7"`) != 2 {
		t.Error("both guides pages should share the first cluster fill")
	}
}

func TestLinkGraphDOTDetailed(t *testing.T) {
	dot := LinkGraphDOT(testDoc(), Options{Detailed: true})
	if !strings.Contains(dot, "label=\"Home\\n../../../index.html\"") {
		t.Errorf("detailed labels should include the page path:\n%s", dot)
	}
}

func TestLinkGraphDOTEdgeWidth(t *testing.T) {
	doc := testDoc()
	doc.Edges[0].Properties[graphson.PropReferenceCount] = 1000
	dot := LinkGraphDOT(doc, Options{})
	if !strings.Contains(dot, "penwidth=4.0") {
		t.Errorf("heavy edges should cap at penwidth 4:\n%s", dot)
	}
}

func TestToctreeDOT(t *testing.T) {
	root := &toctree.Node{
		Label: "Home",
		Children: []*toctree.Node{
			{Label: "Guide", Children: []*toctree.Node{{Label: "Intro"}}},
			{Label: "API"},
		},
	}

	dot := ToctreeDOT(root)
	for _, want := range []string{
		`n0 [label="Home"`,
		"n0 -> n1",
		"n0 -> n3",
		"n1 -> n2",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToctreeDOTNilRoot(t *testing.T) {
	dot := ToctreeDOT(nil)
	if !strings.Contains(dot, "digraph toctree {") {
		t.Errorf("nil root should still produce an empty digraph:\n%s", dot)
	}
}
