// Package render produces static snapshots of the link graph and toctree:
// Graphviz DOT generation plus SVG/PNG/PDF output for reports and READMEs.
// The interactive browser viewer lives in [github.com/docviz/docviz/pkg/assets];
// this package covers the cases where a build artifact has to be an image.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/toctree"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes the page path in node labels.
	// When false, only the page title is shown.
	Detailed bool
}

// Fill colors cycled per cluster, matching the browser viewer's palette.
var clusterFills = []string{
	"#4e79a7", "#f28e2b", "#59a356", "#e15759", "#76b7b2",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

const externalFill = "#8884bd"

// LinkGraphDOT converts an exported graph document to Graphviz DOT. Pages in
// the same cluster share a fill color and are grouped into a subgraph so the
// cluster name appears as a box label. The resulting DOT string can be
// rendered with [RenderSVG], [RenderPDF], or [RenderPNG].
func LinkGraphDOT(doc graphson.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph linkgraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	byCluster := make(map[string][]graphson.Vertex)
	var order []string
	for _, v := range doc.Vertices {
		name, _ := v.Properties[graphson.PropCluster].(string)
		if _, seen := byCluster[name]; !seen {
			order = append(order, name)
		}
		byCluster[name] = append(byCluster[name], v)
	}

	fill := make(map[string]string)
	next := 0
	for _, name := range order {
		if name == "" {
			continue
		}
		fill[name] = clusterFills[next%len(clusterFills)]
		next++
	}

	sub := 0
	for _, name := range order {
		vertices := byCluster[name]
		if name != "" {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", sub)
			fmt.Fprintf(&buf, "    label=%q;\n", name)
			buf.WriteString("    color=\"#cccccc\";\n")
			sub++
		}
		for _, v := range vertices {
			attrs := vertexAttrs(v, fill[name], opts.Detailed)
			indent := "  "
			if name != "" {
				indent = "    "
			}
			fmt.Fprintf(&buf, "%sn%d [%s];\n", indent, v.ID, strings.Join(attrs, ", "))
		}
		if name != "" {
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		attrs := []string{fmt.Sprintf("penwidth=%.1f", edgeWidth(e))}
		if e.Label == "intersphinx" {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.OutV, e.InV, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func vertexAttrs(v graphson.Vertex, fill string, detailed bool) []string {
	name, _ := v.Properties[graphson.PropName].(string)
	label := name
	if detailed {
		if path, _ := v.Properties[graphson.PropPath].(string); path != "" {
			label += "\n" + path
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	external, _ := v.Properties[graphson.PropIsExternal].(bool)
	intersphinx, _ := v.Properties[graphson.PropIsIntersphinx].(bool)
	switch {
	case external || intersphinx:
		attrs = append(attrs,
			"style=\"rounded,filled,dashed\"",
			fmt.Sprintf("fillcolor=%q", externalFill),
			"fontcolor=white")
	case fill != "":
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill), "fontcolor=white")
	}
	return attrs
}

// edgeWidth scales pen width with the aggregated reference count, capped so
// heavily-referenced pairs stay readable.
func edgeWidth(e graphson.Edge) float64 {
	count := 1.0
	switch n := e.Properties[graphson.PropReferenceCount].(type) {
	case int:
		count = float64(n)
	case float64:
		count = n
	}
	return math.Min(1+math.Log(count), 4)
}

// ToctreeDOT converts a toctree to Graphviz DOT, one rank per depth level.
func ToctreeDOT(root *toctree.Node) string {
	flat := toctree.Flatten(root)

	var buf bytes.Buffer
	buf.WriteString("digraph toctree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("\n")

	for _, n := range flat.Nodes {
		fill := clusterFills[n.Depth%len(clusterFills)]
		fmt.Fprintf(&buf, "  n%d [label=%q, fillcolor=%q, fontcolor=white];\n", n.ID, n.Label, fill)
	}

	buf.WriteString("\n")
	for _, e := range flat.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}
