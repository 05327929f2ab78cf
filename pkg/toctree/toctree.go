// Package toctree models the table-of-contents hierarchy of a documentation
// project and flattens it for the hierarchical graph view.
//
// The source tree is acyclic by construction (each page has a single parent
// in the toctree), so flattening needs no cycle detection. Node identifiers
// are assigned by an explicit counter threaded through the depth-first walk,
// so repeated flattening of the same tree is deterministic.
package toctree

// Layout spacing constants for the hierarchical view.
// Siblings spread evenly on the horizontal axis; each level steps down by a
// fixed vertical offset. The browser viewer uses these positions as-is.
const (
	SiblingSpacing = 120.0
	LevelSpacing   = 100.0
)

// Node is a single entry in the toctree: a label, an optional target path
// and the ordered child entries.
type Node struct {
	Label    string  `json:"label"`
	Path     string  `json:"path,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// FlatNode is a positioned node produced by flattening.
type FlatNode struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	Path  string  `json:"path,omitempty"`
	Depth int     `json:"depth"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// FlatEdge connects a parent node to one of its children.
type FlatEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Flat is the flattened node/edge set of a toctree.
type Flat struct {
	Nodes []FlatNode `json:"nodes"`
	Edges []FlatEdge `json:"edges"`
}

// Flatten walks the tree depth-first from root and returns the flattened
// node/edge set. Each node receives a sequential identifier (root = 0), its
// depth (root = 0), and a position derived from depth and sibling index:
// siblings are spread evenly around their parent's x coordinate and each
// level is offset vertically by [LevelSpacing].
//
// A nil root yields an empty result.
func Flatten(root *Node) Flat {
	var flat Flat
	if root == nil {
		return flat
	}
	counter := 0
	walk(root, 0, 0, &counter, &flat)
	return flat
}

// walk appends node and its subtree to flat.
// The counter is threaded explicitly so IDs follow depth-first visit order.
func walk(n *Node, depth int, x float64, counter *int, flat *Flat) {
	id := *counter
	*counter++

	flat.Nodes = append(flat.Nodes, FlatNode{
		ID:    id,
		Label: n.Label,
		Path:  n.Path,
		Depth: depth,
		X:     x,
		Y:     float64(depth) * LevelSpacing,
	})

	// Spread children evenly around the parent's x coordinate.
	span := float64(len(n.Children)-1) * SiblingSpacing
	for i, child := range n.Children {
		childX := x - span/2 + float64(i)*SiblingSpacing
		flat.Edges = append(flat.Edges, FlatEdge{From: id, To: *counter})
		walk(child, depth+1, childX, counter, flat)
	}
}

// Depth returns the maximum depth of the tree (root = 0).
// A nil root returns -1.
func Depth(root *Node) int {
	if root == nil {
		return -1
	}
	deepest := 0
	for _, child := range root.Children {
		if d := Depth(child) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}
