package toctree

import "testing"

func TestFlatten(t *testing.T) {
	// R with children [A, B], B with child C.
	root := &Node{
		Label: "R",
		Path:  "index.html",
		Children: []*Node{
			{Label: "A", Path: "a.html"},
			{Label: "B", Path: "b.html", Children: []*Node{
				{Label: "C", Path: "c.html"},
			}},
		},
	}

	flat := Flatten(root)

	if len(flat.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(flat.Nodes))
	}
	if len(flat.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(flat.Edges))
	}

	wantDepths := map[string]int{"R": 0, "A": 1, "B": 1, "C": 2}
	ids := map[string]int{}
	for _, n := range flat.Nodes {
		if n.Depth != wantDepths[n.Label] {
			t.Errorf("node %s depth = %d, want %d", n.Label, n.Depth, wantDepths[n.Label])
		}
		ids[n.Label] = n.ID
	}

	wantEdges := []FlatEdge{
		{From: ids["R"], To: ids["A"]},
		{From: ids["R"], To: ids["B"]},
		{From: ids["B"], To: ids["C"]},
	}
	for i, want := range wantEdges {
		if flat.Edges[i] != want {
			t.Errorf("edge %d = %+v, want %+v", i, flat.Edges[i], want)
		}
	}
}

func TestFlattenIDsFollowVisitOrder(t *testing.T) {
	root := &Node{Label: "R", Children: []*Node{
		{Label: "A", Children: []*Node{{Label: "A1"}}},
		{Label: "B"},
	}}

	flat := Flatten(root)

	wantOrder := []string{"R", "A", "A1", "B"}
	for i, n := range flat.Nodes {
		if n.Label != wantOrder[i] {
			t.Errorf("node %d = %s, want %s", i, n.Label, wantOrder[i])
		}
		if n.ID != i {
			t.Errorf("node %s ID = %d, want %d", n.Label, n.ID, i)
		}
	}
}

func TestFlattenPositions(t *testing.T) {
	root := &Node{Label: "R", Children: []*Node{
		{Label: "A"}, {Label: "B"}, {Label: "C"},
	}}

	flat := Flatten(root)

	if flat.Nodes[0].X != 0 || flat.Nodes[0].Y != 0 {
		t.Errorf("root at (%v,%v), want origin", flat.Nodes[0].X, flat.Nodes[0].Y)
	}

	// Three siblings spread evenly and centered on the parent.
	xs := []float64{flat.Nodes[1].X, flat.Nodes[2].X, flat.Nodes[3].X}
	if xs[0] != -SiblingSpacing || xs[1] != 0 || xs[2] != SiblingSpacing {
		t.Errorf("sibling xs = %v, want centered spread", xs)
	}
	for i := 1; i <= 3; i++ {
		if flat.Nodes[i].Y != LevelSpacing {
			t.Errorf("child y = %v, want %v", flat.Nodes[i].Y, LevelSpacing)
		}
	}
}

func TestFlattenSingleNode(t *testing.T) {
	flat := Flatten(&Node{Label: "only"})
	if len(flat.Nodes) != 1 || len(flat.Edges) != 0 {
		t.Errorf("single node: %d nodes / %d edges, want 1/0", len(flat.Nodes), len(flat.Edges))
	}
}

func TestFlattenNil(t *testing.T) {
	flat := Flatten(nil)
	if len(flat.Nodes) != 0 || len(flat.Edges) != 0 {
		t.Error("nil root must flatten to an empty set")
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name string
		root *Node
		want int
	}{
		{name: "Nil", root: nil, want: -1},
		{name: "Leaf", root: &Node{Label: "r"}, want: 0},
		{
			name: "TwoLevels",
			root: &Node{Label: "r", Children: []*Node{
				{Label: "a"},
				{Label: "b", Children: []*Node{{Label: "c"}}},
			}},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Depth(tt.root); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
		})
	}
}
