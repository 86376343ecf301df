package dag

import (
	"errors"
	"testing"
)

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta should be initialised")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: got %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: got %v", err)
	}
}

func TestParallelEdges(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "m"})
	_ = g.AddNode(Node{ID: "c", Row: 1})
	_ = g.AddEdge(Edge{From: "m", To: "c"})
	_ = g.AddEdge(Edge{From: "m", To: "c"})
	if g.EdgeCount() != 2 || g.OutDegree("m") != 2 {
		t.Fatalf("parallel edges not kept: %d", g.EdgeCount())
	}
	g.RemoveEdge("m", "c")
	if g.EdgeCount() != 1 || g.InDegree("c") != 1 {
		t.Errorf("RemoveEdge should drop exactly one edge, have %d", g.EdgeCount())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"z", "a", "m"} {
		_ = g.AddNode(Node{ID: id})
	}
	got := NodeIDs(g.Nodes())
	want := []string{"z", "a", "m"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Nodes() = %v, want %v", got, want)
		}
	}
}

func TestSetRowsAndOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	g.SetRows(map[string]int{"c": 1})
	if len(g.NodesInRow(0)) != 2 || len(g.NodesInRow(1)) != 1 {
		t.Fatalf("rows = %v / %v", NodeIDs(g.NodesInRow(0)), NodeIDs(g.NodesInRow(1)))
	}
	g.SetRowOrder(0, []string{"b"})
	if got := NodeIDs(g.NodesInRow(0)); got[0] != "b" || got[1] != "a" {
		t.Errorf("SetRowOrder = %v, want [b a]", got)
	}
	if g.MaxRow() != 1 || g.RowCount() != 2 {
		t.Errorf("MaxRow=%d RowCount=%d", g.MaxRow(), g.RowCount())
	}
}

func TestValidate(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a", Row: 0})
	_ = g.AddNode(Node{ID: "b", Row: 2})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("got %v, want ErrNonConsecutiveRows", err)
	}

	c := New(nil)
	_ = c.AddNode(Node{ID: "a", Row: 0})
	_ = c.AddNode(Node{ID: "b", Row: 1})
	_ = c.AddEdge(Edge{From: "a", To: "b"})
	_ = c.AddEdge(Edge{From: "b", To: "a"})
	if err := c.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("got %v, want ErrGraphHasCycle", err)
	}
}

func TestSubgraph(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	if g.Degree("c") != 0 || g.Degree("a") != 1 {
		t.Errorf("degrees a=%d c=%d", g.Degree("a"), g.Degree("c"))
	}

	sub := g.Subgraph([]string{"a", "b"})
	if sub.NodeCount() != 2 || sub.EdgeCount() != 1 {
		t.Errorf("Subgraph: %d nodes %d edges", sub.NodeCount(), sub.EdgeCount())
	}
	n, _ := sub.Node("a")
	n.Row = 5
	if orig, _ := g.Node("a"); orig.Row != 0 {
		t.Error("Subgraph must copy nodes")
	}
}

func TestCountCrossings(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "x", "y", "z"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "z"})
	_ = g.AddEdge(Edge{From: "b", To: "y"})
	_ = g.AddEdge(Edge{From: "c", To: "x"})

	orders := map[int][]string{0: {"a", "b", "c"}, 1: {"x", "y", "z"}}
	if got := CountCrossings(g, orders); got != 3 {
		t.Errorf("CountCrossings = %d, want 3", got)
	}
	orders[1] = []string{"z", "y", "x"}
	if got := CountCrossings(g, orders); got != 0 {
		t.Errorf("CountCrossings = %d, want 0", got)
	}
}

func TestCountPairCrossingsWithPos(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"l", "r", "x", "y"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "l", To: "y"})
	_ = g.AddEdge(Edge{From: "r", To: "x"})
	pos := PosMap([]string{"x", "y"})
	if got := CountPairCrossingsWithPos(g, "l", "r", pos, false); got != 1 {
		t.Errorf("l|r = %d, want 1", got)
	}
	if got := CountPairCrossingsWithPos(g, "r", "l", pos, false); got != 0 {
		t.Errorf("r|l = %d, want 0", got)
	}
}
