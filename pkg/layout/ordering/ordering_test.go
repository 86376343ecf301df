package ordering

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/stamboom/pkg/dag"
)

// crossed builds two marriages whose children are listed in the wrong order.
func crossed() *dag.DAG {
	g := dag.New(nil)
	for _, id := range []string{"m1", "m2"} {
		_ = g.AddNode(dag.Node{ID: id, Row: 0})
	}
	for _, id := range []string{"c2a", "c2b", "c1a", "c1b"} {
		_ = g.AddNode(dag.Node{ID: id, Row: 1})
	}
	_ = g.AddEdge(dag.Edge{From: "m1", To: "c1a"})
	_ = g.AddEdge(dag.Edge{From: "m1", To: "c1b"})
	_ = g.AddEdge(dag.Edge{From: "m2", To: "c2a"})
	_ = g.AddEdge(dag.Edge{From: "m2", To: "c2b"})
	return g
}

func TestBarycentricRemovesCrossings(t *testing.T) {
	g := crossed()
	if dag.CountCrossings(g, dag.CurrentOrders(g)) == 0 {
		t.Fatal("fixture should start with crossings")
	}
	orders := Barycentric{}.OrderRows(g)
	if c := dag.CountCrossings(g, orders); c != 0 {
		t.Errorf("crossings = %d, want 0 (orders %v)", c, orders)
	}
	if len(orders[1]) != 4 {
		t.Errorf("row 1 lost nodes: %v", orders[1])
	}
}

func TestBarycentricDeterministic(t *testing.T) {
	a := Barycentric{}.OrderRows(crossed())
	b := Barycentric{}.OrderRows(crossed())
	for r := range a {
		if !slices.Equal(a[r], b[r]) {
			t.Errorf("row %d differs: %v vs %v", r, a[r], b[r])
		}
	}
}

func TestBarycentricCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	orders, err := Barycentric{}.OrderRowsContext(ctx, crossed())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(orders[0])+len(orders[1]) != 6 {
		t.Errorf("partial result must still cover every node: %v", orders)
	}
}

func TestExhaustiveNeverWorse(t *testing.T) {
	g := dag.New(nil)
	top := []string{"a", "b", "c"}
	bottom := []string{"x", "y", "z"}
	for _, id := range top {
		_ = g.AddNode(dag.Node{ID: id, Row: 0})
	}
	for _, id := range bottom {
		_ = g.AddNode(dag.Node{ID: id, Row: 1})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "z"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "x"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "z"})

	base := Barycentric{Passes: 1}
	baseCrossings := dag.CountCrossings(g, base.OrderRows(g))
	refined := Exhaustive{Base: base}.OrderRows(g)
	if c := dag.CountCrossings(g, refined); c > baseCrossings {
		t.Errorf("exhaustive made things worse: %d > %d", c, baseCrossings)
	}
}

func TestBestPermutation(t *testing.T) {
	g := crossed()
	got := bestPermutation(g, []string{"c2a", "c2b", "c1a", "c1b"}, []string{"m1", "m2"}, nil)
	if c := dag.CountLayerCrossings(g, []string{"m1", "m2"}, got); c != 0 {
		t.Errorf("bestPermutation = %v with %d crossings", got, c)
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   string
		want Quality
		ok   bool
	}{
		{"fast", QualityFast, true},
		{"Balanced", QualityBalanced, true},
		{"", QualityBalanced, true},
		{"optimal", QualityBalanced, false},
	}
	for _, tt := range tests {
		got, ok := ParseQuality(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseQuality(%q) = %v, %v", tt.in, got, ok)
		}
	}
	if _, ok := ForQuality(QualityFast).(Barycentric); !ok {
		t.Error("fast preset should be Barycentric")
	}
}
