package layout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/tree"
)

const eps = 1e-6

func p(id int64) family.Person {
	return family.Person{ID: id, FirstName: "P", LastName: "Q"}
}

// threeGenerations has grandparents 1+2, their children 3 and 4, 3 married
// to 5 (married in) with children 6 and 7, 4 married to an unknown spouse
// with child 8, and a disconnected person 9.
func threeGenerations() tree.Graph {
	people := []family.Person{p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9)}
	marriages := []family.Marriage{
		{ID: 1, P1: family.ID(1), P2: family.ID(2)},
		{ID: 2, P1: family.ID(3), P2: family.ID(5)},
		{ID: 3, P1: family.ID(4)},
	}
	children := []family.Child{
		{MarriageID: 1, ChildID: 3},
		{MarriageID: 1, ChildID: 4},
		{MarriageID: 2, ChildID: 6},
		{MarriageID: 2, ChildID: 7},
		{MarriageID: 3, ChildID: 8},
	}
	return tree.Build(people, marriages, children)
}

func twoBranches() tree.Graph {
	people := []family.Person{p(1), p(2), p(3), p(11), p(12), p(13), p(14), p(20), p(21)}
	marriages := []family.Marriage{
		{ID: 1, P1: family.ID(1), P2: family.ID(2)},
		{ID: 2, P1: family.ID(11), P2: family.ID(12)},
	}
	children := []family.Child{
		{MarriageID: 1, ChildID: 3},
		{MarriageID: 2, ChildID: 13},
		{MarriageID: 2, ChildID: 14},
	}
	return tree.Build(people, marriages, children)
}

func mustCompute(t *testing.T, g tree.Graph, opts ...Option) (tree.Graph, Result) {
	t.Helper()
	out, res, err := Compute(context.Background(), g, opts...)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return out, res
}

func byID(g tree.Graph) map[string]tree.Node {
	m := make(map[string]tree.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}

func TestCompute_RankOrdering(t *testing.T) {
	out, _ := mustCompute(t, threeGenerations())
	nodes := byID(out)

	for _, e := range out.Edges {
		src, dst := nodes[e.Source], nodes[e.Target]
		switch e.Kind {
		case tree.EdgeMarriage:
			if dst.Type != tree.Marriage || !(src.Position.Y < dst.Position.Y) {
				t.Errorf("partner %s (y=%v) not above %s (y=%v)", src.ID, src.Position.Y, dst.ID, dst.Position.Y)
			}
		case tree.EdgeChild:
			if src.Type != tree.Marriage || !(dst.Position.Y > src.Position.Y) {
				t.Errorf("child %s (y=%v) not below %s (y=%v)", dst.ID, dst.Position.Y, src.ID, src.Position.Y)
			}
		}
	}
}

func TestCompute_EveryNodePositioned(t *testing.T) {
	in := threeGenerations()
	out, _ := mustCompute(t, in)

	if len(out.Nodes) != len(in.Nodes) || len(out.Edges) != len(in.Edges) {
		t.Fatalf("got %d nodes %d edges, want %d/%d", len(out.Nodes), len(out.Edges), len(in.Nodes), len(in.Edges))
	}
	for _, n := range out.Nodes {
		if math.IsNaN(n.Position.X) || math.IsInf(n.Position.X, 0) ||
			math.IsNaN(n.Position.Y) || math.IsInf(n.Position.Y, 0) {
			t.Errorf("node %s has non-finite position %+v", n.ID, n.Position)
		}
	}
	for _, n := range in.Nodes {
		if n.Position != (tree.Position{}) {
			t.Fatal("Compute modified its input")
		}
	}
}

func TestCompute_NoOverlap(t *testing.T) {
	for name, g := range map[string]tree.Graph{
		"three generations": threeGenerations(),
		"two branches":      twoBranches(),
	} {
		t.Run(name, func(t *testing.T) {
			out, _ := mustCompute(t, g)
			for i := range out.Nodes {
				for j := i + 1; j < len(out.Nodes); j++ {
					if overlaps(out.Nodes[i], out.Nodes[j]) {
						t.Errorf("%s %+v overlaps %s %+v", out.Nodes[i].ID, out.Nodes[i].Position, out.Nodes[j].ID, out.Nodes[j].Position)
					}
				}
			}
		})
	}
}

func overlaps(a, b tree.Node) bool {
	aw, ah := a.Size()
	bw, bh := b.Size()
	return a.Position.X+aw > b.Position.X+eps && b.Position.X+bw > a.Position.X+eps &&
		a.Position.Y+ah > b.Position.Y+eps && b.Position.Y+bh > a.Position.Y+eps
}

func TestCompute_ComponentsAndLoose(t *testing.T) {
	out, res := mustCompute(t, twoBranches())

	if res.Components != 2 {
		t.Errorf("Components = %d, want 2", res.Components)
	}
	if res.Loose != 2 {
		t.Errorf("Loose = %d, want 2", res.Loose)
	}

	nodes := byID(out)
	rightmost := 0.0
	for _, n := range out.Nodes {
		if !n.Disconnected {
			w, _ := n.Size()
			rightmost = max(rightmost, n.Position.X+w)
		}
	}
	for _, id := range []string{"20", "21"} {
		n := nodes[id]
		if !n.Disconnected {
			t.Errorf("%s should be disconnected", id)
		}
		if n.Position.X < rightmost {
			t.Errorf("loose node %s at x=%v is left of the components (%v)", id, n.Position.X, rightmost)
		}
	}
	if res.Width <= 0 || res.Height <= 0 {
		t.Errorf("extent = %vx%v", res.Width, res.Height)
	}
}

func TestCompute_CentreToCorner(t *testing.T) {
	g := tree.Build([]family.Person{p(1)}, nil, nil)
	out, _ := mustCompute(t, g)

	if got := out.Nodes[0].Position; got != (tree.Position{}) {
		t.Errorf("single loose node at %+v, want origin", got)
	}
	if c := out.Nodes[0].Center(); c.X != tree.MemberWidth/2 || c.Y != tree.MemberHeight/2 {
		t.Errorf("centre = %+v", c)
	}
}

func TestCompute_LooseGridColumns(t *testing.T) {
	people := []family.Person{p(1), p(2), p(3)}
	out, _ := mustCompute(t, tree.Build(people, nil, nil), WithLooseColumns(2), WithNodeSpacing(10))
	nodes := byID(out)

	if nodes["2"].Position.X != tree.MemberWidth+10 || nodes["2"].Position.Y != 0 {
		t.Errorf("node 2 at %+v", nodes["2"].Position)
	}
	if nodes["3"].Position.X != 0 || nodes["3"].Position.Y != tree.MemberHeight+10 {
		t.Errorf("node 3 at %+v", nodes["3"].Position)
	}
}

func TestCompute_OrphanEdges(t *testing.T) {
	g := threeGenerations()
	g.Edges = append(g.Edges, tree.Edge{ID: "broken", Source: "marriage-1-2", Target: "404", Kind: tree.EdgeChild})

	out, res := mustCompute(t, g)

	if len(res.Skipped) != 1 || res.Skipped[0].ID != "broken" {
		t.Errorf("Skipped = %v", res.Skipped)
	}
	if len(out.Nodes) != len(g.Nodes) {
		t.Errorf("got %d nodes, want %d", len(out.Nodes), len(g.Nodes))
	}
	for _, e := range out.Edges {
		if e.ID == "broken" {
			t.Error("orphan edge emitted")
		}
	}
}

func TestCompute_DuplicateNodes(t *testing.T) {
	g := threeGenerations()
	g.Nodes = append(g.Nodes, g.Nodes[0])

	out, res := mustCompute(t, g)

	if len(res.DroppedNodes) != 1 || res.DroppedNodes[0] != g.Nodes[0].ID {
		t.Errorf("DroppedNodes = %v", res.DroppedNodes)
	}
	if len(out.Nodes) != len(g.Nodes)-1 {
		t.Errorf("got %d nodes", len(out.Nodes))
	}
}

func TestCompute_Cycle(t *testing.T) {
	// 1 is recorded as the child of its own marriage.
	people := []family.Person{p(1), p(2)}
	marriages := []family.Marriage{{ID: 1, P1: family.ID(1), P2: family.ID(2)}}
	children := []family.Child{{MarriageID: 1, ChildID: 1}}

	out, res := mustCompute(t, tree.Build(people, marriages, children))

	if len(res.RemovedEdges) != 1 {
		t.Errorf("RemovedEdges = %v", res.RemovedEdges)
	}
	if len(out.Nodes) != 3 || len(out.Edges) != 3 {
		t.Errorf("got %d nodes %d edges", len(out.Nodes), len(out.Edges))
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a, _ := mustCompute(t, threeGenerations())
	b, _ := mustCompute(t, threeGenerations())
	for i := range a.Nodes {
		if a.Nodes[i].ID != b.Nodes[i].ID || a.Nodes[i].Position != b.Nodes[i].Position {
			t.Errorf("node %d differs: %+v vs %+v", i, a.Nodes[i], b.Nodes[i])
		}
	}
}

func TestCompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Compute(ctx, threeGenerations())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCompute_PartnersFlankMarriage(t *testing.T) {
	people := []family.Person{p(1), p(2)}
	marriages := []family.Marriage{{ID: 1, P1: family.ID(1), P2: family.ID(2)}}
	out, _ := mustCompute(t, tree.Build(people, marriages, nil))
	nodes := byID(out)

	m := nodes["marriage-1-2"].Center().X
	a, b := nodes["1"].Center().X, nodes["2"].Center().X
	if !(min(a, b) < m && m < max(a, b)) {
		t.Errorf("marriage x=%v not between partners %v and %v", m, a, b)
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		desired []float64
		seps    []float64
		want    []float64
	}{
		{"already apart", []float64{0, 100}, []float64{50}, []float64{0, 100}},
		{"same target", []float64{10, 10}, []float64{20}, []float64{0, 20}},
		{"reversed", []float64{30, 0, 0}, []float64{10, 10}, []float64{0, 10, 20}},
		{"single", []float64{7}, nil, []float64{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pack(tt.desired, tt.seps)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > eps {
					t.Fatalf("pack = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
