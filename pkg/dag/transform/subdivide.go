package transform

import (
	"fmt"

	"github.com/matzehuels/stamboom/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// [dag.NodeKindDummy] nodes, one per intermediate row, and returns the number
// of dummies added.
//
//	Before: 7 (row 0) -> marriage-7-9 (row 3)
//	After:  7 -> 7_dummy_1 -> 7_dummy_2 -> marriage-7-9
//
// Dummies have zero size and carry the edge's source as MasterID. The
// original edge's metadata moves to the last hop of the chain.
//
// Rows must already be assigned. Edges whose target sits at or above the
// row below their source are left alone.
//
// # Node IDs
//
// A dummy is named "<source>_dummy_<row>". If that ID is taken, for
// example by a member whose id happens to match, a "__<n>" suffix is added
// until the ID is free.
//
// # Nil Handling
//
// Subdivide panics if g is nil. An empty graph returns 0.
//
// # Performance
//
// Time is O(E·R + E²) in the worst case, where R is the longest span: the
// chain insertion is linear in its length and each long edge is removed
// with [dag.DAG.RemoveEdge]. Family trees rarely span more than a few rows.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	added := 0

	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		toRemove = append(toRemove, e)
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addDummy(g, gen, prevID, src.ID, row)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Meta: e.Meta}); err != nil {
			panic(err)
		}
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
	return added
}

func addDummy(g *dag.DAG, gen *idGen, from, master string, row int) string {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindDummy,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_dummy_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
