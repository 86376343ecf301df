package transform

import "github.com/matzehuels/stamboom/pkg/dag"

// Result reports what [Normalize] changed.
type Result struct {
	// RemovedEdges are the back edges dropped to make the graph acyclic.
	RemovedEdges []dag.Edge
	// DummiesAdded counts bend points inserted by [Subdivide].
	DummiesAdded int
	// MaxRow is the deepest row after layering.
	MaxRow int
}

// Normalize breaks cycles, assigns layers and subdivides long edges in place.
func Normalize(g *dag.DAG) Result {
	removed := BreakCycles(g)
	AssignLayers(g)
	dummies := Subdivide(g)
	return Result{RemovedEdges: removed, DummiesAdded: dummies, MaxRow: g.MaxRow()}
}
