package transform

import "github.com/matzehuels/stamboom/pkg/dag"

// BreakCycles removes back edges until g is acyclic and returns the removed
// edges in discovery order.
//
// The search starts from source nodes in insertion order and then visits any
// node left unreached, so the result is deterministic for a given graph.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var back []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, dag.Edge{From: node, To: child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return back
}
