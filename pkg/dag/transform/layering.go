package transform

import "github.com/matzehuels/stamboom/pkg/dag"

// AssignLayers ranks every node by longest path from the sources.
//
// Each node lands one row below the deepest of its parents, so a marriage is
// strictly below both partners and a child strictly below the marriage.
// Existing rows are overwritten.
//
// A second pass pulls source nodes down to sit directly above their
// shallowest child. Without it a partner who married into the family would
// stay on row 0 and drag a long edge across every generation in between.
//
// g must be acyclic; run [BreakCycles] first. Nodes on a cycle never reach
// in-degree zero and stay on row 0.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, n := range nodes {
		if g.InDegree(n.ID) > 0 || g.OutDegree(n.ID) == 0 {
			continue
		}
		lowest := -1
		for _, child := range g.Children(n.ID) {
			if lowest < 0 || rows[child] < lowest {
				lowest = rows[child]
			}
		}
		if lowest-1 > rows[n.ID] {
			rows[n.ID] = lowest - 1
		}
	}

	g.SetRows(rows)
}
