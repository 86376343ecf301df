package transform

import "github.com/matzehuels/stamboom/pkg/dag"

// Components groups node IDs into weakly connected components. Components
// are ordered by the first appearance of any of their nodes and node IDs
// keep insertion order inside each component.
func Components(g *dag.DAG) [][]string {
	nodes := g.Nodes()
	comp := make(map[string]int, len(nodes))
	var groups [][]string

	for _, n := range nodes {
		if _, seen := comp[n.ID]; seen {
			continue
		}
		idx := len(groups)
		groups = append(groups, nil)
		comp[n.ID] = idx
		stack := []string{n.ID}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range g.Children(cur) {
				if _, seen := comp[nb]; !seen {
					comp[nb] = idx
					stack = append(stack, nb)
				}
			}
			for _, nb := range g.Parents(cur) {
				if _, seen := comp[nb]; !seen {
					comp[nb] = idx
					stack = append(stack, nb)
				}
			}
		}
	}

	for _, n := range nodes {
		idx := comp[n.ID]
		groups[idx] = append(groups[idx], n.ID)
	}
	return groups
}
