package ordering

import (
	"context"
	"slices"

	"github.com/matzehuels/stamboom/pkg/dag"
)

// Barycentric is the classic Sugiyama barycentre heuristic with adjacent
// transposition. Passes alternates downward and upward sweeps; zero means
// [DefaultPasses].
type Barycentric struct {
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	orders, _ := b.OrderRowsContext(context.Background(), g)
	return orders
}

// OrderRowsContext implements [ContextOrderer].
func (b Barycentric) OrderRowsContext(ctx context.Context, g *dag.DAG) (map[int][]string, error) {
	orders := dag.CurrentOrders(g)
	rows := g.RowIDs()
	if len(rows) < 2 {
		return orders, nil
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}
	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		down := pass%2 == 0
		if down {
			for i := 1; i < len(rows); i++ {
				sortByBarycenter(g, orders, rows[i], rows[i-1], true)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				sortByBarycenter(g, orders, rows[i], rows[i+1], false)
			}
		}
		transpose(g, orders, rows)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best, nil
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbours in adj. Nodes without neighbours keep their current index as
// key. The sort is stable.
func sortByBarycenter(g *dag.DAG, orders map[int][]string, row, adj int, useParents bool) {
	ids := orders[row]
	adjPos := dag.PosMap(orders[adj])

	keys := make(map[string]float64, len(ids))
	for i, id := range ids {
		var nbrs []string
		if useParents {
			nbrs = g.Parents(id)
		} else {
			nbrs = g.Children(id)
		}
		sum, n := 0.0, 0
		for _, nb := range nbrs {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
		} else {
			keys[id] = sum / float64(n)
		}
	}

	slices.SortStableFunc(ids, func(a, b string) int {
		ka, kb := keys[a], keys[b]
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

// transpose swaps adjacent nodes while doing so lowers the crossings with
// both neighbouring rows.
func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for improved, rounds := true, 0; improved && rounds < 8; rounds++ {
		improved = false
		for _, r := range rows {
			ids := orders[r]
			upPos := dag.PosMap(orders[r-1])
			downPos := dag.PosMap(orders[r+1])
			for i := 0; i+1 < len(ids); i++ {
				a, b := ids[i], ids[i+1]
				before := dag.CountPairCrossingsWithPos(g, a, b, upPos, true) +
					dag.CountPairCrossingsWithPos(g, a, b, downPos, false)
				after := dag.CountPairCrossingsWithPos(g, b, a, upPos, true) +
					dag.CountPairCrossingsWithPos(g, b, a, downPos, false)
				if after < before {
					ids[i], ids[i+1] = b, a
					improved = true
				}
			}
		}
	}
}
