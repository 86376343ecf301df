package ordering

import (
	"context"

	"github.com/matzehuels/stamboom/pkg/dag"
	"github.com/matzehuels/stamboom/pkg/dag/perm"
)

// Exhaustive refines the result of Base by trying every permutation of rows
// with at most MaxRowSize nodes. A zero Base means [Barycentric] with default
// passes; a zero MaxRowSize means [DefaultMaxRowSize].
type Exhaustive struct {
	Base       Orderer
	MaxRowSize int
}

// OrderRows implements [Orderer].
func (e Exhaustive) OrderRows(g *dag.DAG) map[int][]string {
	orders, _ := e.OrderRowsContext(context.Background(), g)
	return orders
}

// OrderRowsContext implements [ContextOrderer].
func (e Exhaustive) OrderRowsContext(ctx context.Context, g *dag.DAG) (map[int][]string, error) {
	var base Orderer = Barycentric{}
	if e.Base != nil {
		base = e.Base
	}
	var orders map[int][]string
	if co, ok := base.(ContextOrderer); ok {
		var err error
		if orders, err = co.OrderRowsContext(ctx, g); err != nil {
			return orders, err
		}
	} else {
		orders = base.OrderRows(g)
	}

	limit := e.MaxRowSize
	if limit <= 0 {
		limit = DefaultMaxRowSize
	}

	for _, r := range g.RowIDs() {
		if err := ctx.Err(); err != nil {
			return orders, err
		}
		ids := orders[r]
		if len(ids) < 2 || len(ids) > limit {
			continue
		}
		orders[r] = bestPermutation(g, ids, orders[r-1], orders[r+1])
	}
	return orders, nil
}

func bestPermutation(g *dag.DAG, ids, above, below []string) []string {
	local := func(row []string) int {
		return dag.CountLayerCrossings(g, above, row) + dag.CountLayerCrossings(g, row, below)
	}
	best := append([]string(nil), ids...)
	bestCount := local(best)
	if bestCount == 0 {
		return best
	}

	candidate := make([]string, len(ids))
	perm.Each(len(ids), func(p []int) bool {
		for i, idx := range p {
			candidate[i] = ids[idx]
		}
		if c := local(candidate); c < bestCount {
			bestCount = c
			copy(best, candidate)
		}
		return bestCount > 0
	})
	return best
}
