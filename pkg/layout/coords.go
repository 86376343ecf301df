package layout

import (
	"slices"

	"github.com/matzehuels/stamboom/pkg/dag"
	"github.com/matzehuels/stamboom/pkg/tree"
)

const alignRounds = 8

// assignY returns the centre y of each row and the total height. A row is as
// tall as its tallest box.
func (c config) assignY(g *dag.DAG) (map[int]float64, float64) {
	ys := make(map[int]float64, g.RowCount())
	top := 0.0
	for r := 0; r <= g.MaxRow(); r++ {
		h := 0.0
		for _, n := range g.NodesInRow(r) {
			h = max(h, n.Height)
		}
		ys[r] = top + h/2
		top += h + c.rankSpacing
	}
	return ys, top - c.rankSpacing
}

// assignX returns the centre x of every node, shifted so the leftmost box
// edge is at 0, and the component width.
func (c config) assignX(g *dag.DAG) (map[string]float64, float64) {
	rows := g.RowIDs()
	xs := make(map[string]float64, g.NodeCount())

	for _, r := range rows {
		nodes := g.NodesInRow(r)
		x := 0.0
		for i, n := range nodes {
			if i > 0 {
				x += c.separation(nodes[i-1], n)
			}
			xs[n.ID] = x
		}
	}

	for round := 0; round < alignRounds; round++ {
		for i := 1; i < len(rows); i++ {
			c.alignRow(g, xs, rows[i], true)
		}
		for i := len(rows) - 2; i >= 0; i-- {
			c.alignRow(g, xs, rows[i], false)
		}
	}

	left, right := 0.0, 0.0
	first := true
	for _, n := range g.Nodes() {
		l, r := xs[n.ID]-n.Width/2, xs[n.ID]+n.Width/2
		if first {
			left, right, first = l, r, false
			continue
		}
		left, right = min(left, l), max(right, r)
	}
	for id := range xs {
		xs[id] -= left
	}
	return xs, right - left
}

// separation is the minimum centre distance between two neighbours in a row.
func (c config) separation(a, b *dag.Node) float64 {
	gap := c.nodeSpacing
	if a.IsDummy() || b.IsDummy() {
		gap = c.nodeSpacing / 4
	}
	return (a.Width+b.Width)/2 + gap
}

// alignRow moves each node of row towards the median x of its neighbours in
// the adjacent row, keeping the row order and minimum separations. Nodes
// without neighbours target their current position.
func (c config) alignRow(g *dag.DAG, xs map[string]float64, row int, useParents bool) {
	nodes := g.NodesInRow(row)
	if len(nodes) == 0 {
		return
	}

	desired := make([]float64, len(nodes))
	for i, n := range nodes {
		var nbrs []string
		if useParents {
			nbrs = g.Parents(n.ID)
		} else {
			nbrs = g.Children(n.ID)
		}
		if len(nbrs) == 0 {
			desired[i] = xs[n.ID]
			continue
		}
		vals := make([]float64, len(nbrs))
		for j, nb := range nbrs {
			vals[j] = xs[nb]
		}
		desired[i] = median(vals)
	}

	seps := make([]float64, len(nodes)-1)
	for i := range seps {
		seps[i] = c.separation(nodes[i], nodes[i+1])
	}
	for i, x := range pack(desired, seps) {
		xs[nodes[i].ID] = x
	}
}

// pack returns the positions closest to desired, in the least squares sense,
// that satisfy x[i+1]-x[i] >= seps[i]. Shifting by the prefix sums of seps
// turns this into isotonic regression, solved by pooling adjacent
// violators.
func pack(desired, seps []float64) []float64 {
	offset := make([]float64, len(desired))
	for i := 1; i < len(desired); i++ {
		offset[i] = offset[i-1] + seps[i-1]
	}

	type pool struct {
		sum float64
		n   int
	}
	mean := func(p pool) float64 { return p.sum / float64(p.n) }

	pools := make([]pool, 0, len(desired))
	for i, d := range desired {
		pools = append(pools, pool{sum: d - offset[i], n: 1})
		for len(pools) > 1 && mean(pools[len(pools)-2]) > mean(pools[len(pools)-1]) {
			last := pools[len(pools)-1]
			pools = pools[:len(pools)-1]
			pools[len(pools)-1].sum += last.sum
			pools[len(pools)-1].n += last.n
		}
	}

	out := make([]float64, 0, len(desired))
	for _, p := range pools {
		m := mean(p)
		for range p.n {
			out = append(out, m+offset[len(out)])
		}
	}
	return out
}

func median(vals []float64) float64 {
	slices.Sort(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// placeLoose grids isolated nodes in rows of looseColumns cells starting at
// originX. It returns the grid's width and height.
func (c config) placeLoose(nodes []*dag.Node, originX float64, centers map[string]tree.Position) (float64, float64) {
	cellW, cellH := 0.0, 0.0
	for _, n := range nodes {
		cellW = max(cellW, n.Width)
		cellH = max(cellH, n.Height)
	}
	stepX := cellW + c.nodeSpacing
	stepY := cellH + c.nodeSpacing

	cols := min(c.looseColumns, len(nodes))
	rows := (len(nodes) + cols - 1) / cols
	for i, n := range nodes {
		col, row := i%cols, i/cols
		centers[n.ID] = tree.Position{
			X: originX + float64(col)*stepX + cellW/2,
			Y: float64(row)*stepY + cellH/2,
		}
	}
	return float64(cols)*stepX - c.nodeSpacing, float64(rows)*stepY - c.nodeSpacing
}
