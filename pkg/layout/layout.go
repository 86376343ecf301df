package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/stamboom/pkg/dag"
	"github.com/matzehuels/stamboom/pkg/dag/transform"
	"github.com/matzehuels/stamboom/pkg/layout/ordering"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// ErrNonFinitePosition is returned when a node would be emitted with a NaN
// or infinite coordinate.
var ErrNonFinitePosition = errors.New("non-finite node position")

// Result describes a layout run.
type Result struct {
	// Skipped are edges whose source or target is not a node of the graph.
	Skipped []tree.Edge
	// DroppedNodes lists repeated node ids; only the first node is kept.
	DroppedNodes []string
	// RemovedEdges are edges ignored for ranking because they closed a cycle.
	// They are still part of the output graph.
	RemovedEdges []dag.Edge

	Components int
	Loose      int
	Dummies    int
	Crossings  int

	Width  float64
	Height float64
}

// Compute positions every node of g and returns the positioned copy. g is
// not modified.
func Compute(ctx context.Context, g tree.Graph, opts ...Option) (tree.Graph, Result, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}

	d, skipped := g.ToDAG()
	res := Result{Skipped: skipped}
	for _, e := range skipped {
		cfg.logger.Warn("skipping edge with unknown endpoint", "edge", e.ID, "source", e.Source, "target", e.Target)
	}

	centers := make(map[string]tree.Position, d.NodeCount())
	var loose []*dag.Node
	offsetX := 0.0

	for _, ids := range transform.Components(d) {
		if len(ids) == 1 && d.Degree(ids[0]) == 0 {
			n, _ := d.Node(ids[0])
			loose = append(loose, n)
			continue
		}
		if err := ctx.Err(); err != nil {
			return tree.Graph{}, res, err
		}

		sub := d.Subgraph(ids)
		norm := transform.Normalize(sub)
		for _, e := range norm.RemovedEdges {
			cfg.logger.Warn("ignoring edge that closes a cycle", "source", e.From, "target", e.To)
		}
		res.RemovedEdges = append(res.RemovedEdges, norm.RemovedEdges...)
		res.Dummies += norm.DummiesAdded

		orders, err := orderRows(ctx, cfg.orderer, sub)
		if err != nil {
			return tree.Graph{}, res, err
		}
		for r, row := range orders {
			sub.SetRowOrder(r, row)
		}
		res.Crossings += dag.CountCrossings(sub, dag.CurrentOrders(sub))

		xs, width := cfg.assignX(sub)
		ys, height := cfg.assignY(sub)
		for _, n := range sub.Nodes() {
			if n.IsDummy() {
				continue
			}
			centers[n.ID] = tree.Position{X: offsetX + xs[n.ID], Y: ys[n.Row]}
		}

		cfg.logger.Debug("component laid out", "nodes", len(ids), "rows", norm.MaxRow+1, "dummies", norm.DummiesAdded)
		offsetX += width + cfg.componentSpacing
		res.Width = offsetX - cfg.componentSpacing
		res.Height = max(res.Height, height)
		res.Components++
	}

	if len(loose) > 0 {
		w, h := cfg.placeLoose(loose, offsetX, centers)
		res.Width = max(res.Width, offsetX+w)
		res.Height = max(res.Height, h)
		res.Loose = len(loose)
	}

	out, err := emit(g, centers, &res)
	if err != nil {
		return tree.Graph{}, res, err
	}
	for _, id := range res.DroppedNodes {
		cfg.logger.Warn("dropping duplicate node", "id", id)
	}
	return out, res, nil
}

func orderRows(ctx context.Context, o ordering.Orderer, g *dag.DAG) (map[int][]string, error) {
	if co, ok := o.(ordering.ContextOrderer); ok {
		return co.OrderRowsContext(ctx, g)
	}
	return o.OrderRows(g), nil
}

// emit copies g with positions attached. Duplicate nodes and edges without
// both endpoints are left out.
func emit(g tree.Graph, centers map[string]tree.Position, res *Result) (tree.Graph, error) {
	out := tree.Graph{Nodes: make([]tree.Node, 0, len(g.Nodes))}
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			res.DroppedNodes = append(res.DroppedNodes, n.ID)
			continue
		}
		seen[n.ID] = struct{}{}

		c := centers[n.ID]
		w, h := n.Size()
		n.Position = tree.Position{X: c.X - w/2, Y: c.Y - h/2}
		if !finite(n.Position.X) || !finite(n.Position.Y) {
			return tree.Graph{}, fmt.Errorf("node %s: %w", n.ID, ErrNonFinitePosition)
		}
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range g.Edges {
		_, okS := seen[e.Source]
		_, okT := seen[e.Target]
		if okS && okT {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
