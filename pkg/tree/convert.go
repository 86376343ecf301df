package tree

import "github.com/matzehuels/stamboom/pkg/dag"

// Metadata keys set by [Graph.ToDAG].
const (
	MetaType   = "type"
	MetaEdgeID = "id"
	MetaKind   = "kind"
)

// ToDAG converts the graph into a layout DAG. Nodes keep graph order and are
// sized by type. Edges whose endpoints are missing, and repeated node ids,
// cannot be represented; the offending edges are returned as skipped.
func (g Graph) ToDAG() (*dag.DAG, []Edge) {
	d := dag.New(nil)
	for _, n := range g.Nodes {
		w, h := n.Size()
		_ = d.AddNode(dag.Node{
			ID:     n.ID,
			Width:  w,
			Height: h,
			Meta:   dag.Metadata{MetaType: n.Type},
		})
	}

	var skipped []Edge
	for _, e := range g.Edges {
		err := d.AddEdge(dag.Edge{
			From: e.Source,
			To:   e.Target,
			Meta: dag.Metadata{MetaEdgeID: e.ID, MetaKind: e.Kind},
		})
		if err != nil {
			skipped = append(skipped, e)
		}
	}
	return d, skipped
}
