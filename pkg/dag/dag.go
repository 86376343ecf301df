package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// does not point exactly one row down.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil once a node or graph has been created.
type Metadata map[string]any

// NodeKind distinguishes family nodes from synthetic layout nodes.
type NodeKind int

const (
	// NodeKindRegular is a member or marriage node.
	NodeKindRegular NodeKind = iota
	// NodeKindDummy is a bend point inserted on an edge spanning several rows.
	NodeKindDummy
)

// Node is a vertex with a rank (Row) and a bounding box.
//
// Member and marriage nodes carry the size of the card drawn for them, so
// the positioner can keep neighbours apart. Dummy nodes have zero size.
//
// # Node IDs
//
// Member nodes use the person id ("7"), marriage nodes "marriage-<p1>-<p2>"
// and dummies "<master>_dummy_<row>". IDs must be unique across the whole
// graph regardless of row.
//
// The zero value is not usable; ID must be set before adding to a DAG.
type Node struct {
	ID     string
	Row    int
	Width  float64
	Height float64
	Meta   Metadata

	Kind NodeKind
	// MasterID is the source node of the edge a dummy was inserted into.
	MasterID string
}

// IsDummy reports whether the node is a synthetic bend point.
func (n Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// Edge is a directed connection from a node to one in a lower row.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// DAG is a directed graph whose nodes are indexed by row.
//
// Nodes are kept in insertion order and every row lists its nodes in their
// current left-to-right order, which [DAG.SetRowOrder] changes. Adjacency is
// stored both ways so [DAG.Parents] and [DAG.Children] are map lookups.
//
// # Performance
//
// AddNode and AddEdge are amortized O(1). [DAG.RemoveEdge] is O(E) because
// it scans the edge list. [DAG.Nodes] and [DAG.Edges] allocate a fresh slice
// on every call, so loops over a large graph should hoist them.
//
// The zero value is not usable; use New.
type DAG struct {
	order    []string // insertion order, keeps iteration deterministic
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node and indexes it by its Row. It returns
// [ErrInvalidNodeID] for an empty ID and [ErrDuplicateNodeID] when the ID
// is taken.
//
// # Nil Handling
//
// A nil Meta is replaced by an empty map, so callers may write to
// Node.Meta of any node in the graph without checking.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// SetRows updates row assignments and rebuilds the row index. Nodes absent
// from rows keep their current row. Within a row, nodes stay in insertion
// order.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]*Node)
	for _, id := range d.order {
		n := d.nodes[id]
		if newRow, ok := rows[n.ID]; ok {
			n.Row = newRow
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// SetRowOrder replaces the left-to-right order of a row. IDs not in the row
// are ignored and row members missing from ids keep their relative order at
// the end.
func (d *DAG) SetRowOrder(row int, ids []string) {
	current := d.rows[row]
	ordered := make([]*Node, 0, len(current))
	seen := make(map[string]struct{}, len(current))
	for _, id := range ids {
		if n, ok := d.nodes[id]; ok && n.Row == row {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ordered = append(ordered, n)
			}
		}
	}
	for _, n := range current {
		if _, ok := seen[n.ID]; !ok {
			ordered = append(ordered, n)
		}
	}
	d.rows[row] = ordered
}

// AddEdge adds a directed edge between two existing nodes. Parallel edges
// are allowed. A nil Meta is replaced by an empty map.
//
// AddEdge does not check that the edge points one row down; rows are often
// assigned after the edges exist. Call [DAG.Validate] once the graph is
// layered.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the first edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	if i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to }); i >= 0 {
		d.edges = slices.Delete(d.edges, i, i+1)
	}
	if i := slices.Index(d.outgoing[from], to); i >= 0 {
		d.outgoing[from] = slices.Delete(d.outgoing[from], i, i+1)
	}
	if i := slices.Index(d.incoming[to], from); i >= 0 {
		d.incoming[to] = slices.Delete(d.incoming[to], i, i+1)
	}
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of the node's outgoing edges. The slice must
// not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sources of the node's incoming edges. The slice must
// not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Degree returns the total number of edges touching the node.
func (d *DAG) Degree(id string) int { return d.InDegree(id) + d.OutDegree(id) }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInRow returns the nodes of a row in their current left-to-right
// order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowCount returns the number of distinct non-empty rows.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// MaxRow returns the highest row index, or 0 if the graph is empty.
func (d *DAG) MaxRow() int {
	if len(d.rows) == 0 {
		return 0
	}
	rowIDs := d.RowIDs()
	return rowIDs[len(rowIDs)-1]
}

// Sources returns nodes with no incoming edges in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Subgraph returns a new DAG containing the given nodes and every edge whose
// endpoints are both in the set. Node values are copied.
func (d *DAG) Subgraph(ids []string) *DAG {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	sub := New(maps.Clone(d.meta))
	for _, id := range d.order {
		if _, ok := keep[id]; ok {
			n := *d.nodes[id]
			n.Meta = maps.Clone(n.Meta)
			_ = sub.AddNode(n)
		}
	}
	for _, e := range d.edges {
		_, okF := keep[e.From]
		_, okT := keep[e.To]
		if okF && okT {
			_ = sub.AddEdge(Edge{From: e.From, To: e.To, Meta: maps.Clone(e.Meta)})
		}
	}
	return sub
}

// Validate checks that every edge joins existing nodes in consecutive rows
// and that the graph is acyclic.
//
// It returns the first of [ErrInvalidEdgeEndpoint], [ErrNonConsecutiveRows]
// or [ErrGraphHasCycle] that applies. Cycles are found by a depth-first
// search with white/gray/black colouring in O(V + E).
func (d *DAG) Validate() error {
	if err := d.validateEdgeConsistency(); err != nil {
		return err
	}
	return d.detectCycles()
}

func (d *DAG) validateEdgeConsistency() error {
	for _, e := range d.edges {
		src, okS := d.nodes[e.From]
		dst, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Row != src.Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return nil
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
