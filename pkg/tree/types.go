package tree

import (
	"fmt"

	"github.com/matzehuels/stamboom/pkg/family"
)

// NodeType is the closed set of node variants.
type NodeType int

const (
	// Member is a person card.
	Member NodeType = iota
	// Marriage is the union node between partners and their children.
	Marriage
)

// Fixed bounding boxes per node type.
const (
	MemberWidth    = 284.0
	MemberHeight   = 144.0
	MarriageWidth  = 172.0
	MarriageHeight = 100.0
)

// Dims returns the bounding box of the node type.
func (t NodeType) Dims() (width, height float64) {
	if t == Marriage {
		return MarriageWidth, MarriageHeight
	}
	return MemberWidth, MemberHeight
}

func (t NodeType) String() string {
	if t == Marriage {
		return "marriage"
	}
	return "member"
}

func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *NodeType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "member":
		*t = Member
	case "marriage":
		*t = Marriage
	default:
		return fmt.Errorf("unknown node type %q", b)
	}
	return nil
}

// EdgeKind separates partner edges from child edges.
type EdgeKind int

const (
	// EdgeMarriage runs from a partner to the marriage node.
	EdgeMarriage EdgeKind = iota
	// EdgeChild runs from a marriage node to a child.
	EdgeChild
)

func (k EdgeKind) String() string {
	if k == EdgeChild {
		return "child"
	}
	return "marriage"
}

func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EdgeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "marriage":
		*k = EdgeMarriage
	case "child":
		*k = EdgeChild
	default:
		return fmt.Errorf("unknown edge kind %q", b)
	}
	return nil
}

// Position is the top-left corner of a node's bounding box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a member or marriage vertex. Exactly one of Person and Marriage is
// set, matching Type.
type Node struct {
	ID           string           `json:"id"`
	Type         NodeType         `json:"type"`
	Person       *family.Person   `json:"person,omitempty"`
	Marriage     *family.Marriage `json:"marriage,omitempty"`
	Disconnected bool             `json:"disconnected,omitempty"`
	Placeholder  bool             `json:"placeholder,omitempty"`
	Position     Position         `json:"position"`
}

// Size returns the node's bounding box.
func (n Node) Size() (width, height float64) { return n.Type.Dims() }

// Center returns the centre of the node's bounding box.
func (n Node) Center() Position {
	w, h := n.Size()
	return Position{X: n.Position.X + w/2, Y: n.Position.Y + h/2}
}

// Label is the text shown on the node.
func (n Node) Label() string {
	switch {
	case n.Person != nil:
		return n.Person.FullName()
	case n.Marriage != nil && n.Marriage.Date != "":
		return family.FormatDate(n.Marriage.Date)
	}
	return ""
}

type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Graph is the node/edge list produced by [Build] and positioned by the
// layout engine.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Members returns the member nodes in graph order.
func (g Graph) Members() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == Member {
			out = append(out, n)
		}
	}
	return out
}

// Disconnected returns the member nodes flagged as disconnected.
func (g Graph) Disconnected() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Disconnected {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a copy whose node and edge slices can be modified freely.
// Record payloads are shared.
func (g Graph) Clone() Graph {
	return Graph{
		Nodes: append([]Node(nil), g.Nodes...),
		Edges: append([]Edge(nil), g.Edges...),
	}
}
