package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// Layout is the render-oriented export of a positioned graph.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Box   `json:"nodes"`
	Edges  []Edge  `json:"edges"`
}

// Box is a positioned node. X and Y are the top-left corner.
type Box struct {
	ID           string           `json:"id"`
	Type         tree.NodeType    `json:"type"`
	Label        string           `json:"label,omitempty"`
	X            float64          `json:"x"`
	Y            float64          `json:"y"`
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	Disconnected bool             `json:"disconnected,omitempty"`
	Placeholder  bool             `json:"placeholder,omitempty"`
	Person       *family.Person   `json:"person,omitempty"`
	Marriage     *family.Marriage `json:"marriage,omitempty"`
}

// Edge is a directed link between two boxes.
type Edge struct {
	ID     string        `json:"id"`
	Source string        `json:"source"`
	Target string        `json:"target"`
	Kind   tree.EdgeKind `json:"kind"`
}

// FromTree exports a positioned graph. Width and Height are the extent of
// the boxes measured from the origin.
func FromTree(g tree.Graph) Layout {
	l := Layout{
		Nodes: make([]Box, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		w, h := n.Size()
		l.Nodes[i] = Box{
			ID:           n.ID,
			Type:         n.Type,
			Label:        n.Label(),
			X:            n.Position.X,
			Y:            n.Position.Y,
			Width:        w,
			Height:       h,
			Disconnected: n.Disconnected,
			Placeholder:  n.Placeholder,
			Person:       n.Person,
			Marriage:     n.Marriage,
		}
		l.Width = max(l.Width, n.Position.X+w)
		l.Height = max(l.Height, n.Position.Y+h)
	}
	for i, e := range g.Edges {
		l.Edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: e.Kind}
	}
	return l
}

// ToTree converts the export back into a positioned graph.
func (l Layout) ToTree() tree.Graph {
	g := tree.Graph{
		Nodes: make([]tree.Node, len(l.Nodes)),
		Edges: make([]tree.Edge, len(l.Edges)),
	}
	for i, b := range l.Nodes {
		g.Nodes[i] = tree.Node{
			ID:           b.ID,
			Type:         b.Type,
			Person:       b.Person,
			Marriage:     b.Marriage,
			Disconnected: b.Disconnected,
			Placeholder:  b.Placeholder,
			Position:     tree.Position{X: b.X, Y: b.Y},
		}
	}
	for i, e := range l.Edges {
		g.Edges[i] = tree.Edge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: e.Kind}
	}
	return g
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	for i, b := range l.Nodes {
		if b.ID == "" {
			return Layout{}, fmt.Errorf("layout node %d: missing id", i)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
