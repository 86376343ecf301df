package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stamboom/pkg/tree"
)

// MarshalGraph converts a tree graph to JSON bytes. Nodes and edges keep
// their graph order, so equal graphs marshal to equal bytes.
func MarshalGraph(g tree.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a tree graph to a JSON file.
func WriteGraphFile(g tree.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a tree graph as JSON to w.
func WriteGraph(g tree.Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a tree graph from a JSON file.
func ReadGraphFile(path string) (tree.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return tree.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON tree graph from r.
func ReadGraph(r io.Reader) (tree.Graph, error) {
	return readGraphFrom(r)
}

// UnmarshalGraph decodes a JSON tree graph.
func UnmarshalGraph(data []byte) (tree.Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

func writeGraphTo(g tree.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (tree.Graph, error) {
	var g tree.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return tree.Graph{}, fmt.Errorf("decode: %w", err)
	}
	for i, n := range g.Nodes {
		if n.ID == "" {
			return tree.Graph{}, fmt.Errorf("node %d: missing id", i)
		}
	}
	return g, nil
}
