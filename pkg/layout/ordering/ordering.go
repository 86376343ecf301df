// Package ordering decides the left-to-right order of nodes within each row
// of a layered family graph.
//
// Fewer edge crossings make a family tree far easier to read: partners end up
// next to each other and siblings under their parents' marriage. Finding the
// minimum is NP-hard, so the orderers here are heuristics:
//
//   - [Barycentric] sweeps rows up and down, sorting each by the mean
//     position of its neighbours, then swaps adjacent pairs while that
//     removes crossings.
//   - [Exhaustive] runs another orderer and then tries every permutation of
//     each short row, keeping any that lowers the local crossing count.
//
// All orderers are deterministic for a given graph.
package ordering

import (
	"context"
	"strings"

	"github.com/matzehuels/stamboom/pkg/dag"
)

// Orderer computes row orders for a layered graph.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// ContextOrderer is an Orderer that stops early when ctx is done, returning
// the best order found so far together with ctx's error.
type ContextOrderer interface {
	Orderer
	OrderRowsContext(ctx context.Context, g *dag.DAG) (map[int][]string, error)
}

// Quality selects an orderer preset.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
)

// Default settings for the presets.
const (
	DefaultPasses     = 24
	DefaultMaxRowSize = 6
)

// ParseQuality maps "fast" and "balanced" to a Quality. Anything else
// reports false.
func ParseQuality(s string) (Quality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return QualityFast, true
	case "balanced", "":
		return QualityBalanced, true
	}
	return QualityBalanced, false
}

func (q Quality) String() string {
	if q == QualityFast {
		return "fast"
	}
	return "balanced"
}

// ForQuality returns the orderer for a preset.
func ForQuality(q Quality) ContextOrderer {
	if q == QualityFast {
		return Barycentric{Passes: DefaultPasses / 2}
	}
	return Exhaustive{Base: Barycentric{Passes: DefaultPasses}, MaxRowSize: DefaultMaxRowSize}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = append([]string(nil), ids...)
	}
	return out
}
