// Package dag provides the layered directed graph the family-tree layout
// engine works on.
//
// # Overview
//
// A family tree is drawn top to bottom: partners sit above the marriage node
// that joins them, and the marriage sits above its children. This package
// stores that structure as nodes grouped into horizontal rows (ranks) with
// directed edges pointing downward.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "1", Width: 284, Height: 144})
//	g.AddNode(dag.Node{ID: "marriage-1-2", Width: 172, Height: 100})
//	g.AddEdge(dag.Edge{From: "1", To: "marriage-1-2"})
//
// Rows are usually assigned later by the transform subpackage. After
// subdivision every edge connects consecutive rows, which [DAG.Validate]
// checks.
//
// # Node Kinds
//
//   - [NodeKindRegular]: a member or marriage from the family graph
//   - [NodeKindDummy]: a zero-size bend point inserted to break an edge that
//     spans several ranks
//
// Dummy nodes keep the [Node.MasterID] of the edge source they were created
// for so renderers can merge them back into a single polyline.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V), which makes them cheap enough to score every sweep of
// the ordering heuristic.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The layout engine builds a
// fresh graph per run, so no sharing is needed.
package dag
