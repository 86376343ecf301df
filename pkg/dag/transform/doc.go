// Package transform prepares a [dag.DAG] for layered drawing.
//
// Family graphs arrive as plain member, marriage and child edges. Before the
// nodes can be placed on rows every edge must point downward and span exactly
// one row. The passes in this package get the graph there:
//
//   - [Components] splits the graph into weakly connected pieces that are
//     laid out independently.
//   - [BreakCycles] drops back edges found by a depth-first search. Clean
//     family data is acyclic, but hand-edited records sometimes list a person
//     as a child of their own marriage.
//   - [AssignLayers] ranks nodes by longest path so partners sit above their
//     marriage and children below it.
//   - [Subdivide] replaces edges that skip rows with chains of dummy nodes.
//
// [Normalize] runs the last three in order and reports what it changed.
package transform
