// Package layout positions a family graph in top-to-bottom generational
// layers.
//
// [Compute] runs a Sugiyama style pipeline over every connected component:
//
//  1. break cycles left by inconsistent data
//  2. rank nodes by longest path, so partners sit above their marriage and
//     children below it
//  3. split edges that skip ranks with zero-size dummy nodes
//  4. order each rank to reduce crossings (see the ordering package)
//  5. assign x by packing each rank and pulling nodes towards the median of
//     their neighbours without letting boxes overlap
//
// Components are placed left to right. Nodes without any edges, typically
// disconnected people, are gridded to the right of the last component.
//
// Every emitted node carries the top-left corner of its bounding box. Edges
// that reference unknown nodes are dropped from the output and reported in
// [Result.Skipped].
package layout
