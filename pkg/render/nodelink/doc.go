// Package nodelink renders positioned family trees as node-link diagrams.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// # Positions
//
// The layout engine works in pixels with y growing downwards and positions
// at the top-left corner of each box. [ToDOT] converts to Graphviz points
// (y up, node centres) and pins every node with pos="x,y!". Rendering uses
// the neato engine with inputscale=72, so Graphviz only routes the edges
// and never moves a node.
//
// # Styling
//
// Members are rounded boxes, marriages are ellipses. Placeholder spouses
// are dashed and disconnected members are shaded so they stand out in the
// grid at the right margin.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
