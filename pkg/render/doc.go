// Package render groups the renderers for positioned family trees.
//
// The [nodelink] subpackage turns a positioned [tree.Graph] into Graphviz
// DOT with every node pinned at the position the layout engine chose, and
// renders that DOT to SVG or PNG in-process.
//
//	dot := nodelink.ToDOT(positioned, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// [nodelink]: github.com/matzehuels/stamboom/pkg/render/nodelink
// [tree.Graph]: github.com/matzehuels/stamboom/pkg/tree.Graph
package render
