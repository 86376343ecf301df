package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// Output formats supported by [Render].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

const pointsPerInch = 72.0

// Options configures diagram generation.
type Options struct {
	// Detailed adds birth and death dates to member labels.
	Detailed bool
	// Title is drawn above the diagram when set.
	Title string
}

// ToDOT converts a positioned graph to Graphviz DOT.
func ToDOT(g tree.Graph, opts Options) string {
	height := 0.0
	for _, n := range g.Nodes {
		_, h := n.Size()
		height = max(height, n.Position.Y+h)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=32;\n", opts.Title)
	}
	buf.WriteString("  node [fixedsize=true, style=\"rounded,filled\", fillcolor=white, fontsize=18];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, height, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := []string{fmt.Sprintf("id=%q", e.ID)}
		if e.Kind == tree.EdgeMarriage {
			attrs = append(attrs, "arrowhead=none", "color=\"#8a6d3b\"")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n tree.Node, height float64, detailed bool) []string {
	w, h := n.Size()
	c := n.Center()
	attrs := []string{
		fmt.Sprintf("label=%q", label(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(c.X), fmtFloat(height-c.Y)),
		fmt.Sprintf("width=%s", fmtFloat(w/pointsPerInch)),
		fmt.Sprintf("height=%s", fmtFloat(h/pointsPerInch)),
	}
	switch {
	case n.Type == tree.Marriage:
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#f5ecd7\"")
	default:
		attrs = append(attrs, "shape=box")
	}
	if n.Placeholder {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey40")
	}
	if n.Disconnected {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

func label(n tree.Node, detailed bool) string {
	if n.Person == nil || !detailed {
		return n.Label()
	}
	var dates []string
	if n.Person.BirthDate != "" {
		dates = append(dates, "* "+family.FormatDate(n.Person.BirthDate))
	}
	if n.Person.DeathDate != "" {
		dates = append(dates, "+ "+family.FormatDate(n.Person.DeathDate))
	}
	if len(dates) == 0 {
		return n.Label()
	}
	return n.Label() + "\n" + strings.Join(dates, "\n")
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Render draws DOT produced by [ToDOT] as SVG or PNG. Nodes stay at their
// pinned positions.
func Render(ctx context.Context, dot string, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG is Render with [FormatSVG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the SVG scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
