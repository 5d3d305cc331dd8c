package layout

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/journeykit/journeymap/pkg/canvas"
)

// ToDOT converts a canvas graph to Graphviz DOT format for SVG export.
// Node styling follows the node type: the primary node is drawn bold, the
// overview nodes rounded and filled, and portal nodes dashed. The generated
// DOT uses top-to-bottom layout matching the canvas orientation.
func ToDOT(g canvas.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph journey {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.25,0.15\"];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", n.ID, n.Label(), nodeAttrs(n))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := ""
		if e.Weight > 1 {
			attrs = fmt.Sprintf(" [penwidth=%.1f]", e.Weight)
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.Source, e.Target, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n canvas.Node) string {
	switch n.Type {
	case canvas.NodePrimary:
		return `, style="rounded,filled,bold", fillcolor=lightyellow`
	case canvas.NodePortal:
		return `, style="rounded,filled,dashed", fillcolor=lightgrey`
	default:
		return ""
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
