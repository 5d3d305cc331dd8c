// Package layout positions canvas nodes using a hierarchical top-to-bottom
// arrangement.
//
// The adapter is a pure function over (nodes, edges, size hints): identical
// input always yields identical positions, which stable re-renders and tests
// depend on. Only node positions are assigned - identity, type, and payload
// pass through unchanged.
//
// # Algorithm
//
// Arrange works in four stages:
//
//  1. Group nodes into connected components (treating edges as undirected),
//     packed left to right.
//  2. Assign each node a row via longest-path layering (Kahn's algorithm):
//     sources at row 0, every node one row below its deepest parent.
//  3. Order nodes within each row by parent barycenter to reduce edge
//     crossings, with node-ID tie-breaks for determinism.
//  4. Assign coordinates: rows are stacked top to bottom using the tallest
//     node of each row, and each row is centered within its component.
//
// Nodes without size hints use the option defaults; the caller is expected
// to re-measure and re-frame once real sizes are known.
package layout

import (
	"slices"

	"github.com/journeykit/journeymap/pkg/canvas"
)

// Options controls spacing and fallback sizes.
type Options struct {
	// DefaultWidth and DefaultHeight are used for nodes without size hints.
	DefaultWidth  float64
	DefaultHeight float64

	// GapX is the horizontal gap between nodes in a row.
	GapX float64

	// GapY is the vertical gap between rows.
	GapY float64

	// ComponentGap is the horizontal gap between connected components.
	ComponentGap float64
}

func (o *Options) setDefaults() {
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = 480
	}
	if o.DefaultHeight <= 0 {
		o.DefaultHeight = 320
	}
	if o.GapX <= 0 {
		o.GapX = 80
	}
	if o.GapY <= 0 {
		o.GapY = 140
	}
	if o.ComponentGap <= 0 {
		o.ComponentGap = 160
	}
}

// Arrange positions nodes with default options.
func Arrange(nodes []canvas.Node, edges []canvas.Edge) []canvas.Node {
	return ArrangeWith(nodes, edges, Options{})
}

// ArrangeWith positions nodes using the given options. The input slice is
// not modified; the result contains the same nodes in the same order with
// positions assigned.
func ArrangeWith(nodes []canvas.Node, edges []canvas.Edge, opts Options) []canvas.Node {
	opts.setDefaults()

	out := slices.Clone(nodes)
	if len(out) == 0 {
		return out
	}

	idx := make(map[string]int, len(out))
	for i, n := range out {
		idx[n.ID] = i
	}

	children := make(map[string][]string)
	parents := make(map[string][]string)
	for _, e := range edges {
		if _, ok := idx[e.Source]; !ok {
			continue
		}
		if _, ok := idx[e.Target]; !ok {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		parents[e.Target] = append(parents[e.Target], e.Source)
	}

	var offsetX float64
	for _, comp := range components(out, children, parents) {
		rows := assignRows(comp, children, parents)
		orderRows(rows, parents)
		width := placeComponent(out, idx, rows, offsetX, opts)
		offsetX += width + opts.ComponentGap
	}

	return out
}

// components groups node ids into connected components, ordered by first
// appearance in the input so packing is deterministic.
func components(nodes []canvas.Node, children, parents map[string][]string) [][]string {
	seen := make(map[string]bool, len(nodes))
	var comps [][]string

	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		var comp []string
		queue := []string{n.ID}
		seen[n.ID] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			for _, next := range append(slices.Clone(children[id]), parents[id]...) {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// assignRows computes layer assignments for one component using longest-path
// layering via topological traversal. Every node lands one row below its
// deepest parent; sources sit at row 0. Returns the rows top to bottom, each
// sorted by node ID as the initial ordering.
func assignRows(comp []string, children, parents map[string][]string) [][]string {
	inComp := make(map[string]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}

	inDegree := make(map[string]int, len(comp))
	rows := make(map[string]int, len(comp))
	var queue []string
	for _, id := range comp {
		d := 0
		for _, p := range parents[id] {
			if inComp[p] {
				d++
			}
		}
		inDegree[id] = d
		if d == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if !inComp[child] {
				continue
			}
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	maxRow := 0
	for _, r := range rows {
		maxRow = max(maxRow, r)
	}
	byRow := make([][]string, maxRow+1)
	for _, id := range comp {
		r := rows[id]
		byRow[r] = append(byRow[r], id)
	}
	for _, row := range byRow {
		slices.Sort(row)
	}
	return byRow
}

// orderRows performs a single downward barycenter sweep: each row after the
// first is reordered by the average position of its parents in the row
// above. Nodes without parents keep their relative position. Ties fall back
// to the previous ordering, which is itself ID-sorted, so the result is
// deterministic.
func orderRows(rows [][]string, parents map[string][]string) {
	for r := 1; r < len(rows); r++ {
		above := make(map[string]int, len(rows[r-1]))
		for i, id := range rows[r-1] {
			above[id] = i
		}

		prev := make(map[string]int, len(rows[r]))
		for i, id := range rows[r] {
			prev[id] = i
		}

		bary := func(id string) float64 {
			sum, count := 0, 0
			for _, p := range parents[id] {
				if pos, ok := above[p]; ok {
					sum += pos
					count++
				}
			}
			if count == 0 {
				return float64(prev[id])
			}
			return float64(sum) / float64(count)
		}

		slices.SortStableFunc(rows[r], func(a, b string) int {
			ba, bb := bary(a), bary(b)
			switch {
			case ba < bb:
				return -1
			case ba > bb:
				return 1
			default:
				return prev[a] - prev[b]
			}
		})
	}
}

// placeComponent assigns coordinates for one component starting at offsetX
// and returns the component's width. Rows are stacked top to bottom and each
// row is horizontally centered within the component.
func placeComponent(nodes []canvas.Node, idx map[string]int, rows [][]string, offsetX float64, opts Options) float64 {
	size := func(id string) (w, h float64) {
		n := nodes[idx[id]]
		w, h = n.Width, n.Height
		if w <= 0 {
			w = opts.DefaultWidth
		}
		if h <= 0 {
			h = opts.DefaultHeight
		}
		return w, h
	}

	rowWidths := make([]float64, len(rows))
	rowHeights := make([]float64, len(rows))
	compWidth := 0.0
	for r, row := range rows {
		var w, h float64
		for i, id := range row {
			nw, nh := size(id)
			if i > 0 {
				w += opts.GapX
			}
			w += nw
			h = max(h, nh)
		}
		rowWidths[r] = w
		rowHeights[r] = h
		compWidth = max(compWidth, w)
	}

	y := 0.0
	for r, row := range rows {
		x := offsetX + (compWidth-rowWidths[r])/2
		for _, id := range row {
			nw, _ := size(id)
			nodes[idx[id]].Position = canvas.Position{X: x, Y: y}
			x += nw + opts.GapX
		}
		y += rowHeights[r] + opts.GapY
	}

	return compWidth
}
