package canvas

import (
	"fmt"

	"github.com/journeykit/journeymap/pkg/journey"
)

// Build compiles a journey and its optional resolved parent into a complete
// (nodes, edges) pair with no positions assigned. Positions are filled in by
// the layout adapter.
//
// Build is pure and total: it never fails for missing optional data. A
// requested-but-unresolved parent or a subjourney without a ParentStepID
// degrades by omitting the affected node or edge, never by fabricating
// placeholders or leaving a dangling edge.
//
// The produced graph contains:
//   - exactly one primary node for current
//   - one overview node and one connecting edge for the parent, when
//     current is a subjourney and parent is non-nil
//   - one overview node per subjourney of current, each carrying that
//     subjourney's own phases and steps, with an edge from the referenced
//     step handle on the primary node for those that have a ParentStepID
func Build(current *journey.Journey, parent *journey.Journey) Graph {
	if current == nil {
		return Graph{}
	}

	var g Graph

	if current.IsSubjourney && parent != nil {
		g.Nodes = append(g.Nodes, overviewNode(parent))
		g.Edges = append(g.Edges, Edge{
			ID:           fmt.Sprintf("edge-parent-%s", parent.ID),
			Source:       parent.ID,
			SourceHandle: JourneyBottomHandle(parent.ID),
			Target:       current.ID,
			TargetHandle: HandleParentTop,
			Weight:       2,
		})
	}

	g.Nodes = append(g.Nodes, Node{
		ID:      current.ID,
		Type:    NodePrimary,
		Journey: current,
	})

	for _, sub := range current.Subjourneys {
		if sub == nil {
			continue
		}
		g.Nodes = append(g.Nodes, overviewNode(sub))
		if sub.ParentStepID == "" {
			// Orphaned subjourney: still rendered so the user can
			// navigate to it, but it gets no edge.
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:           fmt.Sprintf("edge-%s-%s", sub.ParentStepID, sub.ID),
			Source:       current.ID,
			SourceHandle: StepHandle(sub.ParentStepID),
			Target:       sub.ID,
			TargetHandle: JourneyTopHandle(sub.ID),
			Weight:       1,
		})
	}

	return g
}

// overviewNode builds a compact summary node for a journey, carrying its
// phases and steps for preview rendering and provisional size hints.
func overviewNode(j *journey.Journey) Node {
	return Node{
		ID:      j.ID,
		Type:    NodeOverview,
		Journey: j,
		Width:   DefaultOverviewWidth,
		Height:  DefaultOverviewHeight,
	}
}
