package canvas

import (
	"testing"

	"github.com/journeykit/journeymap/pkg/journey"
)

func subjourney(id, parentStepID string, order int) *journey.Journey {
	return &journey.Journey{
		ID:            id,
		Name:          "sub " + id,
		IsSubjourney:  parentStepID != "",
		ParentStepID:  parentStepID,
		SequenceOrder: order,
	}
}

func TestBuildTopLevelJourney(t *testing.T) {
	root := &journey.Journey{ID: "root", Name: "Onboarding"}

	g := Build(root, nil)

	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}

	primaries := 0
	for _, n := range g.Nodes {
		if n.Type == NodePrimary {
			primaries++
		}
		if n.Type == NodeOverview {
			t.Errorf("top-level journey with no subjourneys should have no overview nodes, got %s", n.ID)
		}
	}
	if primaries != 1 {
		t.Errorf("expected exactly one primary node, got %d", primaries)
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges, got %d", len(g.Edges))
	}
}

func TestBuildSubjourneyWithParent(t *testing.T) {
	parent := &journey.Journey{ID: "parent", Name: "Parent"}
	current := subjourney("child", "step-in-parent", 0)

	g := Build(current, parent)

	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}

	overviews := 0
	for _, n := range g.Nodes {
		if n.Type == NodeOverview {
			overviews++
			if n.ID != "parent" {
				t.Errorf("unexpected overview node %s", n.ID)
			}
			if n.Width != DefaultOverviewWidth || n.Height != DefaultOverviewHeight {
				t.Errorf("overview node missing size hints: %v x %v", n.Width, n.Height)
			}
		}
	}
	if overviews != 1 {
		t.Fatalf("expected exactly one parent overview node, got %d", overviews)
	}

	if len(g.Edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Source != "parent" || e.Target != "child" {
		t.Errorf("edge endpoints wrong: %s -> %s", e.Source, e.Target)
	}
	if e.SourceHandle != JourneyBottomHandle("parent") {
		t.Errorf("source handle wrong: %s", e.SourceHandle)
	}
	if e.TargetHandle != HandleParentTop {
		t.Errorf("target handle should be %q, got %q", HandleParentTop, e.TargetHandle)
	}
	if e.Weight != 2 {
		t.Errorf("parent edge weight should be 2, got %v", e.Weight)
	}
}

func TestBuildSubjourneyWithoutResolvedParent(t *testing.T) {
	// Parent lookup failed or is still pending: the parent overview and its
	// edge are omitted, nothing else changes.
	current := subjourney("child", "step-in-parent", 0)

	g := Build(current, nil)

	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}
	if len(g.Nodes) != 1 {
		t.Fatalf("expected only the primary node, got %d nodes", len(g.Nodes))
	}
	if g.Nodes[0].Type != NodePrimary {
		t.Errorf("expected primary node, got %s", g.Nodes[0].Type)
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges, got %d", len(g.Edges))
	}
}

func TestBuildParentIgnoredForTopLevel(t *testing.T) {
	// A resolved parent for a non-subjourney is ignored.
	root := &journey.Journey{ID: "root", Name: "Root"}
	stray := &journey.Journey{ID: "stray", Name: "Stray"}

	g := Build(root, stray)

	if len(g.Nodes) != 1 || g.Nodes[0].ID != "root" {
		t.Errorf("top-level journey should ignore parent argument: %+v", g.Nodes)
	}
}

func TestBuildSubjourneyOverviews(t *testing.T) {
	root := &journey.Journey{
		ID:   "root",
		Name: "Root",
		AllSteps: []journey.Step{
			{ID: "s1", PhaseID: "p1", Name: "Step 1"},
			{ID: "s2", PhaseID: "p1", Name: "Step 2"},
		},
		Subjourneys: []*journey.Journey{
			subjourney("sub-a", "s1", 0),
			subjourney("sub-b", "s2", 1),
			// Orphan: rendered but not connected.
			{ID: "sub-c", Name: "sub sub-c", IsSubjourney: true},
		},
	}

	g := Build(root, nil)

	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}

	overviews := 0
	for _, n := range g.Nodes {
		if n.Type == NodeOverview {
			overviews++
		}
	}
	if overviews != len(root.Subjourneys) {
		t.Errorf("overview count %d should equal subjourney count %d", overviews, len(root.Subjourneys))
	}

	// Edges only for subjourneys with a parent step reference.
	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(g.Edges))
	}
	for _, e := range g.Edges {
		if e.Source != "root" {
			t.Errorf("subjourney edge source should be the primary node, got %s", e.Source)
		}
		if e.Target == "sub-c" {
			t.Error("orphaned subjourney must not get an edge")
		}
	}

	e := g.Edges[0]
	if e.SourceHandle != StepHandle("s1") {
		t.Errorf("source handle should be %q, got %q", StepHandle("s1"), e.SourceHandle)
	}
	if e.TargetHandle != JourneyTopHandle("sub-a") {
		t.Errorf("target handle should be %q, got %q", JourneyTopHandle("sub-a"), e.TargetHandle)
	}
}

func TestBuildNilSubjourneyEntries(t *testing.T) {
	root := &journey.Journey{
		ID:          "root",
		Subjourneys: []*journey.Journey{nil, subjourney("sub-a", "", 0)},
	}

	g := Build(root, nil)

	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("nil subjourney entries should be skipped, got %d nodes", len(g.Nodes))
	}
}

func TestBuildNilJourney(t *testing.T) {
	g := Build(nil, nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("nil journey should produce an empty graph")
	}
}

func TestBuildIsPure(t *testing.T) {
	root := &journey.Journey{
		ID:          "root",
		Subjourneys: []*journey.Journey{subjourney("sub-a", "s1", 0)},
	}

	g1 := Build(root, nil)
	g2 := Build(root, nil)

	if len(g1.Nodes) != len(g2.Nodes) || len(g1.Edges) != len(g2.Edges) {
		t.Fatal("repeated builds should produce identical shapes")
	}
	for i := range g1.Nodes {
		if g1.Nodes[i].ID != g2.Nodes[i].ID || g1.Nodes[i].Type != g2.Nodes[i].Type {
			t.Errorf("node %d differs across builds", i)
		}
	}
}
