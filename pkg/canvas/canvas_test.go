package canvas

import (
	"context"
	"testing"
	"time"

	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/store"
)

// identityLayout is a layouter that spreads nodes on a diagonal so tests can
// tell layout ran without depending on the real algorithm.
func identityLayout(nodes []Node, edges []Edge) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].Position = Position{X: float64(i * 10), Y: float64(i * 10)}
	}
	return out
}

func canvasFixtureStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	st.Put(&journey.Journey{
		ID:   "root",
		Name: "Root",
		AllSteps: []journey.Step{
			{ID: "s1", PhaseID: "p1", Name: "Step 1"},
		},
	})
	st.Put(&journey.Journey{
		ID:           "child",
		Name:         "Child",
		IsSubjourney: true,
		ParentStepID: "s1",
	})
	return st
}

func newTestCanvas(t *testing.T, st store.Store, opts ...CanvasOption) (*Canvas, *fakeSurface) {
	t.Helper()
	s := &fakeSurface{readyAt: 1}
	opts = append(opts, WithFitOptions(WithFrameInterval(time.Millisecond)))
	c, err := NewCanvas(st, s, identityLayout, opts...)
	if err != nil {
		t.Fatalf("NewCanvas error: %v", err)
	}
	t.Cleanup(c.Close)
	return c, s
}

func TestNewCanvasValidation(t *testing.T) {
	st := store.NewMemoryStore()
	s := &fakeSurface{}

	if _, err := NewCanvas(nil, s, identityLayout); err == nil {
		t.Error("nil store should be rejected")
	}
	if _, err := NewCanvas(st, nil, identityLayout); err == nil {
		t.Error("nil surface should be rejected")
	}
	if _, err := NewCanvas(st, s, nil); err == nil {
		t.Error("nil layouter should be rejected")
	}
}

func TestCanvasSetJourney(t *testing.T) {
	c, s := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}

	g := c.Graph()
	if err := g.Validate(); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}
	if p := g.Primary(); p == nil || p.ID != "root" {
		t.Fatalf("expected root as primary, got %+v", p)
	}
	// Layout ran: the second node has a nonzero position.
	if len(g.Nodes) < 2 || g.Nodes[1].Position.X == 0 {
		t.Error("layout positions were not applied")
	}
	if c.JourneyID() != "root" {
		t.Errorf("JourneyID = %q", c.JourneyID())
	}

	// Fit was scheduled against the new node set.
	waitFor(t, func() bool {
		_, fits := s.snapshot()
		return len(fits) == 1 && fits[0] == "root"
	})
}

func TestCanvasSetJourneyResolvesParent(t *testing.T) {
	c, _ := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "child"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}

	g := c.Graph()
	found := false
	for _, n := range g.Nodes {
		if n.Type == NodeOverview && n.ID == "root" {
			found = true
		}
	}
	if !found {
		t.Error("parent overview node missing for subjourney")
	}
}

func TestCanvasSetJourneyFetchFailure(t *testing.T) {
	c, _ := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}
	before := c.Graph()

	if err := c.SetJourney(context.Background(), "missing"); err == nil {
		t.Fatal("expected fetch error")
	}

	// The previous canvas stays in place.
	after := c.Graph()
	if len(after.Nodes) != len(before.Nodes) || c.JourneyID() != "root" {
		t.Error("failed fetch must not disturb the current canvas")
	}
}

func TestCanvasSetJourneyPublishOrder(t *testing.T) {
	gate := make(chan struct{})
	s := &fakeSurface{readyAt: 1, graphGate: gate}
	c, err := NewCanvas(canvasFixtureStore(t), s, identityLayout,
		WithFitOptions(WithFrameInterval(time.Millisecond)))
	if err != nil {
		t.Fatalf("NewCanvas error: %v", err)
	}
	t.Cleanup(c.Close)

	first := make(chan error, 1)
	go func() { first <- c.SetJourney(context.Background(), "root") }()

	// Wait until the first publish is held open inside the surface.
	waitFor(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.graphEntered == 1
	})

	second := make(chan error, 1)
	go func() { second <- c.SetJourney(context.Background(), "child") }()

	// The newer call must queue behind the held publish, not slip past it.
	time.Sleep(10 * time.Millisecond)
	if n := len(s.publishedGraphs()); n != 0 {
		t.Fatalf("%d graphs published while the first publish was held", n)
	}

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first SetJourney: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second SetJourney: %v", err)
	}

	// The newest journey's graph wins on the surface.
	graphs := s.publishedGraphs()
	if len(graphs) == 0 {
		t.Fatal("no graphs published")
	}
	last := graphs[len(graphs)-1]
	if p := last.Primary(); p == nil || p.ID != "child" {
		t.Fatalf("surface shows a superseded graph, primary = %+v", p)
	}
	if c.JourneyID() != "child" {
		t.Errorf("JourneyID = %q, want child", c.JourneyID())
	}
}

func TestCanvasSelection(t *testing.T) {
	var navigated []string
	c, _ := newTestCanvas(t, canvasFixtureStore(t),
		WithNavigator(func(id string) { navigated = append(navigated, id) }))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}

	// Clicking the primary node selects it but does not navigate.
	c.NodeClick("root")
	if c.Selection() != "root" {
		t.Errorf("Selection = %q", c.Selection())
	}
	if len(navigated) != 0 {
		t.Errorf("primary click must not navigate, got %v", navigated)
	}

	// Clicking an overview node navigates to its journey.
	c.NodeClick("child")
	if len(navigated) != 1 || navigated[0] != "child" {
		t.Errorf("expected navigation to child, got %v", navigated)
	}

	// Pane click clears the selection.
	c.PaneClick()
	if c.Selection() != "" {
		t.Errorf("pane click should clear selection, got %q", c.Selection())
	}

	// Unknown node ids are ignored.
	c.NodeClick("nope")
	if c.Selection() != "" {
		t.Error("unknown node click should not select")
	}
}

func TestCanvasSelectionClearedOnSetJourney(t *testing.T) {
	c, _ := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}
	c.NodeClick("root")

	if err := c.SetJourney(context.Background(), "child"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}
	if c.Selection() != "" {
		t.Error("selection should reset on journey change")
	}
}

func TestCanvasRender(t *testing.T) {
	var rendered []string
	collect := RendererFunc(func(_ context.Context, n Node) error {
		rendered = append(rendered, n.ID)
		return nil
	})

	c, _ := newTestCanvas(t, canvasFixtureStore(t),
		WithRenderer(NodePrimary, collect),
		WithRenderer(NodeOverview, collect),
		WithRenderer(NodePortal, collect))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}
	if err := c.Render(context.Background()); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(rendered) != 2 {
		t.Errorf("expected 2 rendered nodes, got %v", rendered)
	}
}

func TestCanvasRenderMissingRenderer(t *testing.T) {
	c, _ := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}
	if err := c.Render(context.Background()); err == nil {
		t.Error("expected error for unregistered node type")
	}
}

func TestCanvasGraphIsCopy(t *testing.T) {
	c, _ := newTestCanvas(t, canvasFixtureStore(t))

	if err := c.SetJourney(context.Background(), "root"); err != nil {
		t.Fatalf("SetJourney error: %v", err)
	}

	g := c.Graph()
	g.Nodes[0].ID = "mutated"

	if c.Graph().Nodes[0].ID == "mutated" {
		t.Error("Graph() must return a copy")
	}
}
