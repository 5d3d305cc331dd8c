package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/observability"
	"github.com/journeykit/journeymap/pkg/store"
)

// Surface is a concrete rendering backend. It receives positioned graphs,
// reports rendered node sizes back through Measurer, and frames the view
// through Camera.
type Surface interface {
	Measurer
	Camera

	// SetGraph replaces the surface's displayed graph.
	SetGraph(g Graph)
}

// Layouter assigns positions to nodes. It must be pure: position-only
// mutation, deterministic for identical input including size hints.
type Layouter func(nodes []Node, edges []Edge) []Node

// Navigator receives node-level click routing. Clicking an overview or
// portal node navigates to the journey it represents.
type Navigator func(journeyID string)

// Renderer draws nodes of one type on the surface.
type Renderer interface {
	RenderNode(ctx context.Context, n Node) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, n Node) error

// RenderNode calls the function.
func (f RendererFunc) RenderNode(ctx context.Context, n Node) error { return f(ctx, n) }

// Canvas is the composition root for one mounted canvas. It owns the
// build/layout pipeline, the fit controller, the renderer registry, and
// the selection state, and routes interaction events.
//
// Camera and viewport state belong to one Canvas instance. There is no
// process-wide canvas; independent canvases get independent controllers.
type Canvas struct {
	store     store.Store
	surface   Surface
	layouter  Layouter
	navigate  Navigator
	renderers map[string]Renderer
	logger    *log.Logger
	fit       *FitController
	fitOpts   []FitOption

	// pubMu serializes the generation re-check with the surface publish, so
	// a superseded SetJourney can never push its graph after a newer one.
	pubMu sync.Mutex

	mu        sync.Mutex
	gen       int
	graph     Graph
	journeyID string
	selected  string
}

// CanvasOption customizes a Canvas.
type CanvasOption func(*Canvas)

// WithNavigator sets the node-click navigation callback.
func WithNavigator(nav Navigator) CanvasOption {
	return func(c *Canvas) { c.navigate = nav }
}

// WithRenderer registers a renderer for one node type.
func WithRenderer(nodeType string, r Renderer) CanvasOption {
	return func(c *Canvas) { c.renderers[nodeType] = r }
}

// WithLogger sets the canvas logger.
func WithLogger(logger *log.Logger) CanvasOption {
	return func(c *Canvas) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFitOptions forwards options to the internal fit controller.
func WithFitOptions(opts ...FitOption) CanvasOption {
	return func(c *Canvas) { c.fitOpts = append(c.fitOpts, opts...) }
}

// NewCanvas creates a composition root bound to a store and a surface.
func NewCanvas(st store.Store, surface Surface, layouter Layouter, opts ...CanvasOption) (*Canvas, error) {
	if st == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "store is required")
	}
	if surface == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "surface is required")
	}
	if layouter == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "layouter is required")
	}

	c := &Canvas{
		store:     st,
		surface:   surface,
		layouter:  layouter,
		renderers: make(map[string]Renderer),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fit = NewFitController(surface, surface, c.logger, c.fitOpts...)
	return c, nil
}

// SetJourney loads a journey and rebuilds the canvas around it. The graph is
// recomputed from scratch; nothing from the previous journey survives. A
// concurrent SetJourney supersedes this one, and the superseded result is
// discarded rather than applied.
func (c *Canvas) SetJourney(ctx context.Context, journeyID string) error {
	if err := apperrors.ValidateID(journeyID); err != nil {
		return err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	start := time.Now()
	current, err := c.store.GetJourney(ctx, journeyID, true)
	observability.Store().OnFetch(ctx, journeyID, time.Since(start), err)
	if err != nil {
		// Fetch failure leaves the previous canvas in place. The caller
		// decides whether to show an empty state.
		c.logger.Warn("journey fetch failed", "journey", journeyID, "err", err)
		return err
	}

	parent := c.resolveParent(ctx, current)

	g := Build(current, parent)
	observability.Canvas().OnBuild(journeyID, len(g.Nodes), len(g.Edges))

	layoutStart := time.Now()
	g.Nodes = c.layouter(g.Nodes, g.Edges)
	observability.Canvas().OnLayout(len(g.Nodes), time.Since(layoutStart))

	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	if gen != c.gen {
		// A newer SetJourney ran while we were fetching.
		c.mu.Unlock()
		return nil
	}
	c.graph = g
	c.journeyID = journeyID
	c.selected = ""
	c.mu.Unlock()

	c.surface.SetGraph(g)
	c.fit.NodesChanged(g.Nodes)
	return nil
}

// resolveParent fetches the parent journey of a subjourney when the store can
// locate it. Any failure degrades to a nil parent, which the builder tolerates
// by omitting the parent overview.
func (c *Canvas) resolveParent(ctx context.Context, current *journey.Journey) *journey.Journey {
	if current == nil || !current.IsSubjourney || current.ParentStepID == "" {
		return nil
	}
	resolver, ok := c.store.(store.ParentResolver)
	if !ok {
		return nil
	}
	parent, err := resolver.FindParent(ctx, current.ParentStepID)
	if err != nil {
		c.logger.Debug("parent journey unresolved", "journey", current.ID, "err", err)
		return nil
	}
	return parent
}

// Render draws every node through the registered renderer for its type.
// An unregistered type is an error: the builder emits a closed set of tags,
// so a gap in the registry is a wiring mistake.
func (c *Canvas) Render(ctx context.Context) error {
	c.mu.Lock()
	g := c.graph
	c.mu.Unlock()

	for i := range g.Nodes {
		r, ok := c.renderers[g.Nodes[i].Type]
		if !ok {
			return apperrors.New(apperrors.ErrCodeUnsupported, "no renderer for node type %q", g.Nodes[i].Type)
		}
		if err := r.RenderNode(ctx, g.Nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// Graph returns a copy of the current positioned graph.
func (c *Canvas) Graph() Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := Graph{
		Nodes: make([]Node, len(c.graph.Nodes)),
		Edges: make([]Edge, len(c.graph.Edges)),
	}
	copy(g.Nodes, c.graph.Nodes)
	copy(g.Edges, c.graph.Edges)
	return g
}

// JourneyID returns the id of the currently loaded journey, or "".
func (c *Canvas) JourneyID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.journeyID
}

// Selection returns the selected node id, or "" when nothing is selected.
func (c *Canvas) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// PaneClick handles a click on empty canvas area and clears any selection.
func (c *Canvas) PaneClick() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// NodeClick handles a click on a node. The node becomes selected; overview
// and portal nodes additionally route to the navigation callback with the
// journey they represent.
func (c *Canvas) NodeClick(nodeID string) {
	c.mu.Lock()
	ptr, ok := c.graph.Node(nodeID)
	if !ok {
		c.mu.Unlock()
		return
	}
	n := *ptr
	c.selected = nodeID
	nav := c.navigate
	c.mu.Unlock()

	if nav == nil || n.Type == NodePrimary {
		return
	}
	if n.Journey != nil {
		nav(n.Journey.ID)
	}
}

// Close tears the canvas down, cancelling any in-flight fit poll.
func (c *Canvas) Close() {
	c.fit.Close()
}
