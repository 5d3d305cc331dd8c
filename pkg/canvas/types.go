package canvas

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/journeykit/journeymap/pkg/journey"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types. The set is closed: the builder never emits anything else, and
// the surface registry dispatches on these tags.
const (
	// NodePrimary is the single node representing the journey currently
	// being viewed in full detail. Exactly one per render.
	NodePrimary = "primary"

	// NodeOverview is a compact node summarizing an entire journey, used
	// for parent and child references.
	NodeOverview = "overview"

	// NodePortal is a compact node linking to a journey outside the
	// current hierarchy (cross-journey references).
	NodePortal = "portal"
)

// Default size hints for overview nodes. Their true rendered size is not
// known until the surface has measured them.
const (
	DefaultOverviewWidth  = 280.0
	DefaultOverviewHeight = 120.0
)

// Handle identifiers are derived deterministically from entity ids. The
// naming convention is a contract with the node-rendering layer: node
// components expose anchor points under exactly these names.
const (
	// HandleParentTop is the top anchor of the primary node, target of the
	// edge from a parent-overview node.
	HandleParentTop = "parent-top"
)

// StepHandle returns the handle id for a step's connector on the primary
// node: "step-<id>".
func StepHandle(stepID string) string {
	return "step-" + stepID
}

// JourneyTopHandle returns the top anchor of an overview node:
// "journey-<id>-top".
func JourneyTopHandle(journeyID string) string {
	return fmt.Sprintf("journey-%s-top", journeyID)
}

// JourneyBottomHandle returns the bottom anchor of an overview node:
// "journey-<id>-bottom".
func JourneyBottomHandle(journeyID string) string {
	return fmt.Sprintf("journey-%s-bottom", journeyID)
}

// =============================================================================
// Node / Edge
// =============================================================================

// Position is a point assigned by the layout adapter. Positions are never
// set by the builder or by user interaction.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a canvas node. IDs are unique within one render.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Type     string   `json:"type" bson:"type"`
	Position Position `json:"position" bson:"position"`

	// Width and Height are size hints until real measurement is available.
	// Overview nodes carry defaults; the fit controller must not assume
	// they are accurate.
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`

	// Journey is the node payload. For overview nodes it carries the
	// summarized journey's own phases and steps.
	Journey *journey.Journey `json:"journey,omitempty" bson:"journey,omitempty"`
}

// IsPrimary reports whether the node is the primary node.
func (n *Node) IsPrimary() bool { return n.Type == NodePrimary }

// Label returns the display name for the node.
func (n *Node) Label() string {
	if n.Journey != nil {
		return n.Journey.Name
	}
	return n.ID
}

// Edge is a directed connection between two nodes, optionally anchored to
// named handles on either end.
type Edge struct {
	ID           string  `json:"id" bson:"id"`
	Source       string  `json:"source" bson:"source"`
	SourceHandle string  `json:"source_handle,omitempty" bson:"source_handle,omitempty"`
	Target       string  `json:"target" bson:"target"`
	TargetHandle string  `json:"target_handle,omitempty" bson:"target_handle,omitempty"`
	Weight       float64 `json:"weight,omitempty" bson:"weight,omitempty"`
}

// Graph is a complete (nodes, edges) pair for one render. Every edge's
// endpoints reference nodes present in the same Graph - construction is
// total, so dangling edges cannot occur.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Primary returns the primary node, or nil if the graph is empty.
func (g *Graph) Primary() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].IsPrimary() {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Node returns the node with the given id and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Validate checks internal consistency: unique node ids, a single primary
// node, known node types, and edge endpoints present in the node set.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	primaries := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		switch n.Type {
		case NodePrimary:
			primaries++
		case NodeOverview, NodePortal:
		default:
			return fmt.Errorf("node %q has unknown type %q", n.ID, n.Type)
		}
	}
	if len(g.Nodes) > 0 && primaries != 1 {
		return fmt.Errorf("expected exactly one primary node, got %d", primaries)
	}
	for _, e := range g.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("edge %q references unknown source %q", e.ID, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("edge %q references unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}

// =============================================================================
// Snapshot Serialization
// =============================================================================

// MarshalGraph serializes a graph to pretty-printed JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes JSON bytes and validates the result.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return Graph{}, fmt.Errorf("invalid graph: %w", err)
	}
	return g, nil
}

// WriteGraphFile writes a graph snapshot to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadGraphFile reads a graph snapshot from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalGraph(data)
}
