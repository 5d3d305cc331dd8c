// Package store persists and retrieves journeys.
//
// The [Store] interface is the persistence boundary for the canvas and the
// reorder engine: a journey read that optionally resolves descendant
// structure, and an atomic sibling reorder. Three backends are provided:
//
//   - memory: seedable in-memory store for tests and local use
//   - mongo: MongoDB-backed store for deployments
//   - client: HTTP client against a journeymap API server
//
// All backends treat the ordered-id list of ReorderJourneys as atomic:
// either every sibling receives its new sequence order or none does.
package store

import (
	"context"
	"errors"

	"github.com/journeykit/journeymap/pkg/journey"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a journey does not exist.
	ErrNotFound = errors.New("journey not found")

	// ErrUnknownID is returned by ReorderJourneys when an id in the order
	// does not match a stored journey.
	ErrUnknownID = errors.New("unknown journey id in order")
)

// Store is the persistence collaborator for journeys.
type Store interface {
	// GetJourney fetches a journey by id. When includeDescendants is
	// true the result carries its flattened phases and steps and its
	// subjourneys (each with their own flattened collections); otherwise
	// only the journey record itself is returned.
	GetJourney(ctx context.Context, id string, includeDescendants bool) (*journey.Journey, error)

	// ReorderJourneys atomically applies the given sibling ordering:
	// each journey's sequence order becomes its index in the list.
	ReorderJourneys(ctx context.Context, orderedIDs []string) error
}

// ParentResolver is an optional capability of a Store: resolving the journey
// that owns a given step. The canvas uses it to load the parent of a
// subjourney; callers must tolerate stores without it, omitting the parent
// overview rather than failing.
type ParentResolver interface {
	// FindParent returns the journey containing the step, with descendant
	// structure included. Returns ErrNotFound if no journey owns the step.
	FindParent(ctx context.Context, stepID string) (*journey.Journey, error)
}
