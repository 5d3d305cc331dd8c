// Package cache provides caching for journey structures and rendered
// canvas artifacts.
//
// Three backends implement the [Cache] interface:
//
//   - [FileCache]: file-based cache for CLI usage
//   - [RedisCache]: Redis-backed cache for server deployments
//   - [NullCache]: no-op cache for tests and disabled caching
//
// Keys are generated through a [Keyer] so that every caller hashes the same
// inputs the same way. Cache reads and writes emit observability hooks.
package cache

import (
	"context"
	"time"
)

// Default TTLs per key type. Structures change as users edit, so they get a
// short TTL; rendered artifacts are derived purely from a graph hash and can
// live longer.
const (
	TTLStructure = 5 * time.Minute
	TTLArtifact  = 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the journey domain.
type Keyer interface {
	// StructureKey is the key for a journey's resolved structure.
	StructureKey(journeyID string) string

	// CanvasKey is the key for a journey's positioned canvas graph.
	CanvasKey(journeyID, graphHash string) string

	// ArtifactKey is the key for a rendered artifact of a positioned
	// graph, identified by the graph's content hash and output format.
	ArtifactKey(graphHash, format string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// StructureKey returns "structure:<journeyID>".
func (DefaultKeyer) StructureKey(journeyID string) string {
	return "structure:" + journeyID
}

// CanvasKey returns a hashed key covering the journey and graph content.
func (DefaultKeyer) CanvasKey(journeyID, graphHash string) string {
	return hashKey("canvas", journeyID, graphHash)
}

// ArtifactKey returns a hashed key covering the graph hash and format.
func (DefaultKeyer) ArtifactKey(graphHash, format string) string {
	return hashKey("artifact", graphHash, format)
}
