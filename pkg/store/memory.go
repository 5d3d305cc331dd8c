package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/observability"
)

// MemoryStore is an in-memory journey store for tests and local use.
// Journeys are stored flat; descendant structure is resolved at read time
// from ParentStepID references, the same way the database backends do it.
type MemoryStore struct {
	mu       sync.RWMutex
	journeys map[string]*journey.Journey
	arrival  map[string]int
	nextSeq  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		journeys: make(map[string]*journey.Journey),
		arrival:  make(map[string]int),
	}
}

// Put inserts or replaces a journey record. The record's Subjourneys field
// is ignored on write; nesting is derived from ParentStepID at read time.
// First insertion fixes a journey's arrival rank, the collection order that
// breaks sequence-order ties on read.
func (s *MemoryStore) Put(j *journey.Journey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyJourney(j)
	c.Subjourneys = nil
	if _, ok := s.arrival[c.ID]; !ok {
		s.arrival[c.ID] = s.nextSeq
		s.nextSeq++
	}
	s.journeys[c.ID] = c
}

// GetJourney implements Store. Returned journeys are deep copies; callers
// may mutate them freely.
func (s *MemoryStore) GetJourney(ctx context.Context, id string, includeDescendants bool) (*journey.Journey, error) {
	start := time.Now()
	j, err := s.getJourney(id, includeDescendants)
	observability.Store().OnFetch(ctx, id, time.Since(start), err)
	return j, err
}

func (s *MemoryStore) getJourney(id string, includeDescendants bool) (*journey.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.journeys[id]
	if !ok {
		return nil, fmt.Errorf("journey %s: %w", id, ErrNotFound)
	}

	out := copyJourney(stored)
	if !includeDescendants {
		out.AllPhases = nil
		out.AllSteps = nil
		out.AllCards = nil
		return out, nil
	}

	stepIDs := make(map[string]bool, len(out.AllSteps))
	for _, st := range out.AllSteps {
		stepIDs[st.ID] = true
	}

	var subs []*journey.Journey
	for _, cand := range s.journeys {
		if cand.IsSubjourney && stepIDs[cand.ParentStepID] {
			subs = append(subs, copyJourney(cand))
		}
	}
	// Map iteration order is random; restore arrival order so equal
	// sequence orders tie-break the same way on every fetch.
	slices.SortFunc(subs, func(a, b *journey.Journey) int {
		return s.arrival[a.ID] - s.arrival[b.ID]
	})
	out.Subjourneys = journey.SortSiblings(subs)
	return out, nil
}

// ReorderJourneys implements Store. The whole list is validated before any
// sequence order is written, so a bad id leaves the store untouched.
func (s *MemoryStore) ReorderJourneys(ctx context.Context, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range orderedIDs {
		if _, ok := s.journeys[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownID, id)
		}
	}
	for i, id := range orderedIDs {
		s.journeys[id].SequenceOrder = i
	}
	return nil
}

// FindParent implements ParentResolver.
func (s *MemoryStore) FindParent(ctx context.Context, stepID string) (*journey.Journey, error) {
	s.mu.RLock()
	var parentID string
	for _, cand := range s.journeys {
		for _, st := range cand.AllSteps {
			if st.ID == stepID {
				parentID = cand.ID
				break
			}
		}
		if parentID != "" {
			break
		}
	}
	s.mu.RUnlock()

	if parentID == "" {
		return nil, fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	return s.GetJourney(ctx, parentID, true)
}

func copyJourney(j *journey.Journey) *journey.Journey {
	c := *j
	c.AllPhases = append([]journey.Phase(nil), j.AllPhases...)
	c.AllSteps = append([]journey.Step(nil), j.AllSteps...)
	c.AllCards = append([]journey.Card(nil), j.AllCards...)
	c.Subjourneys = nil
	for _, sub := range j.Subjourneys {
		c.Subjourneys = append(c.Subjourneys, copyJourney(sub))
	}
	return &c
}

// SeedDemo populates the store with a small journey tree and returns the
// id of the top-level journey. Used by the CLI when no store is configured.
func (s *MemoryStore) SeedDemo() string {
	rootID := uuid.NewString()
	phaseID := uuid.NewString()
	stepA := uuid.NewString()
	stepB := uuid.NewString()

	s.Put(&journey.Journey{
		ID:   rootID,
		Name: "Customer Onboarding",
		AllPhases: []journey.Phase{
			{ID: phaseID, JourneyID: rootID, Name: "Signup"},
		},
		AllSteps: []journey.Step{
			{ID: stepA, PhaseID: phaseID, Name: "Create account"},
			{ID: stepB, PhaseID: phaseID, Name: "Verify email", SequenceOrder: 1},
		},
	})

	for i, name := range []string{"Identity Check", "Welcome Tour"} {
		subID := uuid.NewString()
		subPhase := uuid.NewString()
		s.Put(&journey.Journey{
			ID:            subID,
			Name:          name,
			IsSubjourney:  true,
			ParentStepID:  stepA,
			SequenceOrder: i,
			AllPhases: []journey.Phase{
				{ID: subPhase, JourneyID: subID, Name: "Main"},
			},
			AllSteps: []journey.Step{
				{ID: uuid.NewString(), PhaseID: subPhase, Name: "Start"},
			},
		})
	}

	return rootID
}

var (
	_ Store          = (*MemoryStore)(nil)
	_ ParentResolver = (*MemoryStore)(nil)
)
