// Package journey defines the domain model for journey maps.
//
// A journey is a workflow composed of phases, which in turn contain steps.
// Journeys nest: a subjourney is a journey attached to a specific step of an
// ancestor journey via ParentStepID. Sibling ordering within any collection
// is controlled by SequenceOrder.
//
// The types in this package are the canonical serialization format for the
// API and the Mongo store, so field tags match the wire format exactly.
package journey

import "slices"

// Journey is a top-level or nested workflow entity.
//
// Invariant: IsSubjourney is true iff ParentStepID is non-empty. Top-level
// journeys have neither.
type Journey struct {
	ID           string `json:"id" bson:"id"`
	ProjectID    string `json:"project_id,omitempty" bson:"project_id,omitempty"`
	Name         string `json:"name" bson:"name"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	IsSubjourney bool   `json:"is_subjourney" bson:"is_subjourney"`

	// ParentStepID references a step in an ancestor journey. Empty for
	// top-level journeys.
	ParentStepID string `json:"parent_step_id,omitempty" bson:"parent_step_id,omitempty"`

	// SequenceOrder defines ordering among siblings. Zero when unset.
	SequenceOrder int `json:"sequence_order,omitempty" bson:"sequence_order,omitempty"`

	// Subjourneys holds child journeys for rendering purposes. The parent
	// does not own the underlying records exclusively - a subjourney is a
	// journey in its own right and can be viewed directly.
	Subjourneys []*Journey `json:"subjourneys,omitempty" bson:"subjourneys,omitempty"`

	// AllPhases and AllSteps are flattened descendant collections used for
	// rendering summaries (overview nodes), loaded by the structure query.
	AllPhases []Phase `json:"allPhases,omitempty" bson:"allPhases,omitempty"`
	AllSteps  []Step  `json:"allSteps,omitempty" bson:"allSteps,omitempty"`
	AllCards  []Card  `json:"allCards,omitempty" bson:"allCards,omitempty"`

	CreatedAt string `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Phase is a stage of a journey containing steps.
type Phase struct {
	ID            string `json:"id" bson:"id"`
	JourneyID     string `json:"journey_id" bson:"journey_id"`
	Name          string `json:"name" bson:"name"`
	SequenceOrder int    `json:"sequence_order,omitempty" bson:"sequence_order,omitempty"`
}

// Step is a single action within a phase. Steps are the attachment points
// for subjourneys and for edge handles on the canvas.
type Step struct {
	ID            string `json:"id" bson:"id"`
	PhaseID       string `json:"phase_id" bson:"phase_id"`
	Name          string `json:"name" bson:"name"`
	SequenceOrder int    `json:"sequence_order,omitempty" bson:"sequence_order,omitempty"`
}

// Card is a note attached to a step. Cards do not appear on the canvas but
// travel with the structure payload.
type Card struct {
	ID            string `json:"id" bson:"id"`
	StepID        string `json:"step_id" bson:"step_id"`
	Content       string `json:"content,omitempty" bson:"content,omitempty"`
	SequenceOrder int    `json:"sequence_order,omitempty" bson:"sequence_order,omitempty"`
}

// Valid reports whether the journey satisfies the subjourney invariant:
// IsSubjourney set iff ParentStepID is non-empty.
func (j *Journey) Valid() bool {
	return j.IsSubjourney == (j.ParentStepID != "")
}

// StepIDs returns the ids of the journey's flattened steps in order.
func (j *Journey) StepIDs() []string {
	ids := make([]string, len(j.AllSteps))
	for i, s := range j.AllSteps {
		ids[i] = s.ID
	}
	return ids
}

// SortSiblings returns the journeys ordered ascending by SequenceOrder.
// A missing order value sorts as zero, and ties keep the original collection
// order (stable sort). The input slice is not modified.
func SortSiblings(siblings []*Journey) []*Journey {
	out := slices.Clone(siblings)
	slices.SortStableFunc(out, func(a, b *Journey) int {
		return a.SequenceOrder - b.SequenceOrder
	})
	return out
}

// SiblingIDs returns the ids of the journeys in sorted sibling order.
func SiblingIDs(siblings []*Journey) []string {
	sorted := SortSiblings(siblings)
	ids := make([]string, len(sorted))
	for i, j := range sorted {
		ids[i] = j.ID
	}
	return ids
}
