// Package reorder maintains a draft ordering of sibling journeys under
// drag-and-drop and commits it atomically to storage.
//
// A [Session] tracks two orderings: the committed baseline and the working
// order the user is editing. The working order is always a permutation of
// the baseline id set - drag gestures only re-sequence, they never insert or
// remove ids. The session is dirty whenever the two id sequences differ.
//
// One session owns the working state for one sibling set; callers must not
// open two sessions over the same siblings concurrently.
package reorder

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/observability"
)

// Sentinel errors for session operations.
var (
	// ErrCommitInFlight is returned by Commit when a previous commit has
	// not finished yet. Re-entrant commits would double-submit.
	ErrCommitInFlight = errors.New("commit already in flight")

	// ErrEmptySession is returned by Commit when the session was never
	// initialized.
	ErrEmptySession = errors.New("session not initialized")
)

// Saver persists an ordered id list. Implementations are expected to apply
// the whole list atomically; partial application would desynchronize the
// baseline.
type Saver interface {
	SaveOrder(ctx context.Context, orderedIDs []string) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, orderedIDs []string) error

// SaveOrder calls f.
func (f SaverFunc) SaveOrder(ctx context.Context, orderedIDs []string) error {
	return f(ctx, orderedIDs)
}

// Session is the reorder engine for one sibling set. The zero value is not
// usable - create sessions with [NewSession].
type Session struct {
	saver  Saver
	logger *log.Logger

	mu         sync.Mutex
	baseline   []string
	working    []string
	committing bool
}

// NewSession creates a session backed by the given saver.
func NewSession(saver Saver, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{saver: saver, logger: logger}
}

// Initialize sets the session's sibling set. The baseline is the siblings
// sorted ascending by sequence order (missing values sort as zero, ties keep
// collection order). The working order is reset to the baseline unless a
// dirty session is already in progress, in which case the existing working
// order is preserved - incidental re-renders must not discard an in-progress
// drag.
func (s *Session) Initialize(siblings []*journey.Journey) {
	ids := journey.SiblingIDs(siblings)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.working) > 0 && !slices.Equal(s.working, s.baseline) {
		s.baseline = ids
		return
	}
	s.baseline = ids
	s.working = slices.Clone(ids)
}

// Order returns a copy of the current working order.
func (s *Session) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.working)
}

// Baseline returns a copy of the committed baseline order.
func (s *Session) Baseline() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.baseline)
}

// Dirty reports whether the working order differs from the baseline. The
// comparison is by id sequence, never by object identity - the underlying
// entities are recomputed on every render.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !slices.Equal(s.working, s.baseline)
}

// Committing reports whether a commit is in flight. Callers use this to
// disable the commit control while a save is outstanding.
func (s *Session) Committing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Move removes activeID from its current position and reinserts it at the
// position occupied by overID. Both indices are taken from the list before
// removal, so moving an element downward lands it after the element it was
// dropped on - the splice semantics of typical drag-and-drop lists, not an
// idealized swap.
//
// Move is a no-op (returning false) when activeID equals overID or either
// id is absent from the working order. It returns true when the order
// changed. This is the only mutation primitive; every drag gesture reduces
// to one or more Move calls.
func (s *Session) Move(activeID, overID string) bool {
	if activeID == overID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := slices.Index(s.working, activeID)
	to := slices.Index(s.working, overID)
	if from < 0 || to < 0 {
		return false
	}

	s.working = slices.Delete(s.working, from, from+1)
	s.working = slices.Insert(s.working, to, activeID)
	return true
}

// DragEnd consumes a drag-and-drop completion event. Cancelled drags and
// drops outside any target (empty overID) leave the order untouched.
func (s *Session) DragEnd(activeID, overID string, cancelled bool) bool {
	if cancelled || overID == "" {
		return false
	}
	return s.Move(activeID, overID)
}

// Commit sends the full working order to the saver. On success the baseline
// is replaced by the committed order and the session is clean. On failure
// the working order is left unchanged and the session stays dirty: the
// user's draft is preserved so the commit can be retried or cancelled.
// There is no automatic rollback.
//
// Only one commit may be outstanding; a re-entrant call fails with
// [ErrCommitInFlight].
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return ErrCommitInFlight
	}
	if len(s.working) == 0 {
		s.mu.Unlock()
		return ErrEmptySession
	}
	order := slices.Clone(s.working)
	s.committing = true
	s.mu.Unlock()

	start := time.Now()
	err := s.saver.SaveOrder(ctx, order)
	observability.Store().OnReorder(ctx, len(order), time.Since(start), err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.committing = false

	if err != nil {
		s.logger.Warn("reorder commit failed", "count", len(order), "err", err)
		return err
	}

	s.baseline = order
	s.logger.Debug("reorder committed", "count", len(order))
	return nil
}

// Cancel discards the working order and restores the baseline, ending the
// session without a network call. While a commit is in flight Cancel is
// rejected: the save's outcome decides the baseline, and discarding the
// draft mid-commit would leave the session dirty with an order the user
// never composed. It reports whether the draft was discarded.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committing {
		return false
	}
	s.working = slices.Clone(s.baseline)
	return true
}
