package reorder

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/journeykit/journeymap/pkg/journey"
)

func siblings(ids ...string) []*journey.Journey {
	out := make([]*journey.Journey, len(ids))
	for i, id := range ids {
		out[i] = &journey.Journey{ID: id, SequenceOrder: i}
	}
	return out
}

// recordingSaver captures commit calls and returns a configurable error.
type recordingSaver struct {
	mu     sync.Mutex
	calls  [][]string
	err    error
	block  chan struct{} // when non-nil, SaveOrder waits until closed
	active chan struct{} // closed once SaveOrder has been entered
}

func (s *recordingSaver) SaveOrder(ctx context.Context, ids []string) error {
	if s.active != nil {
		close(s.active)
		s.active = nil
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.calls = append(s.calls, slices.Clone(ids))
	s.mu.Unlock()
	return s.err
}

func TestInitializeSortsBySequenceOrder(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize([]*journey.Journey{
		{ID: "j1", SequenceOrder: 2},
		{ID: "j2", SequenceOrder: 0},
		{ID: "j3", SequenceOrder: 1},
	})

	if got, want := s.Order(), []string{"j2", "j3", "j1"}; !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
	if s.Dirty() {
		t.Error("fresh session must not be dirty")
	}
}

func TestInitializePreservesDirtyWorkingOrder(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("a", "b", "c"))

	if !s.Move("c", "a") {
		t.Fatal("Move should succeed")
	}
	moved := s.Order()
	if !s.Dirty() {
		t.Fatal("session should be dirty after Move")
	}

	// The entities are recomputed on re-render; an incidental Initialize
	// must not discard the draft.
	s.Initialize(siblings("a", "b", "c"))
	if got := s.Order(); !slices.Equal(got, moved) {
		t.Errorf("Order after re-Initialize = %v, want %v", got, moved)
	}
	if !s.Dirty() {
		t.Error("dirty flag must survive Initialize while a session is in progress")
	}
}

func TestMoveSpliceSemantics(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("A", "B", "C"))

	// Move removes the active id and reinserts it at the index the target
	// occupied before removal.
	if !s.Move("A", "C") {
		t.Fatal("Move(A, C) should change the order")
	}
	if got, want := s.Order(), []string{"B", "C", "A"}; !slices.Equal(got, want) {
		t.Fatalf("after Move(A, C): %v, want %v", got, want)
	}

	// These are splice semantics, not an idealized swap. Assert the actual
	// result of the second move rather than assuming the inverse law.
	if !s.Move("A", "B") {
		t.Fatal("Move(A, B) should change the order")
	}
	if got, want := s.Order(), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Fatalf("after Move(A, B): %v, want %v", got, want)
	}
}

func TestMoveRoundTripAdjacent(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("A", "B", "C"))

	s.Move("A", "B")
	if got, want := s.Order(), []string{"B", "A", "C"}; !slices.Equal(got, want) {
		t.Fatalf("after Move(A, B): %v, want %v", got, want)
	}
	s.Move("B", "A")
	if got, want := s.Order(), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Errorf("round trip: %v, want %v", got, want)
	}
	if s.Dirty() {
		t.Error("round trip back to baseline must clear dirty")
	}
}

func TestMoveNoOps(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("a", "b"))

	if s.Move("a", "a") {
		t.Error("Move with equal ids must be a no-op")
	}
	if s.Move("a", "missing") {
		t.Error("Move with unknown over id must be a no-op")
	}
	if s.Move("missing", "a") {
		t.Error("Move with unknown active id must be a no-op")
	}
	if s.Dirty() {
		t.Error("no-op moves must not dirty the session")
	}
}

func TestMovePreservesIDSet(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("a", "b", "c", "d"))

	moves := [][2]string{{"d", "a"}, {"b", "c"}, {"a", "d"}, {"c", "b"}}
	for _, m := range moves {
		s.Move(m[0], m[1])
		got := s.Order()
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		if !slices.Equal(sorted, []string{"a", "b", "c", "d"}) {
			t.Fatalf("working order is no longer a permutation: %v", got)
		}
	}
}

func TestDragEnd(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	s.Initialize(siblings("a", "b"))

	if s.DragEnd("a", "b", true) {
		t.Error("cancelled drag must not move")
	}
	if s.DragEnd("a", "", false) {
		t.Error("drop outside any target must not move")
	}
	if !s.DragEnd("a", "b", false) {
		t.Error("completed drag should move")
	}
	if got, want := s.Order(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestCommitSuccess(t *testing.T) {
	saver := &recordingSaver{}
	s := NewSession(saver, nil)
	s.Initialize([]*journey.Journey{
		{ID: "j1", SequenceOrder: 2},
		{ID: "j2", SequenceOrder: 0},
		{ID: "j3", SequenceOrder: 1},
	})

	s.Move("j1", "j2")
	if got, want := s.Order(), []string{"j1", "j2", "j3"}; !slices.Equal(got, want) {
		t.Fatalf("Order = %v, want %v", got, want)
	}

	if err := s.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(saver.calls) != 1 || !slices.Equal(saver.calls[0], []string{"j1", "j2", "j3"}) {
		t.Errorf("saver calls = %v", saver.calls)
	}
	if got, want := s.Baseline(), []string{"j1", "j2", "j3"}; !slices.Equal(got, want) {
		t.Errorf("Baseline = %v, want %v", got, want)
	}
	if s.Dirty() {
		t.Error("successful commit must clear dirty")
	}
}

func TestCommitFailurePreservesDraft(t *testing.T) {
	saver := &recordingSaver{err: errors.New("boom")}
	s := NewSession(saver, nil)
	s.Initialize(siblings("a", "b"))
	s.Move("b", "a")

	if err := s.Commit(context.Background()); err == nil {
		t.Fatal("Commit should fail")
	}
	if got, want := s.Order(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("draft order = %v, want %v", got, want)
	}
	if !s.Dirty() {
		t.Error("failed commit must leave the session dirty")
	}

	// The draft survives, so the commit can be retried.
	saver.err = nil
	if err := s.Commit(context.Background()); err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
	if s.Dirty() {
		t.Error("retried commit must clear dirty")
	}
}

func TestCommitSingleFlight(t *testing.T) {
	saver := &recordingSaver{
		block:  make(chan struct{}),
		active: make(chan struct{}),
	}
	active := saver.active
	s := NewSession(saver, nil)
	s.Initialize(siblings("a", "b"))
	s.Move("b", "a")

	done := make(chan error, 1)
	go func() { done <- s.Commit(context.Background()) }()

	<-active
	if !s.Committing() {
		t.Error("Committing should report true while a save is outstanding")
	}
	if err := s.Commit(context.Background()); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("re-entrant Commit = %v, want ErrCommitInFlight", err)
	}

	close(saver.block)
	if err := <-done; err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.Committing() {
		t.Error("Committing should be false after the commit finished")
	}
}

func TestCommitUninitialized(t *testing.T) {
	s := NewSession(&recordingSaver{}, nil)
	if err := s.Commit(context.Background()); !errors.Is(err, ErrEmptySession) {
		t.Errorf("Commit = %v, want ErrEmptySession", err)
	}
}

func TestCancelRestoresBaseline(t *testing.T) {
	saver := &recordingSaver{}
	s := NewSession(saver, nil)
	s.Initialize(siblings("a", "b", "c"))
	s.Move("c", "a")

	if !s.Cancel() {
		t.Error("Cancel should succeed on an idle session")
	}
	if got, want := s.Order(), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Order after Cancel = %v, want %v", got, want)
	}
	if s.Dirty() {
		t.Error("Cancel must clear dirty")
	}
	if len(saver.calls) != 0 {
		t.Error("Cancel must not hit the saver")
	}
}

func TestCancelDuringCommitRejected(t *testing.T) {
	saver := &recordingSaver{
		block:  make(chan struct{}),
		active: make(chan struct{}),
	}
	active := saver.active
	s := NewSession(saver, nil)
	s.Initialize(siblings("a", "b"))
	s.Move("b", "a")

	done := make(chan error, 1)
	go func() { done <- s.Commit(context.Background()) }()

	<-active
	if s.Cancel() {
		t.Error("Cancel must be rejected while a commit is in flight")
	}

	close(saver.block)
	if err := <-done; err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// The committed order became the baseline and the session is clean;
	// the rejected Cancel left no half-reverted draft behind.
	if got, want := s.Order(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
	if s.Dirty() {
		t.Error("session must be clean after the commit lands")
	}
}
