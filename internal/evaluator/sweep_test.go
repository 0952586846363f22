package evaluator

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"sla-tracker/engine/internal/appliedsla/domain"
	"sla-tracker/engine/internal/provider"
	slaeventdomain "sla-tracker/engine/internal/slaevent/domain"
)

// sweepStore backs both the lister and the evaluator repository for sweep
// tests, with optional per-record resolver failures.
type sweepStore struct {
	records map[string]*domain.AppliedSla
	events  []*slaeventdomain.SlaEvent
	listErr error
}

func newSweepStore(records ...*domain.AppliedSla) *sweepStore {
	s := &sweepStore{records: make(map[string]*domain.AppliedSla)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *sweepStore) ListActive(ctx context.Context, afterID string, limit int32) ([]*domain.AppliedSla, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var ids []string
	for id, r := range s.records {
		if r.Status == domain.StatusActive && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	var out []*domain.AppliedSla
	for _, id := range ids {
		if int32(len(out)) >= limit {
			break
		}
		cp := *s.records[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *sweepStore) GetByID(ctx context.Context, id string) (*domain.AppliedSla, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *sweepStore) TransitionStatus(ctx context.Context, id string, to domain.Status, event *slaeventdomain.SlaEvent) error {
	r, ok := s.records[id]
	if !ok || r.Status != domain.StatusActive {
		return domain.ErrConcurrentModification
	}
	r.Status = to
	s.events = append(s.events, event)
	return nil
}

// perRecordResolver fails for ids in failing and returns overdue objectives
// for everything else.
type perRecordResolver struct {
	failing map[string]error
}

func (r *perRecordResolver) Resolve(ctx context.Context, policyID, conversationID string, appliedAt time.Time) (*provider.Objective, error) {
	if err, ok := r.failing[conversationID]; ok {
		return nil, err
	}
	return &provider.Objective{Deadline: appliedAt.Add(30 * time.Minute)}, nil
}

func record(id string) *domain.AppliedSla {
	return &domain.AppliedSla{
		ID:             id,
		AccountID:      "a1",
		SlaPolicyID:    "p1",
		ConversationID: "conv-" + id,
		Status:         domain.StatusActive,
		CreatedAt:      applied,
	}
}

func newSweepFixture(store *sweepStore, resolver provider.ObjectiveResolver, batchSize int32) *Sweeper {
	ev := New(store, resolver, 3)
	ev.now = func() time.Time { return applied.Add(time.Hour) }
	return NewSweeper(store, ev, nil, nil, batchSize)
}

func TestSweep_TransitionsOverdueRecords(t *testing.T) {
	store := newSweepStore(record("as1"), record("as2"), record("as3"))
	s := newSweepFixture(store, &perRecordResolver{}, 100)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, id := range []string{"as1", "as2", "as3"} {
		if store.records[id].Status != domain.StatusMissed {
			t.Errorf("record %s status = %q, want missed", id, store.records[id].Status)
		}
	}
	if len(store.events) != 3 {
		t.Errorf("event count = %d, want 3", len(store.events))
	}
}

func TestSweep_PagesThroughBatches(t *testing.T) {
	store := newSweepStore(record("as1"), record("as2"), record("as3"), record("as4"), record("as5"))
	s := newSweepFixture(store, &perRecordResolver{}, 2)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for id, r := range store.records {
		if r.Status != domain.StatusMissed {
			t.Errorf("record %s status = %q, want missed", id, r.Status)
		}
	}
}

func TestSweep_PerRecordFailureIsolated(t *testing.T) {
	store := newSweepStore(record("as1"), record("as2"), record("as3"))
	resolver := &perRecordResolver{failing: map[string]error{
		"conv-as2": errors.New("storage unavailable"),
	}}
	s := newSweepFixture(store, resolver, 100)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run should not fail on a per-record error: %v", err)
	}
	if store.records["as1"].Status != domain.StatusMissed {
		t.Error("as1 should have been transitioned")
	}
	if store.records["as2"].Status != domain.StatusActive {
		t.Error("as2 should be left active for the next sweep")
	}
	if store.records["as3"].Status != domain.StatusMissed {
		t.Error("as3 should have been transitioned despite as2 failing")
	}
}

func TestSweep_ListFailureAbortsSweep(t *testing.T) {
	store := newSweepStore(record("as1"))
	store.listErr = errors.New("connection refused")
	s := newSweepFixture(store, &perRecordResolver{}, 100)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run should surface a listing failure")
	}
}

func TestSweep_ContextCancellation(t *testing.T) {
	store := newSweepStore(record("as1"), record("as2"))
	s := newSweepFixture(store, &perRecordResolver{}, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSweep_RerunIsIdempotent(t *testing.T) {
	store := newSweepStore(record("as1"))
	s := newSweepFixture(store, &perRecordResolver{}, 100)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(store.events) != 1 {
		t.Errorf("event count after two sweeps = %d, want 1", len(store.events))
	}
}
