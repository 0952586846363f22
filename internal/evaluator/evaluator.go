// Package evaluator drives the applied-SLA status state machine: it decides
// whether an active record has been hit or missed and applies the transition
// through an atomic compare-and-set. It is the single writer of sla_status.
package evaluator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sla-tracker/engine/internal/appliedsla/domain"
	"sla-tracker/engine/internal/provider"
	slaeventdomain "sla-tracker/engine/internal/slaevent/domain"
)

// Repository is the minimal applied-SLA persistence needed by the evaluator.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AppliedSla, error)
	TransitionStatus(ctx context.Context, id string, to domain.Status, event *slaeventdomain.SlaEvent) error
}

// Result is the outcome of one Evaluate call. Transitioned is true only when
// this call moved the record to a terminal status; OccurredAt is then the
// business timestamp recorded on the event.
type Result struct {
	Status       domain.Status
	Transitioned bool
	OccurredAt   time.Time
}

// Decide computes the transition, if any, for an active record's objective at
// the given instant.
//
// Hit takes precedence: a qualifying activity at or before the deadline counts
// as hit even when the deadline has also elapsed by evaluation time, and a
// timestamp exactly on the deadline boundary is a hit, not a miss (benefit of
// the doubt to the responder). Missed fires when the deadline has been reached
// without qualifying activity. Otherwise the record stays active.
func Decide(obj *provider.Objective, now time.Time) (domain.Status, time.Time, bool) {
	if obj.SatisfiedAt != nil && !obj.SatisfiedAt.After(obj.Deadline) {
		return domain.StatusHit, *obj.SatisfiedAt, true
	}
	if !now.Before(obj.Deadline) {
		return domain.StatusMissed, obj.Deadline, true
	}
	return "", time.Time{}, false
}

// Evaluator applies at most one terminal transition per record, idempotently.
type Evaluator struct {
	repo       Repository
	resolver   provider.ObjectiveResolver
	maxRetries int
	now        func() time.Time
}

// New returns an Evaluator. maxRetries bounds how often a lost compare-and-set
// is retried from a fresh read before the error is surfaced to the sweep.
func New(repo Repository, resolver provider.ObjectiveResolver, maxRetries int) *Evaluator {
	return &Evaluator{repo: repo, resolver: resolver, maxRetries: maxRetries, now: time.Now}
}

// Evaluate inspects one record and applies a hit/missed transition when due.
// Terminal records are a no-op (no status change, no event), so callers may
// re-invoke on every sweep tick. A compare-and-set lost to a concurrent
// evaluator is retried from a fresh read up to maxRetries times; the fresh
// read usually shows the record already terminal and resolves to a no-op.
func (e *Evaluator) Evaluate(ctx context.Context, rec *domain.AppliedSla) (Result, error) {
	if rec == nil {
		return Result{}, domain.ErrNotFound
	}
	for attempt := 0; ; attempt++ {
		if rec.Status.Terminal() {
			return Result{Status: rec.Status}, nil
		}

		obj, err := e.resolver.Resolve(ctx, rec.SlaPolicyID, rec.ConversationID, rec.CreatedAt)
		if err != nil {
			return Result{}, err
		}
		to, occurredAt, due := Decide(obj, e.now())
		if !due {
			return Result{Status: domain.StatusActive}, nil
		}

		eventType, err := slaeventdomain.ForStatus(to)
		if err != nil {
			return Result{}, err
		}
		event := &slaeventdomain.SlaEvent{
			ID:           uuid.New().String(),
			AppliedSlaID: rec.ID,
			Type:         eventType,
			OccurredAt:   occurredAt.UTC(),
			CreatedAt:    e.now().UTC(),
		}

		err = e.repo.TransitionStatus(ctx, rec.ID, to, event)
		if err == nil {
			return Result{Status: to, Transitioned: true, OccurredAt: event.OccurredAt}, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return Result{}, err
		}
		if attempt >= e.maxRetries {
			return Result{}, err
		}

		fresh, err := e.repo.GetByID(ctx, rec.ID)
		if err != nil {
			return Result{}, err
		}
		if fresh == nil {
			return Result{}, domain.ErrNotFound
		}
		rec = fresh
	}
}
