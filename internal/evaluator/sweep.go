package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sla-tracker/engine/internal/appliedsla/domain"
	"sla-tracker/engine/internal/notifier"
)

// ActiveLister pages through active applied SLAs by keyset.
type ActiveLister interface {
	ListActive(ctx context.Context, afterID string, limit int32) ([]*domain.AppliedSla, error)
}

// Sweeper runs one evaluation pass over all active records. Failures are
// isolated per record: a bad record is logged and skipped, never fatal to the
// sweep, and re-running a sweep is idempotent.
type Sweeper struct {
	lister    ActiveLister
	evaluator *Evaluator
	producer  notifier.Producer
	metrics   *Metrics
	batchSize int32
	logger    *slog.Logger
}

// NewSweeper returns a Sweeper. producer and metrics may be nil; transitions
// are then not emitted/counted.
func NewSweeper(lister ActiveLister, ev *Evaluator, producer notifier.Producer, metrics *Metrics, batchSize int32) *Sweeper {
	return &Sweeper{
		lister:    lister,
		evaluator: ev,
		producer:  producer,
		metrics:   metrics,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "sla.sweeper"),
	}
}

// Run performs one full sweep. It returns early only when listing fails (the
// next scheduled sweep retries from scratch) or the context is canceled
// between records; per-record evaluation errors are logged and skipped.
func (s *Sweeper) Run(ctx context.Context) error {
	start := time.Now()
	defer func() { s.metrics.observeSweep(time.Since(start)) }()

	var evaluated, transitioned, failed int
	afterID := ""
	for {
		batch, err := s.lister.ListActive(ctx, afterID, s.batchSize)
		if err != nil {
			s.metrics.recordError()
			return fmt.Errorf("list active applied slas: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			afterID = rec.ID

			res, err := s.evaluator.Evaluate(ctx, rec)
			evaluated++
			s.metrics.recordEvaluated()
			if err != nil {
				failed++
				s.metrics.recordError()
				s.logger.Error("evaluation failed",
					"applied_sla_id", rec.ID,
					"account_id", rec.AccountID,
					"error", err,
				)
				continue
			}
			if !res.Transitioned {
				continue
			}
			transitioned++
			s.metrics.recordTransition(string(res.Status))
			s.logger.Info("applied sla transitioned",
				"applied_sla_id", rec.ID,
				"account_id", rec.AccountID,
				"status", string(res.Status),
				"occurred_at", res.OccurredAt,
			)
			notifier.EmitAsync(s.producer, &notifier.Transition{
				AppliedSlaID:   rec.ID,
				AccountID:      rec.AccountID,
				SlaPolicyID:    rec.SlaPolicyID,
				ConversationID: rec.ConversationID,
				Status:         string(res.Status),
				OccurredAt:     res.OccurredAt,
			})
		}

		if int32(len(batch)) < s.batchSize {
			break
		}
	}

	s.logger.Info("sweep completed",
		"evaluated", evaluated,
		"transitioned", transitioned,
		"failed", failed,
		"duration", time.Since(start),
	)
	return nil
}
