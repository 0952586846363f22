package repository

import (
	"context"

	"sla-tracker/engine/internal/slaevent/domain"
)

// Repository reads the SLA event log. Events are append-only and written
// exclusively by the applied-SLA status transition, in the same transaction as
// the compare-and-set; there is no update or single-event delete — rows
// disappear only through the cascade when their applied SLA is destroyed.
type Repository interface {
	// ListByAppliedSla returns the applied SLA's events ordered by occurred_at.
	ListByAppliedSla(ctx context.Context, appliedSlaID string) ([]*domain.SlaEvent, error)
	// CountByAppliedSla returns how many events the applied SLA owns.
	CountByAppliedSla(ctx context.Context, appliedSlaID string) (int64, error)
}
