package repository

import (
	"context"
	"database/sql"

	"sla-tracker/engine/internal/slaevent/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an SLA event repository that reads from the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByAppliedSla returns the applied SLA's events ordered by occurred_at.
// Ordering is only meaningful within one applied SLA's stream.
func (r *PostgresRepository) ListByAppliedSla(ctx context.Context, appliedSlaID string) ([]*domain.SlaEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, applied_sla_id, event_type, occurred_at, created_at
		FROM sla_events
		WHERE applied_sla_id = $1
		ORDER BY occurred_at, id`, appliedSlaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SlaEvent
	for rows.Next() {
		var e domain.SlaEvent
		var eventType string
		if err := rows.Scan(&e.ID, &e.AppliedSlaID, &eventType, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.EventType(eventType)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByAppliedSla returns how many events the applied SLA owns.
func (r *PostgresRepository) CountByAppliedSla(ctx context.Context, appliedSlaID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sla_events WHERE applied_sla_id = $1`, appliedSlaID).Scan(&n)
	return n, err
}
