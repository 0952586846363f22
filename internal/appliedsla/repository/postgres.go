package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"sla-tracker/engine/internal/appliedsla/domain"
	slaeventdomain "sla-tracker/engine/internal/slaevent/domain"
)

// Postgres error codes mapped onto domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an applied-SLA repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the applied SLA. The record must have ID set. The unique index
// on (account_id, sla_policy_id, conversation_id) is the final authority on the
// one-binding invariant; a violation surfaces as domain.ErrDuplicateBinding.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AppliedSla) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applied_slas (id, account_id, sla_policy_id, conversation_id, sla_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.AccountID, a.SlaPolicyID, a.ConversationID, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return domain.ErrDuplicateBinding
			case pgForeignKeyViolation:
				return domain.ErrInvalidReference
			}
		}
		return err
	}
	return nil
}

// GetByID returns the applied SLA for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AppliedSla, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, sla_policy_id, conversation_id, sla_status, created_at, updated_at
		FROM applied_slas WHERE id = $1`, id)
	a, err := scanAppliedSla(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListActive returns up to limit active records with id > afterID, ordered by id.
func (r *PostgresRepository) ListActive(ctx context.Context, afterID string, limit int32) ([]*domain.AppliedSla, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, sla_policy_id, conversation_id, sla_status, created_at, updated_at
		FROM applied_slas
		WHERE sla_status = $1 AND id > $2
		ORDER BY id
		LIMIT $3`,
		string(domain.StatusActive), afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppliedSlas(rows)
}

// TransitionStatus moves the record from active to a terminal status and
// appends the transition event in the same transaction. The UPDATE is a
// compare-and-set on sla_status = active; zero rows affected means a
// concurrent writer got there first (or the record is gone) and the caller
// must re-read before retrying.
func (r *PostgresRepository) TransitionStatus(ctx context.Context, id string, to domain.Status, event *slaeventdomain.SlaEvent) error {
	if !to.Terminal() {
		return fmt.Errorf("transition to non-terminal status %q", to)
	}
	if event == nil {
		return errors.New("transition requires an event")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE applied_slas SET sla_status = $1, updated_at = $2
		WHERE id = $3 AND sla_status = $4`,
		string(to), event.CreatedAt, id, string(domain.StatusActive))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConcurrentModification
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sla_events (id, applied_sla_id, event_type, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.AppliedSlaID, string(event.Type), event.OccurredAt, event.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the applied SLA by id. Owned sla_events rows are removed by
// the ON DELETE CASCADE foreign key. Deleting a missing id is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM applied_slas WHERE id = $1`, id)
	return err
}

// List returns applied SLAs matching the filter, ordered by (created_at, id).
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*domain.AppliedSla, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppliedSlas(rows)
}

// buildListQuery assembles the filtered SELECT. Each predicate contributes a
// WHERE clause only when its filter field is set; the conversations join is
// added only when a conversation-side predicate needs it.
func buildListQuery(f Filter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT a.id, a.account_id, a.sla_policy_id, a.conversation_id, a.sla_status, a.created_at, a.updated_at FROM applied_slas a`)

	if f.InboxID != "" || f.TeamID != "" || f.AssignedAgentID != "" || len(f.Labels) > 0 {
		b.WriteString(` JOIN conversations c ON c.id = a.conversation_id`)
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AccountID != "" {
		conds = append(conds, "a.account_id = "+arg(f.AccountID))
	}
	if f.CreatedAfter != nil {
		conds = append(conds, "a.created_at >= "+arg(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		conds = append(conds, "a.created_at <= "+arg(*f.CreatedBefore))
	}
	if f.InboxID != "" {
		conds = append(conds, "c.inbox_id = "+arg(f.InboxID))
	}
	if f.TeamID != "" {
		conds = append(conds, "c.team_id = "+arg(f.TeamID))
	}
	if f.SlaPolicyID != "" {
		conds = append(conds, "a.sla_policy_id = "+arg(f.SlaPolicyID))
	}
	if len(f.Labels) > 0 {
		conds = append(conds, "c.cached_label_list && "+arg(textArray(f.Labels))+"::text[]")
	}
	if f.AssignedAgentID != "" {
		conds = append(conds, "c.assigned_agent_id = "+arg(f.AssignedAgentID))
	}
	if f.MissedOnly {
		conds = append(conds, "a.sla_status = "+arg(string(domain.StatusMissed)))
	}

	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	b.WriteString(" ORDER BY a.created_at, a.id")

	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + arg(f.Offset))
	}

	return b.String(), args
}

// textArray renders labels as a Postgres text[] literal (e.g. {"vip","billing"}).
// Passed as a string parameter and cast server-side, so the stdlib driver does
// not need native array support.
func textArray(labels []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range labels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(l))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppliedSla(row rowScanner) (*domain.AppliedSla, error) {
	var a domain.AppliedSla
	var status string
	if err := row.Scan(&a.ID, &a.AccountID, &a.SlaPolicyID, &a.ConversationID, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	a.Status = st
	return &a, nil
}

func collectAppliedSlas(rows *sql.Rows) ([]*domain.AppliedSla, error) {
	var out []*domain.AppliedSla
	for rows.Next() {
		a, err := scanAppliedSla(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
