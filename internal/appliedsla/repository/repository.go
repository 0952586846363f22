package repository

import (
	"context"
	"time"

	"sla-tracker/engine/internal/appliedsla/domain"
	slaeventdomain "sla-tracker/engine/internal/slaevent/domain"
)

// Filter is the composable predicate set for applied-SLA reads. Zero-valued
// fields contribute nothing to the query; set fields compose with logical AND.
type Filter struct {
	// AccountID scopes results to one tenant.
	AccountID string
	// CreatedAfter/CreatedBefore bound created_at inclusively on either side.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	// InboxID matches records whose conversation belongs to the inbox.
	InboxID string
	// TeamID matches records whose conversation is assigned to the team.
	TeamID string
	// SlaPolicyID is an exact policy match.
	SlaPolicyID string
	// Labels matches records whose conversation's cached label list overlaps the given list.
	Labels []string
	// AssignedAgentID matches records whose conversation is assigned to the agent.
	AssignedAgentID string
	// MissedOnly restricts to sla_status = missed.
	MissedOnly bool

	// Limit and Offset page the result. Limit <= 0 means the caller's default applies.
	Limit  int32
	Offset int32
}

// Repository defines persistence for applied SLAs. The storage layer is the
// final authority on the (account_id, sla_policy_id, conversation_id)
// uniqueness invariant and on status compare-and-set.
type Repository interface {
	// Create inserts the record. Returns domain.ErrDuplicateBinding when the
	// triple already exists and domain.ErrInvalidReference when the policy or
	// conversation row is missing.
	Create(ctx context.Context, a *domain.AppliedSla) error
	// GetByID returns the record for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.AppliedSla, error)
	// ListActive returns up to limit active records with id > afterID, ordered
	// by id. Keyset pagination keeps sweeps stable while records leave the
	// active set mid-sweep.
	ListActive(ctx context.Context, afterID string, limit int32) ([]*domain.AppliedSla, error)
	// TransitionStatus atomically moves the record from active to the given
	// terminal status and appends the event in the same transaction. Returns
	// domain.ErrConcurrentModification when the record is no longer active.
	TransitionStatus(ctx context.Context, id string, to domain.Status, event *slaeventdomain.SlaEvent) error
	// Delete removes the record; owned events go with it via the FK cascade.
	Delete(ctx context.Context, id string) error
	// List returns records matching the filter, ordered by (created_at, id).
	List(ctx context.Context, f Filter) ([]*domain.AppliedSla, error)
}
