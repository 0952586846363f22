package service

import (
	"context"

	"sla-tracker/engine/internal/appliedsla/domain"
	"sla-tracker/engine/internal/appliedsla/repository"
	slaeventdomain "sla-tracker/engine/internal/slaevent/domain"
	slaeventrepo "sla-tracker/engine/internal/slaevent/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// QueryService answers filtered reads over applied SLAs and their event
// history for operational dashboards. Every filter field is optional; an
// unset field never excludes records.
type QueryService struct {
	repo   repository.Repository
	events slaeventrepo.Repository
}

// NewQueryService returns a QueryService over the given repositories.
func NewQueryService(repo repository.Repository, events slaeventrepo.Repository) *QueryService {
	return &QueryService{repo: repo, events: events}
}

// List returns applied SLAs matching the filter, paged and ordered stably by
// (created_at, id). A non-positive limit gets the default page size; limits
// above the cap are clamped.
func (s *QueryService) List(ctx context.Context, f repository.Filter) ([]*domain.AppliedSla, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// Events returns the applied SLA's transition history, ordered within its own
// stream. An unknown id yields an empty history, not an error.
func (s *QueryService) Events(ctx context.Context, appliedSlaID string) ([]*slaeventdomain.SlaEvent, error) {
	return s.events.ListByAppliedSla(ctx, appliedSlaID)
}

// EventCount returns how many events the applied SLA owns.
func (s *QueryService) EventCount(ctx context.Context, appliedSlaID string) (int64, error) {
	return s.events.CountByAppliedSla(ctx, appliedSlaID)
}
