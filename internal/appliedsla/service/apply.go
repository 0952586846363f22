// Package service holds the applied-SLA lifecycle manager and the filtered
// read service. Status transitions are not exposed here; they belong to the
// evaluator alone.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sla-tracker/engine/internal/appliedsla/domain"
	"sla-tracker/engine/internal/appliedsla/repository"
	"sla-tracker/engine/internal/provider"
)

// PolicyProvider is the minimal policy read needed to apply an SLA.
type PolicyProvider interface {
	GetPolicy(ctx context.Context, id string) (*provider.Policy, error)
}

// ConversationProvider is the minimal conversation read needed to apply an SLA.
type ConversationProvider interface {
	GetConversation(ctx context.Context, id string) (*provider.Conversation, error)
}

// ApplyService creates and destroys applied-SLA bindings. Invoked by external
// trigger hooks (conversation creation, policy assignment).
type ApplyService struct {
	repo          repository.Repository
	policies      PolicyProvider
	conversations ConversationProvider
	now           func() time.Time
}

// NewApplyService returns an ApplyService with the given dependencies.
func NewApplyService(repo repository.Repository, policies PolicyProvider, conversations ConversationProvider) *ApplyService {
	return &ApplyService{
		repo:          repo,
		policies:      policies,
		conversations: conversations,
		now:           time.Now,
	}
}

// Apply binds the policy to the conversation and returns the new record.
//
// Two phases: first resolve references and derive defaults (an empty accountID
// is filled from the policy's account before any validation), then attempt the
// insert. The storage-level unique index is the final authority on the
// one-binding-per-triple invariant; an in-process pre-check could not see
// concurrent appliers. Returns domain.ErrInvalidReference when the policy or
// conversation does not resolve (or belongs to another account) and
// domain.ErrDuplicateBinding when the triple already exists.
func (s *ApplyService) Apply(ctx context.Context, accountID, policyID, conversationID string) (*domain.AppliedSla, error) {
	if policyID == "" || conversationID == "" {
		return nil, domain.ErrInvalidReference
	}

	p, err := s.policies.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("resolve policy %s: %w", policyID, err)
	}
	if p == nil {
		return nil, domain.ErrInvalidReference
	}
	if accountID == "" {
		accountID = p.AccountID
	} else if accountID != p.AccountID {
		return nil, domain.ErrInvalidReference
	}

	c, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("resolve conversation %s: %w", conversationID, err)
	}
	if c == nil || c.AccountID != accountID {
		return nil, domain.ErrInvalidReference
	}

	now := s.now().UTC()
	rec := &domain.AppliedSla{
		ID:             uuid.New().String(),
		AccountID:      accountID,
		SlaPolicyID:    policyID,
		ConversationID: conversationID,
		Status:         domain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Destroy removes the applied SLA; its events are removed by the storage
// cascade. Pass-through beyond that.
func (s *ApplyService) Destroy(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
