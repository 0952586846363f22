package provider

import (
	"context"
	"fmt"
	"time"

	"sla-tracker/engine/internal/appliedsla/domain"
)

// ThresholdResolver computes objectives by adding the policy threshold to the
// apply time. Policies with a resolution threshold track time-to-resolution;
// otherwise time-to-first-response. A provider that adjusts deadlines for
// business hours can replace this resolver without touching the evaluator.
type ThresholdResolver struct {
	policies      SlaPolicyProvider
	conversations ConversationProvider
}

// NewThresholdResolver returns an ObjectiveResolver over the given providers.
func NewThresholdResolver(policies SlaPolicyProvider, conversations ConversationProvider) *ThresholdResolver {
	return &ThresholdResolver{policies: policies, conversations: conversations}
}

// Resolve computes the deadline and qualifying-activity timestamp for one
// applied SLA. Returns domain.ErrInvalidReference when the policy or
// conversation no longer resolves.
func (r *ThresholdResolver) Resolve(ctx context.Context, policyID, conversationID string, appliedAt time.Time) (*Objective, error) {
	p, err := r.policies.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("resolve policy %s: %w", policyID, err)
	}
	if p == nil {
		return nil, domain.ErrInvalidReference
	}
	c, err := r.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("resolve conversation %s: %w", conversationID, err)
	}
	if c == nil {
		return nil, domain.ErrInvalidReference
	}

	if p.ResolutionThreshold > 0 {
		return &Objective{
			Deadline:    appliedAt.Add(p.ResolutionThreshold),
			SatisfiedAt: c.ResolvedAt,
		}, nil
	}
	return &Objective{
		Deadline:    appliedAt.Add(p.ResponseThreshold),
		SatisfiedAt: c.FirstReplyAt,
	}, nil
}
