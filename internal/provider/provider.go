// Package provider holds the collaborator contracts the SLA core reads from:
// policy thresholds and conversation activity. The core never writes either.
package provider

import (
	"context"
	"time"
)

// Policy is the read-only view of an SLA policy: who owns it and which
// time thresholds it commits to.
type Policy struct {
	ID        string
	AccountID string
	Name      string
	// ResponseThreshold is how long the first qualifying reply may take.
	ResponseThreshold time.Duration
	// ResolutionThreshold is how long resolution may take; zero when the policy
	// tracks response time only.
	ResolutionThreshold time.Duration
}

// Conversation is the read-only view of a conversation's routing and activity
// state, as cached by the conversation service.
type Conversation struct {
	ID              string
	AccountID       string
	InboxID         string
	TeamID          string
	AssignedAgentID string
	Labels          []string
	// FirstReplyAt is when the first qualifying agent reply happened; nil if none yet.
	FirstReplyAt *time.Time
	// ResolvedAt is when the conversation was resolved; nil while open.
	ResolvedAt *time.Time
}

// SlaPolicyProvider resolves SLA policies. Returns (nil, nil) for unknown ids.
type SlaPolicyProvider interface {
	GetPolicy(ctx context.Context, id string) (*Policy, error)
}

// ConversationProvider resolves conversations. Returns (nil, nil) for unknown ids.
type ConversationProvider interface {
	GetConversation(ctx context.Context, id string) (*Conversation, error)
}

// Objective is the computed commitment for one applied SLA: the wall-clock
// deadline and, when known, the timestamp of the activity that satisfies it.
// The evaluator consumes this pair opaquely; how the deadline accounts for
// business hours or which activity qualifies is the resolver's concern.
type Objective struct {
	Deadline    time.Time
	SatisfiedAt *time.Time
}

// ObjectiveResolver computes the objective for an applied SLA given the policy
// it applies and when it was applied.
type ObjectiveResolver interface {
	Resolve(ctx context.Context, policyID, conversationID string, appliedAt time.Time) (*Objective, error)
}
