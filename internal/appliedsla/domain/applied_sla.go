// Package domain defines the applied-SLA entity: the binding of one SLA policy
// to one conversation within one account, with its status progression.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of an applied SLA. A record starts active and
// moves exactly once to hit or missed; both are terminal.
type Status string

const (
	StatusActive Status = "active"
	StatusHit    Status = "hit"
	StatusMissed Status = "missed"
)

// ParseStatus converts a stored status string into a Status.
// Returns an error for anything outside the known set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusHit, StatusMissed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown sla status %q", s)
	}
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusHit, StatusMissed:
		return true
	case StatusActive:
		return false
	default:
		return false
	}
}

// Sentinel errors for the applied-SLA core; repositories and services map
// storage failures onto these, callers branch with errors.Is.
var (
	// ErrDuplicateBinding means the (account, policy, conversation) triple already
	// has a record. Callers may treat it as already-applied.
	ErrDuplicateBinding = errors.New("sla policy is already applied to this conversation")
	// ErrInvalidReference means the policy or conversation id does not resolve,
	// or the supplied account does not own the policy.
	ErrInvalidReference = errors.New("policy or conversation reference is invalid")
	// ErrConcurrentModification means a status compare-and-set lost to a concurrent
	// writer; evaluate again from a fresh read.
	ErrConcurrentModification = errors.New("applied sla was modified concurrently")
	// ErrNotFound means the applied SLA id does not resolve.
	ErrNotFound = errors.New("applied sla not found")
)

// AppliedSla binds one SLA policy to one conversation. AccountID, SlaPolicyID
// and ConversationID are immutable after creation; only Status changes, and
// only through the evaluator's compare-and-set transition.
type AppliedSla struct {
	ID             string
	AccountID      string
	SlaPolicyID    string
	ConversationID string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
