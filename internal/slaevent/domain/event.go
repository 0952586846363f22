// Package domain defines the append-only SLA event log entries owned by an applied SLA.
package domain

import (
	"fmt"
	"time"

	appliedsladomain "sla-tracker/engine/internal/appliedsla/domain"
)

// EventType is the kind of occurrence recorded for an applied SLA.
type EventType string

const (
	EventHit    EventType = "hit"
	EventMissed EventType = "missed"
)

// ForStatus returns the event type recorded for a terminal status transition.
// Only hit and missed have event kinds; anything else is a programming error.
func ForStatus(s appliedsladomain.Status) (EventType, error) {
	switch s {
	case appliedsladomain.StatusHit:
		return EventHit, nil
	case appliedsladomain.StatusMissed:
		return EventMissed, nil
	case appliedsladomain.StatusActive:
		return "", fmt.Errorf("no event type for status %q", s)
	default:
		return "", fmt.Errorf("no event type for status %q", s)
	}
}

// SlaEvent is one immutable entry in an applied SLA's history.
// OccurredAt is the business timestamp (reply time for hit, deadline for
// missed); CreatedAt is when the row was written.
type SlaEvent struct {
	ID           string
	AppliedSlaID string
	Type         EventType
	OccurredAt   time.Time
	CreatedAt    time.Time
}
