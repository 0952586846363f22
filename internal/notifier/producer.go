// Package notifier emits terminal SLA transitions (e.g. to Kafka) for
// downstream notification and escalation pipelines. Emission is best-effort;
// the durable sla_events log, not this stream, is the record of truth.
package notifier

import (
	"context"
	"log"
	"time"
)

// Transition is the payload emitted when an applied SLA reaches a terminal status.
type Transition struct {
	AppliedSlaID   string    `json:"applied_sla_id"`
	AccountID      string    `json:"account_id"`
	SlaPolicyID    string    `json:"sla_policy_id"`
	ConversationID string    `json:"conversation_id"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Producer emits transition events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single transition. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, t *Transition) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. producer and t may be nil; EmitAsync then returns immediately.
// The goroutine uses context.Background() with emitTimeout so sweep shutdown
// does not abort an in-flight emit.
func EmitAsync(producer Producer, t *Transition) {
	if producer == nil || t == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := producer.Emit(ctx, t); err != nil {
			log.Printf("notifier: async emit failed: %v", err)
		}
	}()
}
