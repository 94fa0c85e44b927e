package events

import (
	"context"
	"time"
)

const (
	TypeStageCompleted = "STAGE_COMPLETED"
	TypeChatCompleted  = "CHAT_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STAGE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher is anything that can emit an Event: the in-process bus or the NATS forwarder.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewStageCompleted(requestID, stage, phase string, duration time.Duration) BaseEvent {
	return BaseEvent{
		Type: TypeStageCompleted,
		Data: map[string]interface{}{
			"request_id":  requestID,
			"stage":       stage,
			"state":       phase,
			"duration_ms": float64(duration.Microseconds()) / 1000,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatCompleted(requestID, terminalPhase, complexity string, needsResearch bool, latency time.Duration) BaseEvent {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"request_id":     requestID,
			"terminal_state": terminalPhase,
			"complexity":     complexity,
			"needs_research": needsResearch,
			"latency_ms":     float64(latency.Microseconds()) / 1000,
		},
		OccurredAt: time.Now(),
	}
}
