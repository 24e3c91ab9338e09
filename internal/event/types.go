package event

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	FreelancerApplied EventType = "freelancer.applied"
	RefundDecided     EventType = "refund.decided"
)

type Event struct {
	EventType  EventType      `json:"event_type"`
	UserID     uuid.UUID      `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

func New(t EventType, userID uuid.UUID, data map[string]any) *Event {
	return &Event{EventType: t, UserID: userID, OccurredAt: time.Now().UTC(), Data: data}
}
