package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeShiftCreated = "shift.created"
	EventTypeShiftUpdated = "shift.updated"
	EventTypeShiftDeleted = "shift.deleted"
)

var ShiftEventTypes = []string{
	EventTypeShiftCreated,
	EventTypeShiftUpdated,
	EventTypeShiftDeleted,
}

// ShiftChangedEvent covers create, update and delete of a shift.
type ShiftChangedEvent struct {
	BaseEvent
	ShiftID int64  `json:"shift_id"`
	UserID  string `json:"user_id"`
	ActorID string `json:"actor_id"`
}

func NewShiftChangedEvent(eventType string, shiftID int64, ownerID, actorID string) *ShiftChangedEvent {
	return &ShiftChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"shift_id": shiftID,
				"user_id":  ownerID,
				"actor_id": actorID,
			},
		},
		ShiftID: shiftID,
		UserID:  ownerID,
		ActorID: actorID,
	}
}
