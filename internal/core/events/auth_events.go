package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered = "user.registered"
	EventTypeUserLoggedIn   = "user.logged_in"
	EventTypeUserLoggedOut  = "user.logged_out"
)

// AuthEventTypes lists every account lifecycle event.
var AuthEventTypes = []string{
	EventTypeUserRegistered,
	EventTypeUserLoggedIn,
	EventTypeUserLoggedOut,
}

type UserRegisteredEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func NewUserRegisteredEvent(userID, email, department string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"email":      email,
				"department": department,
			},
		},
		UserID:     userID,
		Email:      email,
		Department: department,
	}
}

type UserLoggedInEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	JTI       string `json:"jti"`
}

func NewUserLoggedInEvent(userID, role, sessionID, jti string) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserLoggedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"role":       role,
				"session_id": sessionID,
				"jti":        jti,
			},
		},
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		JTI:       jti,
	}
}

type UserLoggedOutEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func NewUserLoggedOutEvent(userID, sessionID string) *UserLoggedOutEvent {
	return &UserLoggedOutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserLoggedOut,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
			},
		},
		UserID:    userID,
		SessionID: sessionID,
	}
}
