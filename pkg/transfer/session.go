package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransferSession struct {
	// ServiceID identifies the flasher instance
	ServiceID string `json:"service_id"`
	// SessionID identifies this specific flashing run
	SessionID       string `json:"session_id"`
	SessionCreateAt int64  `json:"session_create_at"`
	Device          string `json:"device"`
	State           State  `json:"state"`
}

// NewSession starts a session in StateInit for the given request.
func NewSession(serviceID string, req Request) *TransferSession {
	return &TransferSession{
		ServiceID:       serviceID,
		SessionID:       uuid.New().String(),
		SessionCreateAt: time.Now().Unix(),
		Device:          req.Target(),
		State:           StateInit,
	}
}

// Transition moves the session to next if the state machine allows it.
func (s *TransferSession) Transition(next State) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, s.State, next)
	}
	s.State = next
	return nil
}
