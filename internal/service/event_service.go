package service

import (
	"context"
	"strings"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// EventService exposes the audit log to clients: the tablet records UI
// milestones (screen transitions, connector boot) through it.
type EventService struct {
	events eventRepository
}

func NewEventService(events eventRepository) *EventService {
	return &EventService{events: events}
}

// Log appends one client-originated event and returns its identifier.
func (s *EventService) Log(ctx context.Context, ev domain.Event) (string, error) {
	if strings.TrimSpace(ev.EventType) == "" {
		return "", NewValidationError("event_type is required")
	}
	if ev.Attributes == nil {
		ev.Attributes = map[string]any{}
	}
	return s.events.Insert(ctx, ev)
}
