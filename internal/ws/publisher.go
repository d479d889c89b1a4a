package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/santapan/api/internal/events"
)

// Publisher forwards domain events to connected clients. Every event goes
// to the admin room; events with a subject also reach that user's room.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	rooms := []string{RoomAdmin}
	if id, err := uuid.Parse(env.Subject); err == nil {
		rooms = append(rooms, UserRoom(id))
	}

	p.hub.Broadcast(Event{Type: env.EventType, Payload: payload}, rooms...)
	return nil
}
