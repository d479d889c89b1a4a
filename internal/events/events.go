// Package events defines the domain events emitted after order and stock
// changes commit, and the publishers that deliver them.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderCancelled     = "order.cancelled"
	TypeStockLow           = "stock.low"
)

const (
	currentVersion = 1
	producerName   = "santapan-api"
)

// Envelope wraps every event payload.
type Envelope struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	EventVersion int       `json:"event_version"`
	OccurredAt   time.Time `json:"occurred_at"`
	Producer     string    `json:"producer"`
	// Subject is the user the event concerns. Empty for staff-only events.
	Subject string          `json:"subject,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// OrderPayload is carried by every order.* event.
type OrderPayload struct {
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         string             `json:"status"`
	PreviousStatus string             `json:"previous_status,omitempty"`
	TotalAmount    string             `json:"total_amount"`
	Note           string             `json:"note,omitempty"`
	Items          []OrderItemPayload `json:"items,omitempty"`
}

type OrderItemPayload struct {
	FoodID   string `json:"food_id"`
	Quantity int32  `json:"quantity"`
	Price    string `json:"price"`
}

// StockLowPayload reports a food whose available stock fell to min_stock or below.
type StockLowPayload struct {
	FoodID    string `json:"food_id"`
	FoodName  string `json:"food_name"`
	Available int32  `json:"available"`
	MinStock  int32  `json:"min_stock"`
}

// New builds an envelope around payload.
func New(eventType, subject string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: currentVersion,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Subject:      subject,
		Payload:      raw,
	}, nil
}

// Decode unmarshals the payload of env into T.
func Decode[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

// Publisher delivers events. Implementations must not block on slow sinks.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, env Envelope) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
