package stock

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/santapan/api/internal/database"
)

// Errors returned by the ledger.
var (
	ErrFoodNotFound     = errors.New("food not found")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrInvalidOperation = errors.New("operation must be add or subtract")
)

// Kind discriminates stock failures.
type Kind string

const (
	KindInsufficient Kind = "insufficient"
	KindReserved     Kind = "reserved"
	KindUnavailable  Kind = "unavailable"
	KindConflict     Kind = "conflict"
)

// Severity ranks how disruptive a stock failure is for the customer.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is a stock failure for a single food that the customer can act on.
type Error struct {
	Kind      Kind
	FoodID    uuid.UUID
	FoodName  string
	Requested int32
	Available int32
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnavailable:
		return fmt.Sprintf("stock %s: %s is not available", e.Kind, e.FoodName)
	case KindConflict:
		return fmt.Sprintf("stock %s: %s was modified concurrently", e.Kind, e.FoodName)
	default:
		return fmt.Sprintf("stock %s: %s requested %d, available %d", e.Kind, e.FoodName, e.Requested, e.Available)
	}
}

// Presentation is what a client needs to render a stock failure.
func (e *Error) Presentation() Presentation {
	return Describe(e.Kind, e.Available)
}

// Presentation maps a stock failure to transport and UI concerns.
type Presentation struct {
	Status      int
	Severity    Severity
	Message     string
	Suggestions []string
	Retryable   bool
}

// Describe is a pure lookup from (kind, available) to its presentation.
func Describe(kind Kind, available int32) Presentation {
	switch kind {
	case KindInsufficient:
		if available <= 0 {
			return Presentation{
				Status:   http.StatusConflict,
				Severity: SeverityCritical,
				Message:  "This item is sold out.",
				Suggestions: []string{
					"Remove this item from your cart",
					"Choose another menu item",
				},
			}
		}
		return Presentation{
			Status:   http.StatusConflict,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Only %d left in stock.", available),
			Suggestions: []string{
				fmt.Sprintf("Reduce quantity to %d", available),
				"Choose another menu item",
			},
		}
	case KindReserved:
		var suggestions []string
		if available > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Reduce quantity to %d", available))
		}
		suggestions = append(suggestions, "Choose another menu item")
		return Presentation{
			Status:      http.StatusConflict,
			Severity:    SeverityMedium,
			Message:     "The remaining portions are held by other orders.",
			Suggestions: suggestions,
		}
	case KindUnavailable:
		return Presentation{
			Status:   http.StatusConflict,
			Severity: SeverityCritical,
			Message:  "This item is no longer available.",
			Suggestions: []string{
				"Remove this item from your cart",
				"Choose another menu item",
			},
		}
	case KindConflict:
		return Presentation{
			Status:      http.StatusTooManyRequests,
			Severity:    SeverityLow,
			Message:     "Stock for this item changed while your request was processed.",
			Suggestions: []string{"Retry shortly"},
			Retryable:   true,
		}
	}
	return Presentation{
		Status:      http.StatusConflict,
		Severity:    SeverityHigh,
		Message:     "This item cannot be ordered right now.",
		Suggestions: []string{"Choose another menu item"},
	}
}

// InventoryError reports an adjustment that would break reserved <= stock.
type InventoryError struct {
	FoodID   uuid.UUID
	Stock    int32
	Reserved int32
	Delta    int32
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("inventory: subtracting %d from stock %d would drop below reserved %d", e.Delta, e.Stock, e.Reserved)
}

// Check reports whether requested units of f can be claimed right now.
// It returns nil or a *Error. Any shortfall is insufficient, whether the
// missing units were never stocked or are held by placed orders: those
// holds only end on cancellation.
func Check(f database.Food, requested int32) error {
	if f.Status != database.FoodStatusActive {
		return &Error{Kind: KindUnavailable, FoodID: f.ID, FoodName: f.Name, Requested: requested, Available: 0}
	}
	available := f.Stock - f.Reserved
	if available >= requested {
		return nil
	}
	return &Error{Kind: KindInsufficient, FoodID: f.ID, FoodName: f.Name, Requested: requested, Available: max(available, 0)}
}

func conflict(f database.Food, requested int32) *Error {
	return &Error{
		Kind:      KindConflict,
		FoodID:    f.ID,
		FoodName:  f.Name,
		Requested: requested,
		Available: max(f.Stock-f.Reserved, 0),
	}
}
