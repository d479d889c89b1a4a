package service

import (
	"fmt"

	"github.com/santapan/api/internal/database"
)

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
// Completed and cancelled have no entry and are terminal.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPending:   {database.OrderStatusConfirmed, database.OrderStatusCancelled},
	database.OrderStatusConfirmed: {database.OrderStatusPreparing, database.OrderStatusCancelled},
	database.OrderStatusPreparing: {database.OrderStatusDelivery},
	database.OrderStatusDelivery:  {database.OrderStatusCompleted},
}

// CanTransition reports whether an order may move from current to next.
func CanTransition(current, next database.OrderStatus) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s database.OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// ParseOrderStatus validates a client-supplied status.
func ParseOrderStatus(s string) (database.OrderStatus, error) {
	status := database.OrderStatus(s)
	switch status {
	case database.OrderStatusPending, database.OrderStatusConfirmed,
		database.OrderStatusPreparing, database.OrderStatusDelivery,
		database.OrderStatusCompleted, database.OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func validateStatusTransition(current, next database.OrderStatus) error {
	if !CanTransition(current, next) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
	}
	return nil
}
