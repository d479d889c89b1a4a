package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/enum"
)

// Store is the persistence the ledger needs.
// Satisfied by *database.Queries; narrow interface for testability.
type Store interface {
	GetFood(ctx context.Context, id uuid.UUID) (database.Food, error)
	ReserveFoodStock(ctx context.Context, arg database.ReserveFoodStockParams) (database.Food, error)
	ReleaseFoodStock(ctx context.Context, arg database.ReleaseFoodStockParams) (database.Food, error)
	AdjustFoodStock(ctx context.Context, arg database.AdjustFoodStockParams) (database.Food, error)
}

// Info is the stock view of a single food.
type Info struct {
	FoodID     uuid.UUID `json:"food_id"`
	Stock      int32     `json:"stock"`
	Reserved   int32     `json:"reserved"`
	Available  int32     `json:"available"`
	MinStock   int32     `json:"min_stock"`
	IsLowStock bool      `json:"is_low_stock"`
	Version    int32     `json:"version"`
}

// InfoOf derives the stock view of f.
func InfoOf(f database.Food) Info {
	available := max(f.Stock-f.Reserved, 0)
	return Info{
		FoodID:     f.ID,
		Stock:      f.Stock,
		Reserved:   f.Reserved,
		Available:  available,
		MinStock:   f.MinStock,
		IsLowStock: available <= f.MinStock,
		Version:    f.Version,
	}
}

// Ledger owns every write to foods.stock and foods.reserved. Each write is
// conditioned on the version read just before it, so a concurrent writer
// never gets partially overwritten.
type Ledger struct {
	store Store
}

// NewLedger creates a Ledger. Bind it to a transaction-scoped store to make
// its writes part of that transaction.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Info returns the current stock view of a food.
func (l *Ledger) Info(ctx context.Context, foodID uuid.UUID) (Info, error) {
	f, err := l.food(ctx, foodID)
	if err != nil {
		return Info{}, err
	}
	return InfoOf(f), nil
}

// Reserve claims quantity units of a food. Nothing is written on failure.
func (l *Ledger) Reserve(ctx context.Context, foodID uuid.UUID, quantity int32) (Info, error) {
	if quantity <= 0 {
		return Info{}, ErrInvalidQuantity
	}
	f, err := l.food(ctx, foodID)
	if err != nil {
		return Info{}, err
	}
	if err := Check(f, quantity); err != nil {
		return Info{}, err
	}

	updated, err := l.store.ReserveFoodStock(ctx, database.ReserveFoodStockParams{
		ID:       foodID,
		Quantity: quantity,
		Version:  f.Version,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, l.explain(ctx, f, quantity)
	}
	if err != nil {
		return Info{}, fmt.Errorf("reserve stock: %w", err)
	}
	return InfoOf(updated), nil
}

// Release returns up to quantity reserved units. Releasing more than is
// reserved clamps reserved at zero.
func (l *Ledger) Release(ctx context.Context, foodID uuid.UUID, quantity int32) (Info, error) {
	if quantity <= 0 {
		return Info{}, ErrInvalidQuantity
	}
	f, err := l.food(ctx, foodID)
	if err != nil {
		return Info{}, err
	}

	updated, err := l.store.ReleaseFoodStock(ctx, database.ReleaseFoodStockParams{
		ID:       foodID,
		Quantity: quantity,
		Version:  f.Version,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, conflict(f, quantity)
	}
	if err != nil {
		return Info{}, fmt.Errorf("release stock: %w", err)
	}
	return InfoOf(updated), nil
}

// Adjust adds to or subtracts from the physical stock of a food. A subtract
// that would leave stock below reserved is rejected with *InventoryError.
func (l *Ledger) Adjust(ctx context.Context, foodID uuid.UUID, delta int32, operation string) (Info, error) {
	if delta <= 0 {
		return Info{}, ErrInvalidQuantity
	}
	signed := delta
	switch operation {
	case enum.StockOperationAdd:
	case enum.StockOperationSubtract:
		signed = -delta
	default:
		return Info{}, ErrInvalidOperation
	}

	f, err := l.food(ctx, foodID)
	if err != nil {
		return Info{}, err
	}
	if f.Stock+signed < f.Reserved {
		return Info{}, &InventoryError{FoodID: f.ID, Stock: f.Stock, Reserved: f.Reserved, Delta: delta}
	}

	updated, err := l.store.AdjustFoodStock(ctx, database.AdjustFoodStockParams{
		ID:      foodID,
		Delta:   signed,
		Version: f.Version,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, conflict(f, delta)
	}
	if err != nil {
		return Info{}, fmt.Errorf("adjust stock: %w", err)
	}
	return InfoOf(updated), nil
}

func (l *Ledger) food(ctx context.Context, foodID uuid.UUID) (database.Food, error) {
	f, err := l.store.GetFood(ctx, foodID)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Food{}, ErrFoodNotFound
	}
	if err != nil {
		return database.Food{}, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

// explain turns a conditional reserve that matched no row into a stock error.
// A moved version means another writer won; otherwise the row no longer
// satisfies the request.
func (l *Ledger) explain(ctx context.Context, seen database.Food, quantity int32) error {
	current, err := l.food(ctx, seen.ID)
	if err != nil {
		return err
	}
	if current.Version != seen.Version {
		return conflict(current, quantity)
	}
	if err := Check(current, quantity); err != nil {
		return err
	}
	return conflict(current, quantity)
}
