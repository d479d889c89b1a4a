package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Errors returned by the services.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = stock.ErrInvalidQuantity
	ErrFoodNotFound      = stock.ErrFoodNotFound
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidPrice      = errors.New("price must be > 0")
	ErrInvalidMinStock   = errors.New("min_stock must be >= 0")
	ErrInvalidFoodStatus = errors.New("status must be active or inactive")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FoodInvalidator drops cached catalog entries for changed foods.
// Satisfied by *cache.Cache.
type FoodInvalidator interface {
	InvalidateFoods(ctx context.Context, ids ...uuid.UUID) error
}

// notifier runs the side effects that follow a committed write. Failures
// are logged and never reach the caller.
type notifier struct {
	cache     FoodInvalidator
	publisher events.Publisher
	log       *zap.Logger
}

func newNotifier(cache FoodInvalidator, publisher events.Publisher, log *zap.Logger) notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return notifier{cache: cache, publisher: publisher, log: log}
}

func (n notifier) foodsChanged(ctx context.Context, ids ...uuid.UUID) {
	if n.cache == nil || len(ids) == 0 {
		return
	}
	if err := n.cache.InvalidateFoods(ctx, ids...); err != nil {
		n.log.Warn("cache invalidation failed", zap.Int("foods", len(ids)), zap.Error(err))
	}
}

func (n notifier) publish(ctx context.Context, eventType, subject string, payload any) {
	env, err := events.New(eventType, subject, payload)
	if err != nil {
		n.log.Error("build event failed", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := n.publisher.Publish(ctx, env); err != nil {
		n.log.Warn("publish event failed",
			zap.String("event_type", eventType),
			zap.String("event_id", env.EventID),
			zap.Error(err),
		)
	}
}

func (n notifier) stockLow(ctx context.Context, name string, info stock.Info) {
	if !info.IsLowStock {
		return
	}
	n.publish(ctx, events.TypeStockLow, "", events.StockLowPayload{
		FoodID:    info.FoodID.String(),
		FoodName:  name,
		Available: info.Available,
		MinStock:  info.MinStock,
	})
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
