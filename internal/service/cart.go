package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
)

// CartStore defines the DB methods needed to manage carts.
// Satisfied by *database.Queries; narrow interface for testability.
type CartStore interface {
	GetFood(ctx context.Context, id uuid.UUID) (database.Food, error)
	UpsertCart(ctx context.Context, userID uuid.UUID) (database.Cart, error)
	GetCartByUser(ctx context.Context, userID uuid.UUID) (database.Cart, error)
	GetCartItem(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error)
	GetCartItemByFood(ctx context.Context, arg database.GetCartItemByFoodParams) (database.CartItem, error)
	AddCartItem(ctx context.Context, arg database.AddCartItemParams) (database.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (int64, error)
	ClearCartItems(ctx context.Context, cartID uuid.UUID) (int64, error)
	ListCartLines(ctx context.Context, cartID uuid.UUID) ([]database.ListCartLinesRow, error)
}

// Cart is a user's cart priced at current food prices.
type Cart struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Lines   []CartLine
	Summary Summary
}

// CartLine is one cart item joined with its food.
type CartLine struct {
	ItemID    uuid.UUID
	FoodID    uuid.UUID
	FoodName  string
	ImageURL  string
	Quantity  int32
	Price     decimal.Decimal
	Subtotal  decimal.Decimal
	Available int32
	Active    bool
}

// Summary aggregates a set of priced lines.
type Summary struct {
	TotalItems  int32
	TotalAmount decimal.Decimal
	ItemCount   int
}

// Summarize totals lines. TotalItems counts units, ItemCount counts lines.
func Summarize(lines []CartLine) Summary {
	s := Summary{TotalAmount: decimal.Zero}
	for _, l := range lines {
		s.TotalItems += l.Quantity
		s.TotalAmount = s.TotalAmount.Add(l.Price.Mul(decimal.NewFromInt32(l.Quantity)))
		s.ItemCount++
	}
	return s
}

// CartService handles cart business logic. Cart writes validate stock but
// never reserve it; reservation happens once, at checkout.
type CartService struct {
	store CartStore
}

// NewCartService creates a new CartService.
func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// Get returns the user's cart. A user without a cart gets an empty one.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	c, err := s.store.GetCartByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Cart{UserID: userID, Lines: []CartLine{}, Summary: Summarize(nil)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := s.store.ListCartLines(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	lines := toCartLines(rows)
	return &Cart{ID: c.ID, UserID: userID, Lines: lines, Summary: Summarize(lines)}, nil
}

// AddItem adds quantity of a food, merging with an existing line for the
// same food. The merge and the availability check are a single statement,
// so concurrent adds to one line never lose an increment.
func (s *CartService) AddItem(ctx context.Context, userID, foodID uuid.UUID, quantity int32) (database.CartItem, error) {
	if quantity <= 0 {
		return database.CartItem{}, ErrInvalidQuantity
	}
	if _, err := s.activeFood(ctx, foodID); err != nil {
		return database.CartItem{}, err
	}

	c, err := s.store.UpsertCart(ctx, userID)
	if err != nil {
		return database.CartItem{}, fmt.Errorf("upsert cart: %w", err)
	}

	item, err := s.store.AddCartItem(ctx, database.AddCartItemParams{
		CartID:   c.ID,
		Quantity: quantity,
		FoodID:   foodID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return database.CartItem{}, s.explainAdd(ctx, c.ID, foodID, quantity)
	}
	if err != nil {
		return database.CartItem{}, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

// explainAdd reports why a guarded add matched no row, against the line and
// food as they are now.
func (s *CartService) explainAdd(ctx context.Context, cartID, foodID uuid.UUID, quantity int32) error {
	food, err := s.activeFood(ctx, foodID)
	if err != nil {
		return err
	}
	total := quantity
	existing, err := s.store.GetCartItemByFood(ctx, database.GetCartItemByFoodParams{CartID: cartID, FoodID: foodID})
	switch {
	case err == nil:
		total += existing.Quantity
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("get cart item: %w", err)
	}
	if err := stock.Check(food, total); err != nil {
		return err
	}
	// Availability moved back between the write and this read.
	return &stock.Error{
		Kind:      stock.KindConflict,
		FoodID:    food.ID,
		FoodName:  food.Name,
		Requested: total,
		Available: max(food.Stock-food.Reserved, 0),
	}
}

// UpdateItem sets the quantity of a cart line. Quantity 0 deletes the line
// and returns nil; deleting a line that is already gone is not an error.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int32) (*database.CartItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		if _, err := s.RemoveItem(ctx, userID, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	c, err := s.store.GetCartByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	item, err := s.store.GetCartItem(ctx, database.GetCartItemParams{ID: itemID, CartID: c.ID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}

	food, err := s.store.GetFood(ctx, item.FoodID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}
	if err := stock.Check(food, quantity); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateCartItemQuantity(ctx, database.UpdateCartItemQuantityParams{
		ID:       itemID,
		CartID:   c.ID,
		Quantity: quantity,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return &updated, nil
}

// RemoveItem deletes a cart line and reports whether it existed.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	c, err := s.store.GetCartByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cart: %w", err)
	}
	n, err := s.store.DeleteCartItem(ctx, database.DeleteCartItemParams{ID: itemID, CartID: c.ID})
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return n > 0, nil
}

// Clear empties the user's cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	c, err := s.store.GetCartByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cart: %w", err)
	}
	n, err := s.store.ClearCartItems(ctx, c.ID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return n, nil
}

func (s *CartService) activeFood(ctx context.Context, foodID uuid.UUID) (database.Food, error) {
	food, err := s.store.GetFood(ctx, foodID)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Food{}, ErrFoodNotFound
	}
	if err != nil {
		return database.Food{}, fmt.Errorf("get food: %w", err)
	}
	if food.Status != database.FoodStatusActive {
		return database.Food{}, ErrFoodNotFound
	}
	return food, nil
}

func toCartLines(rows []database.ListCartLinesRow) []CartLine {
	lines := make([]CartLine, 0, len(rows))
	for _, r := range rows {
		price := numericToDecimal(r.FoodPrice)
		lines = append(lines, CartLine{
			ItemID:    r.ID,
			FoodID:    r.FoodID,
			FoodName:  r.FoodName,
			ImageURL:  r.FoodImageUrl.String,
			Quantity:  r.Quantity,
			Price:     price,
			Subtotal:  price.Mul(decimal.NewFromInt32(r.Quantity)),
			Available: max(r.FoodStock-r.FoodReserved, 0),
			Active:    r.FoodStatus == database.FoodStatusActive,
		})
	}
	return lines
}
