package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore defines the DB methods needed to check out and manage orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	stock.Store

	GetCartByUser(ctx context.Context, userID uuid.UUID) (database.Cart, error)
	ListCartLines(ctx context.Context, cartID uuid.UUID) ([]database.ListCartLinesRow, error)
	ClearCartItems(ctx context.Context, cartID uuid.UUID) (int64, error)
	LockFoods(ctx context.Context, ids []uuid.UUID) ([]database.Food, error)

	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderStatusHistory(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
	ListOrderStatusHistory(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CheckoutRequest is the validated input for checking out a cart.
type CheckoutRequest struct {
	UserID          uuid.UUID
	DeliveryAddress string
	Phone           string
	Notes           string
}

// OrderDetail is an order with its items and status history.
type OrderDetail struct {
	Order   database.Order
	Items   []database.ListOrderItemsByOrderRow
	History []database.OrderStatusHistory
	Summary Summary
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
	notify   notifier
}

// NewOrderService creates a new OrderService. store serves reads outside a
// transaction; newStore binds a store to each transaction.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore, cache FoodInvalidator, publisher events.Publisher, log *zap.Logger) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		notify:   newNotifier(cache, publisher, log),
	}
}

type reservedLine struct {
	food database.Food
	line database.ListCartLinesRow
	info stock.Info
}

// Checkout converts the user's cart into a pending order in one
// transaction. Every line is re-validated against locked food rows first;
// a single failing line aborts the whole checkout with its *stock.Error.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*OrderDetail, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Load cart ---
	cart, err := store.GetCartByUser(ctx, req.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	lines, err := store.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// --- Lock foods in id order, then validate every line ---
	foods, err := lockFoods(ctx, store, foodIDsOfLines(lines))
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		food, ok := foods[line.FoodID]
		if !ok {
			return nil, &stock.Error{Kind: stock.KindUnavailable, FoodID: line.FoodID, FoodName: line.FoodName, Requested: line.Quantity}
		}
		if err := stock.Check(food, line.Quantity); err != nil {
			return nil, err
		}
	}

	// --- Reserve ---
	ledger := stock.NewLedger(store)
	reserved := make([]reservedLine, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		info, err := ledger.Reserve(ctx, line.FoodID, line.Quantity)
		if err != nil {
			return nil, err
		}
		food := foods[line.FoodID]
		total = total.Add(numericToDecimal(food.Price).Mul(decimal.NewFromInt32(line.Quantity)))
		reserved = append(reserved, reservedLine{food: food, line: line, info: info})
	}

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.UserID,
		TotalAmount:     decimalToNumeric(total),
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Notes:           textOrNull(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items with frozen prices ---
	items := make([]database.ListOrderItemsByOrderRow, 0, len(reserved))
	for _, r := range reserved {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			FoodID:   r.food.ID,
			Quantity: r.line.Quantity,
			Price:    r.food.Price,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, database.ListOrderItemsByOrderRow{
			ID:       item.ID,
			OrderID:  item.OrderID,
			FoodID:   item.FoodID,
			Quantity: item.Quantity,
			Price:    item.Price,
			FoodName: r.food.Name,
		})
	}

	// --- Clear cart ---
	if _, err := store.ClearCartItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	// --- Initial history ---
	hist, err := store.CreateOrderStatusHistory(ctx, database.CreateOrderStatusHistoryParams{
		OrderID:   order.ID,
		NewStatus: database.OrderStatusPending,
		UpdatedBy: req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("create status history: %w", err)
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notify.foodsChanged(ctx, foodIDsOfItems(items)...)
	s.notify.publish(ctx, events.TypeOrderCreated, order.UserID.String(), orderPayload(order, "", "", items))
	for _, r := range reserved {
		s.notify.stockLow(ctx, r.food.Name, r.info)
	}

	return &OrderDetail{
		Order:   order,
		Items:   items,
		History: []database.OrderStatusHistory{hist},
		Summary: summarizeItems(items),
	}, nil
}

// Cancel cancels one of the user's own orders and releases its stock.
// Orders owned by someone else are reported as not found.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID, note string) (*database.Order, error) {
	return s.transition(ctx, orderID, userID, database.OrderStatusCancelled, note, func(o database.Order) bool {
		return o.UserID == userID
	})
}

// UpdateStatus moves an order along its lifecycle on behalf of staff.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, status, note string) (*database.Order, error) {
	next, err := ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, actorID, next, note, nil)
}

// transition applies one status change, releasing stock when it cancels.
// visible, when set, hides orders the actor may not see.
func (s *OrderService) transition(ctx context.Context, orderID, actorID uuid.UUID, next database.OrderStatus, note string, visible func(database.Order) bool) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if visible != nil && !visible(current) {
		return nil, ErrOrderNotFound
	}
	if err := validateStatusTransition(current.Status, next); err != nil {
		return nil, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:       orderID,
		Status:   next,
		Status_2: current.Status,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		// Row is locked, so only a concurrent writer outside the lock gets here.
		return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	var items []database.ListOrderItemsByOrderRow
	if next == database.OrderStatusCancelled {
		items, err = store.ListOrderItemsByOrder(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("list order items: %w", err)
		}
		if err := releaseItems(ctx, store, items); err != nil {
			return nil, err
		}
	}

	if _, err := store.CreateOrderStatusHistory(ctx, database.CreateOrderStatusHistoryParams{
		OrderID:        orderID,
		PreviousStatus: database.NullOrderStatus{OrderStatus: current.Status, Valid: true},
		NewStatus:      next,
		UpdatedBy:      actorID,
		Note:           textOrNull(note),
	}); err != nil {
		return nil, fmt.Errorf("create status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	eventType := events.TypeOrderStatusChanged
	if next == database.OrderStatusCancelled {
		eventType = events.TypeOrderCancelled
		s.notify.foodsChanged(ctx, foodIDsOfItems(items)...)
	}
	s.notify.publish(ctx, eventType, updated.UserID.String(), orderPayload(updated, string(current.Status), note, items))

	return &updated, nil
}

// releaseItems gives back the reserved quantity of every order item,
// summed per food and applied in food id order.
func releaseItems(ctx context.Context, store OrderStore, items []database.ListOrderItemsByOrderRow) error {
	qty := map[uuid.UUID]int32{}
	for _, it := range items {
		qty[it.FoodID] += it.Quantity
	}
	ids := foodIDsOfItems(items)
	if len(ids) == 0 {
		return nil
	}
	if _, err := store.LockFoods(ctx, ids); err != nil {
		return fmt.Errorf("lock foods: %w", err)
	}

	ledger := stock.NewLedger(store)
	for _, id := range ids {
		if _, err := ledger.Release(ctx, id, qty[id]); err != nil {
			return fmt.Errorf("release stock: %w", err)
		}
	}
	return nil
}

// --- Reads ---

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]database.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, database.ListOrdersByUserParams{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetUserOrder returns one of the user's own orders.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error) {
	d, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if d.Order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return d, nil
}

// ListOrders returns every order, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status string, limit, offset int32) ([]database.Order, error) {
	filter := database.NullOrderStatus{}
	if status != "" {
		st, err := ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter = database.NullOrderStatus{OrderStatus: st, Valid: true}
	}
	orders, err := s.store.ListOrders(ctx, database.ListOrdersParams{Status: filter, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns an order with its items and history.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	history, err := s.store.ListOrderStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return &OrderDetail{Order: order, Items: items, History: history, Summary: summarizeItems(items)}, nil
}

// --- Helpers ---

func lockFoods(ctx context.Context, store OrderStore, ids []uuid.UUID) (map[uuid.UUID]database.Food, error) {
	locked, err := store.LockFoods(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock foods: %w", err)
	}
	foods := make(map[uuid.UUID]database.Food, len(locked))
	for _, f := range locked {
		foods[f.ID] = f
	}
	return foods, nil
}

func foodIDsOfLines(lines []database.ListCartLinesRow) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.FoodID)
	}
	return sortedUnique(ids)
}

func foodIDsOfItems(items []database.ListOrderItemsByOrderRow) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.FoodID)
	}
	return sortedUnique(ids)
}

// sortedUnique orders ids the same way LockFoods locks them.
func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return slices.Compact(ids)
}

func summarizeItems(items []database.ListOrderItemsByOrderRow) Summary {
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, CartLine{Quantity: it.Quantity, Price: numericToDecimal(it.Price)})
	}
	return Summarize(lines)
}

func orderPayload(o database.Order, previous, note string, items []database.ListOrderItemsByOrderRow) events.OrderPayload {
	p := events.OrderPayload{
		OrderID:        o.ID.String(),
		UserID:         o.UserID.String(),
		Status:         string(o.Status),
		PreviousStatus: previous,
		TotalAmount:    numericToDecimal(o.TotalAmount).StringFixed(2),
		Note:           note,
	}
	for _, it := range items {
		p.Items = append(p.Items, events.OrderItemPayload{
			FoodID:   it.FoodID.String(),
			Quantity: it.Quantity,
			Price:    numericToDecimal(it.Price).StringFixed(2),
		})
	}
	return p
}
