package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/events"
)

// --- In-memory transactional store ---

// memState is everything the fake database holds.
type memState struct {
	foods      map[uuid.UUID]database.Food
	categories map[uuid.UUID]database.Category
	carts      map[uuid.UUID]database.Cart
	cartItems  map[uuid.UUID]database.CartItem
	orders     map[uuid.UUID]database.Order
	orderItems []database.OrderItem
	history    []database.OrderStatusHistory
}

func (s memState) clone() memState {
	return memState{
		foods:      maps.Clone(s.foods),
		categories: maps.Clone(s.categories),
		carts:      maps.Clone(s.carts),
		cartItems:  maps.Clone(s.cartItems),
		orders:     maps.Clone(s.orders),
		orderItems: slices.Clone(s.orderItems),
		history:    slices.Clone(s.history),
	}
}

// memDB implements TxBeginner and every store interface. Begin snapshots
// the state; Rollback of an uncommitted tx restores the snapshot.
type memDB struct {
	state memState
	clock time.Time
	// fail makes the named method return the error.
	fail map[string]error
	// beforeCartAdd runs once at the start of the next AddCartItem.
	beforeCartAdd func()

	commits   int
	rollbacks int
}

func newMemDB() *memDB {
	return &memDB{
		state: memState{
			foods:      map[uuid.UUID]database.Food{},
			categories: map[uuid.UUID]database.Category{},
			carts:      map[uuid.UUID]database.Cart{},
			cartItems:  map[uuid.UUID]database.CartItem{},
			orders:     map[uuid.UUID]database.Order{},
		},
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		fail:  map[string]error{},
	}
}

func (db *memDB) now() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) failure(method string) error {
	return db.fail[method]
}

func (db *memDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := db.failure("Begin"); err != nil {
		return nil, err
	}
	return &memTx{db: db, snapshot: db.state.clone()}, nil
}

func (db *memDB) orderStoreFactory() NewOrderStore {
	return func(database.DBTX) OrderStore { return db }
}

// --- Seed helpers ---

func (db *memDB) addCategory(name string) database.Category {
	c := database.Category{ID: uuid.New(), Name: name, IsActive: true, CreatedAt: db.now()}
	db.state.categories[c.ID] = c
	return c
}

func (db *memDB) addFood(name, price string, stockQty, reserved, minStock int32) database.Food {
	f := database.Food{
		ID:        uuid.New(),
		Name:      name,
		Price:     makeNumeric(price),
		Stock:     stockQty,
		Reserved:  reserved,
		MinStock:  minStock,
		Version:   1,
		Status:    database.FoodStatusActive,
		CreatedAt: db.now(),
		UpdatedAt: db.now(),
	}
	db.state.foods[f.ID] = f
	return f
}

func (db *memDB) food(id uuid.UUID) database.Food {
	return db.state.foods[id]
}

func (db *memDB) setPrice(id uuid.UUID, price string) {
	f := db.state.foods[id]
	f.Price = makeNumeric(price)
	db.state.foods[id] = f
}

func (db *memDB) historyOf(orderID uuid.UUID) []database.OrderStatusHistory {
	var out []database.OrderStatusHistory
	for _, h := range db.state.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

// --- Foods ---

func (db *memDB) GetFood(_ context.Context, id uuid.UUID) (database.Food, error) {
	if err := db.failure("GetFood"); err != nil {
		return database.Food{}, err
	}
	f, ok := db.state.foods[id]
	if !ok {
		return database.Food{}, pgx.ErrNoRows
	}
	return f, nil
}

func (db *memDB) LockFoods(_ context.Context, ids []uuid.UUID) ([]database.Food, error) {
	if err := db.failure("LockFoods"); err != nil {
		return nil, err
	}
	var out []database.Food
	for _, id := range sortedUnique(slices.Clone(ids)) {
		if f, ok := db.state.foods[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (db *memDB) ReserveFoodStock(_ context.Context, arg database.ReserveFoodStockParams) (database.Food, error) {
	if err := db.failure("ReserveFoodStock"); err != nil {
		return database.Food{}, err
	}
	f, ok := db.state.foods[arg.ID]
	if !ok || f.Version != arg.Version || f.Stock-f.Reserved < arg.Quantity {
		return database.Food{}, pgx.ErrNoRows
	}
	f.Reserved += arg.Quantity
	f.Version++
	f.UpdatedAt = db.now()
	db.state.foods[f.ID] = f
	return f, nil
}

func (db *memDB) ReleaseFoodStock(_ context.Context, arg database.ReleaseFoodStockParams) (database.Food, error) {
	if err := db.failure("ReleaseFoodStock"); err != nil {
		return database.Food{}, err
	}
	f, ok := db.state.foods[arg.ID]
	if !ok || f.Version != arg.Version {
		return database.Food{}, pgx.ErrNoRows
	}
	f.Reserved = max(f.Reserved-arg.Quantity, 0)
	f.Version++
	f.UpdatedAt = db.now()
	db.state.foods[f.ID] = f
	return f, nil
}

func (db *memDB) AdjustFoodStock(_ context.Context, arg database.AdjustFoodStockParams) (database.Food, error) {
	if err := db.failure("AdjustFoodStock"); err != nil {
		return database.Food{}, err
	}
	f, ok := db.state.foods[arg.ID]
	if !ok || f.Version != arg.Version || f.Stock+arg.Delta < f.Reserved {
		return database.Food{}, pgx.ErrNoRows
	}
	f.Stock += arg.Delta
	f.Version++
	f.UpdatedAt = db.now()
	db.state.foods[f.ID] = f
	return f, nil
}

func (db *memDB) ListActiveFoods(_ context.Context, arg database.ListActiveFoodsParams) ([]database.Food, error) {
	if err := db.failure("ListActiveFoods"); err != nil {
		return nil, err
	}
	var out []database.Food
	for _, f := range db.state.foods {
		if f.Status != database.FoodStatusActive {
			continue
		}
		if arg.CategoryID.Valid && uuid.UUID(arg.CategoryID.Bytes) != f.CategoryID {
			continue
		}
		if arg.Search.Valid && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(arg.Search.String)) {
			continue
		}
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b database.Food) int { return strings.Compare(a.Name, b.Name) })
	return page(out, arg.Limit, arg.Offset), nil
}

func (db *memDB) ListLowStockFoods(_ context.Context) ([]database.Food, error) {
	var out []database.Food
	for _, f := range db.state.foods {
		if f.Status == database.FoodStatusActive && f.Stock-f.Reserved <= f.MinStock {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b database.Food) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (db *memDB) CreateFood(_ context.Context, arg database.CreateFoodParams) (database.Food, error) {
	f := database.Food{
		ID:          uuid.New(),
		CategoryID:  arg.CategoryID,
		Name:        arg.Name,
		Description: arg.Description,
		Price:       arg.Price,
		ImageUrl:    arg.ImageUrl,
		Stock:       arg.Stock,
		MinStock:    arg.MinStock,
		Version:     1,
		Status:      database.FoodStatusActive,
		CreatedAt:   db.now(),
		UpdatedAt:   db.now(),
	}
	db.state.foods[f.ID] = f
	return f, nil
}

func (db *memDB) UpdateFood(_ context.Context, arg database.UpdateFoodParams) (database.Food, error) {
	f, ok := db.state.foods[arg.ID]
	if !ok {
		return database.Food{}, pgx.ErrNoRows
	}
	f.CategoryID = arg.CategoryID
	f.Name = arg.Name
	f.Description = arg.Description
	f.Price = arg.Price
	f.ImageUrl = arg.ImageUrl
	f.MinStock = arg.MinStock
	if arg.Status.Valid {
		f.Status = arg.Status.FoodStatus
	}
	f.UpdatedAt = db.now()
	db.state.foods[f.ID] = f
	return f, nil
}

func (db *memDB) SoftDeleteFood(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	f, ok := db.state.foods[id]
	if !ok || f.Status != database.FoodStatusActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	f.Status = database.FoodStatusInactive
	db.state.foods[id] = f
	return id, nil
}

func (db *memDB) GetCategory(_ context.Context, id uuid.UUID) (database.Category, error) {
	c, ok := db.state.categories[id]
	if !ok || !c.IsActive {
		return database.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (db *memDB) ListActiveCategories(_ context.Context) ([]database.Category, error) {
	if err := db.failure("ListActiveCategories"); err != nil {
		return nil, err
	}
	var out []database.Category
	for _, c := range db.state.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b database.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// --- Carts ---

func (db *memDB) UpsertCart(_ context.Context, userID uuid.UUID) (database.Cart, error) {
	for _, c := range db.state.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := database.Cart{ID: uuid.New(), UserID: userID, CreatedAt: db.now(), UpdatedAt: db.now()}
	db.state.carts[c.ID] = c
	return c, nil
}

func (db *memDB) GetCartByUser(_ context.Context, userID uuid.UUID) (database.Cart, error) {
	if err := db.failure("GetCartByUser"); err != nil {
		return database.Cart{}, err
	}
	for _, c := range db.state.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return database.Cart{}, pgx.ErrNoRows
}

func (db *memDB) GetCartItem(_ context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
	it, ok := db.state.cartItems[arg.ID]
	if !ok || it.CartID != arg.CartID {
		return database.CartItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (db *memDB) GetCartItemByFood(_ context.Context, arg database.GetCartItemByFoodParams) (database.CartItem, error) {
	for _, it := range db.state.cartItems {
		if it.CartID == arg.CartID && it.FoodID == arg.FoodID {
			return it, nil
		}
	}
	return database.CartItem{}, pgx.ErrNoRows
}

func (db *memDB) AddCartItem(ctx context.Context, arg database.AddCartItemParams) (database.CartItem, error) {
	if db.beforeCartAdd != nil {
		hook := db.beforeCartAdd
		db.beforeCartAdd = nil
		hook()
	}
	if arg.Quantity <= 0 {
		return database.CartItem{}, errors.New("violates check constraint cart_items_quantity_check")
	}
	f, ok := db.state.foods[arg.FoodID]
	if !ok || f.Status != database.FoodStatusActive {
		return database.CartItem{}, pgx.ErrNoRows
	}
	it, err := db.GetCartItemByFood(ctx, database.GetCartItemByFoodParams{CartID: arg.CartID, FoodID: arg.FoodID})
	if errors.Is(err, pgx.ErrNoRows) {
		it = database.CartItem{ID: uuid.New(), CartID: arg.CartID, FoodID: arg.FoodID, CreatedAt: db.now()}
	}
	if it.Quantity+arg.Quantity > f.Stock-f.Reserved {
		return database.CartItem{}, pgx.ErrNoRows
	}
	it.Quantity += arg.Quantity
	it.UpdatedAt = db.now()
	db.state.cartItems[it.ID] = it
	return it, nil
}

func (db *memDB) UpdateCartItemQuantity(_ context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error) {
	it, ok := db.state.cartItems[arg.ID]
	if !ok || it.CartID != arg.CartID {
		return database.CartItem{}, pgx.ErrNoRows
	}
	it.Quantity = arg.Quantity
	it.UpdatedAt = db.now()
	db.state.cartItems[it.ID] = it
	return it, nil
}

func (db *memDB) DeleteCartItem(_ context.Context, arg database.DeleteCartItemParams) (int64, error) {
	it, ok := db.state.cartItems[arg.ID]
	if !ok || it.CartID != arg.CartID {
		return 0, nil
	}
	delete(db.state.cartItems, arg.ID)
	return 1, nil
}

func (db *memDB) ClearCartItems(_ context.Context, cartID uuid.UUID) (int64, error) {
	if err := db.failure("ClearCartItems"); err != nil {
		return 0, err
	}
	var n int64
	for id, it := range db.state.cartItems {
		if it.CartID == cartID {
			delete(db.state.cartItems, id)
			n++
		}
	}
	return n, nil
}

func (db *memDB) ListCartLines(_ context.Context, cartID uuid.UUID) ([]database.ListCartLinesRow, error) {
	var out []database.ListCartLinesRow
	for _, it := range db.state.cartItems {
		if it.CartID != cartID {
			continue
		}
		f := db.state.foods[it.FoodID]
		out = append(out, database.ListCartLinesRow{
			ID:           it.ID,
			CartID:       it.CartID,
			FoodID:       it.FoodID,
			Quantity:     it.Quantity,
			CreatedAt:    it.CreatedAt,
			UpdatedAt:    it.UpdatedAt,
			FoodName:     f.Name,
			FoodPrice:    f.Price,
			FoodImageUrl: f.ImageUrl,
			FoodStock:    f.Stock,
			FoodReserved: f.Reserved,
			FoodStatus:   f.Status,
		})
	}
	slices.SortFunc(out, func(a, b database.ListCartLinesRow) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (db *memDB) cartItemCount(userID uuid.UUID) int {
	n := 0
	for _, c := range db.state.carts {
		if c.UserID != userID {
			continue
		}
		for _, it := range db.state.cartItems {
			if it.CartID == c.ID {
				n++
			}
		}
	}
	return n
}

// --- Orders ---

func (db *memDB) CreateOrder(_ context.Context, arg database.CreateOrderParams) (database.Order, error) {
	if err := db.failure("CreateOrder"); err != nil {
		return database.Order{}, err
	}
	o := database.Order{
		ID:              uuid.New(),
		UserID:          arg.UserID,
		TotalAmount:     arg.TotalAmount,
		Status:          database.OrderStatusPending,
		DeliveryAddress: arg.DeliveryAddress,
		Phone:           arg.Phone,
		Notes:           arg.Notes,
		OrderDate:       db.now(),
		UpdatedAt:       db.now(),
	}
	db.state.orders[o.ID] = o
	return o, nil
}

func (db *memDB) CreateOrderItem(_ context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if err := db.failure("CreateOrderItem"); err != nil {
		return database.OrderItem{}, err
	}
	it := database.OrderItem{ID: uuid.New(), OrderID: arg.OrderID, FoodID: arg.FoodID, Quantity: arg.Quantity, Price: arg.Price}
	db.state.orderItems = append(db.state.orderItems, it)
	return it, nil
}

func (db *memDB) CreateOrderStatusHistory(_ context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error) {
	if err := db.failure("CreateOrderStatusHistory"); err != nil {
		return database.OrderStatusHistory{}, err
	}
	h := database.OrderStatusHistory{
		ID:             uuid.New(),
		OrderID:        arg.OrderID,
		PreviousStatus: arg.PreviousStatus,
		NewStatus:      arg.NewStatus,
		UpdatedBy:      arg.UpdatedBy,
		Note:           arg.Note,
		CreatedAt:      db.now(),
	}
	db.state.history = append(db.state.history, h)
	return h, nil
}

func (db *memDB) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := db.state.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (db *memDB) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return db.GetOrder(ctx, id)
}

func (db *memDB) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := db.state.orders[arg.ID]
	if !ok || o.Status != arg.Status_2 {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = db.now()
	db.state.orders[o.ID] = o
	return o, nil
}

func (db *memDB) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error) {
	var out []database.ListOrderItemsByOrderRow
	for _, it := range db.state.orderItems {
		if it.OrderID != orderID {
			continue
		}
		out = append(out, database.ListOrderItemsByOrderRow{
			ID:       it.ID,
			OrderID:  it.OrderID,
			FoodID:   it.FoodID,
			Quantity: it.Quantity,
			Price:    it.Price,
			FoodName: db.state.foods[it.FoodID].Name,
		})
	}
	return out, nil
}

func (db *memDB) ListOrderStatusHistory(_ context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error) {
	return db.historyOf(orderID), nil
}

func (db *memDB) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	var out []database.Order
	for _, o := range db.state.orders {
		if arg.Status.Valid && o.Status != arg.Status.OrderStatus {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b database.Order) int { return b.OrderDate.Compare(a.OrderDate) })
	return page(out, arg.Limit, arg.Offset), nil
}

func (db *memDB) ListOrdersByUser(_ context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error) {
	var out []database.Order
	for _, o := range db.state.orders {
		if o.UserID == arg.UserID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b database.Order) int { return b.OrderDate.Compare(a.OrderDate) })
	return page(out, arg.Limit, arg.Offset), nil
}

func page[T any](rows []T, limit, offset int32) []T {
	if int(offset) >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && int(limit) < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// --- Transaction ---

// memTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type memTx struct {
	db       *memDB
	snapshot memState
	done     bool
}

func (tx *memTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	if err := tx.db.failure("Commit"); err != nil {
		tx.db.state = tx.snapshot
		tx.done = true
		return err
	}
	tx.done = true
	tx.db.commits++
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.db.state = tx.snapshot
	tx.done = true
	tx.db.rollbacks++
	return nil
}

func (tx *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (tx *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (tx *memTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (tx *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (tx *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (tx *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (tx *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (tx *memTx) Conn() *pgx.Conn { panic("not implemented") }

// --- Collaborators ---

type recordingPublisher struct {
	events []events.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.events = append(p.events, env)
	return p.err
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type recordingInvalidator struct {
	calls [][]uuid.UUID
}

func (r *recordingInvalidator) InvalidateFoods(_ context.Context, ids ...uuid.UUID) error {
	r.calls = append(r.calls, ids)
	return nil
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	return numericToDecimal(n).Equal(mustDecimal(expected))
}
