package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/santapan/api/internal/cache"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/enum"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/stock"
)

// kvStore is an in-memory cache.Store.
type kvStore struct {
	data map[string][]byte
	ints map[string]int64
	gets int
}

func newKVStore() *kvStore {
	return &kvStore{data: map[string][]byte{}, ints: map[string]int64{}}
}

func (s *kvStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.gets++
	b, ok := s.data[key]
	return b, ok, nil
}
func (s *kvStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}
func (s *kvStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}
func (s *kvStore) Incr(_ context.Context, key string) (int64, error) {
	s.ints[key]++
	return s.ints[key], nil
}
func (s *kvStore) GetInt(_ context.Context, key string) (int64, error) {
	return s.ints[key], nil
}

// countingDB counts food list queries to observe cache hits.
type countingDB struct {
	*memDB
	listCalls int
	getCalls  int
}

func (c *countingDB) ListActiveFoods(ctx context.Context, arg database.ListActiveFoodsParams) ([]database.Food, error) {
	c.listCalls++
	return c.memDB.ListActiveFoods(ctx, arg)
}

func (c *countingDB) GetFood(ctx context.Context, id uuid.UUID) (database.Food, error) {
	c.getCalls++
	return c.memDB.GetFood(ctx, id)
}

func newCatalogFixture() (*CatalogService, *countingDB, *recordingPublisher) {
	db := &countingDB{memDB: newMemDB()}
	pub := &recordingPublisher{}
	c := cache.New(newKVStore(), time.Minute, nil)
	return NewCatalogService(db, c, pub, nil), db, pub
}

func TestCatalog_ListFoodsCachedUntilMutation(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	cat := db.addCategory("Rice")
	food := db.addFood("Nasi Campur", "27000.00", 10, 0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		foods, err := svc.ListFoods(ctx, FoodFilter{})
		if err != nil || len(foods) != 1 {
			t.Fatalf("list #%d: %d foods, err=%v", i+1, len(foods), err)
		}
	}
	if db.listCalls != 1 {
		t.Fatalf("list queries: got %d, want 1", db.listCalls)
	}

	if _, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Nasi Liwet", Price: mustDecimal("24000"), Stock: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	foods, _ := svc.ListFoods(ctx, FoodFilter{})
	if len(foods) != 2 || db.listCalls != 2 {
		t.Fatalf("after create: %d foods, %d queries", len(foods), db.listCalls)
	}

	if _, err := svc.AdjustStock(ctx, food.ID, 3, enum.StockOperationAdd); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, _ = svc.ListFoods(ctx, FoodFilter{}); db.listCalls != 3 {
		t.Fatalf("stock mutation did not invalidate lists: %d queries", db.listCalls)
	}
}

func TestCatalog_GetFoodInvalidatedByUpdate(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	cat := db.addCategory("Noodles")
	food := db.addFood("Mie Goreng", "18000.00", 10, 0, 2)
	ctx := context.Background()

	if _, err := svc.GetFood(ctx, food.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.GetFood(ctx, food.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if db.getCalls != 1 {
		t.Fatalf("db reads: got %d, want 1", db.getCalls)
	}

	if _, err := svc.UpdateFood(ctx, food.ID, FoodInput{CategoryID: cat.ID, Name: "Mie Goreng Jawa", Price: mustDecimal("19000"), MinStock: 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.GetFood(ctx, food.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Mie Goreng Jawa" || !got.Price.Equal(mustDecimal("19000")) {
		t.Errorf("stale food: %+v", got)
	}
	if got.Stock.Stock != 10 || db.food(food.ID).Version != 1 {
		t.Errorf("update touched the ledger: %+v", db.food(food.ID))
	}
}

func TestCatalog_DeleteFoodHidesIt(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	food := db.addFood("Bubur Ayam", "15000.00", 10, 0, 2)
	ctx := context.Background()

	if _, err := svc.GetFood(ctx, food.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := svc.DeleteFood(ctx, food.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetFood(ctx, food.ID); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound, got: %v", err)
	}
	if err := svc.DeleteFood(ctx, food.ID); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("second delete: expected ErrFoodNotFound, got: %v", err)
	}
}

func TestCatalog_UpdateWithoutStatusKeepsDeletedFoodHidden(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	cat := db.addCategory("Porridge")
	food := db.addFood("Bubur Kacang Hijau", "12000.00", 10, 0, 2)
	ctx := context.Background()

	if err := svc.DeleteFood(ctx, food.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.UpdateFood(ctx, food.ID, FoodInput{CategoryID: cat.ID, Name: "Bubur Kacang Ijo", Price: mustDecimal("13000")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := db.food(food.ID); got.Status != database.FoodStatusInactive || got.Name != "Bubur Kacang Ijo" {
		t.Fatalf("after update: status=%s name=%s, want inactive and renamed", got.Status, got.Name)
	}
	if _, err := svc.GetFood(ctx, food.ID); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound, got: %v", err)
	}

	// Reactivation is explicit.
	if _, err := svc.UpdateFood(ctx, food.ID, FoodInput{CategoryID: cat.ID, Name: "Bubur Kacang Ijo", Price: mustDecimal("13000"), Status: "active"}); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if got := db.food(food.ID); got.Status != database.FoodStatusActive {
		t.Fatalf("status: got %s, want active", got.Status)
	}
}

func TestCatalog_FoodValidation(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	cat := db.addCategory("Drinks")
	food := db.addFood("Es Teh", "5000.00", 10, 0, 2)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      FoodInput
		wantErr error
	}{
		{"zero price", FoodInput{CategoryID: cat.ID, Name: "x", Price: mustDecimal("0")}, ErrInvalidPrice},
		{"negative min stock", FoodInput{CategoryID: cat.ID, Name: "x", Price: mustDecimal("1"), MinStock: -1}, ErrInvalidMinStock},
		{"unknown category", FoodInput{CategoryID: uuid.New(), Name: "x", Price: mustDecimal("1")}, ErrCategoryNotFound},
		{"negative stock", FoodInput{CategoryID: cat.ID, Name: "x", Price: mustDecimal("1"), Stock: -5}, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateFood(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}

	_, err := svc.UpdateFood(ctx, food.ID, FoodInput{CategoryID: cat.ID, Name: "Es Teh", Price: mustDecimal("5000"), Status: "archived"})
	if !errors.Is(err, ErrInvalidFoodStatus) {
		t.Errorf("expected ErrInvalidFoodStatus, got: %v", err)
	}
	_, err = svc.UpdateFood(ctx, uuid.New(), FoodInput{CategoryID: cat.ID, Name: "Es Teh", Price: mustDecimal("5000")})
	if !errors.Is(err, ErrFoodNotFound) {
		t.Errorf("expected ErrFoodNotFound, got: %v", err)
	}
}

func TestCatalog_AdjustStock(t *testing.T) {
	svc, db, pub := newCatalogFixture()
	food := db.addFood("Kopi Tubruk", "9000.00", 10, 4, 3)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, food.ID, 7, enum.StockOperationSubtract)
	var invErr *stock.InventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *stock.InventoryError, got: %v", err)
	}

	info, err := svc.AdjustStock(ctx, food.ID, 4, enum.StockOperationSubtract)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if info.Stock != 6 || info.Available != 2 || !info.IsLowStock {
		t.Errorf("info: %+v", info)
	}
	if types := pub.types(); len(types) != 1 || types[0] != events.TypeStockLow {
		t.Errorf("events: %v", types)
	}

	low, err := svc.ListLowStock(ctx)
	if err != nil || len(low) != 1 || low[0].ID != food.ID {
		t.Errorf("low stock: %+v err=%v", low, err)
	}
}

func TestCatalog_ListCategories(t *testing.T) {
	svc, db, _ := newCatalogFixture()
	db.addCategory("Snacks")
	db.addCategory("Desserts")

	cats, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Desserts" {
		t.Errorf("categories: %+v", cats)
	}
}

func TestCatalog_NoCache(t *testing.T) {
	db := &countingDB{memDB: newMemDB()}
	svc := NewCatalogService(db, nil, events.Nop{}, nil)
	db.addFood("Cilok", "7000.00", 3, 0, 1)

	for i := 0; i < 2; i++ {
		if _, err := svc.ListFoods(context.Background(), FoodFilter{Search: "cil"}); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if db.listCalls != 2 {
		t.Errorf("list queries: got %d, want 2", db.listCalls)
	}
}
