package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/santapan/api/internal/cache"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogStore defines the DB methods needed to browse and administer foods.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	stock.Store

	ListActiveFoods(ctx context.Context, arg database.ListActiveFoodsParams) ([]database.Food, error)
	ListLowStockFoods(ctx context.Context) ([]database.Food, error)
	CreateFood(ctx context.Context, arg database.CreateFoodParams) (database.Food, error)
	UpdateFood(ctx context.Context, arg database.UpdateFoodParams) (database.Food, error)
	SoftDeleteFood(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	GetCategory(ctx context.Context, id uuid.UUID) (database.Category, error)
	ListActiveCategories(ctx context.Context) ([]database.Category, error)
}

// Food is the catalog view of a food, with its live stock.
type Food struct {
	ID          uuid.UUID       `json:"id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      string          `json:"status"`
	Stock       stock.Info      `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category is the catalog view of a category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// FoodFilter narrows ListFoods. A zero Limit means the default page size.
type FoodFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Limit      int32
	Offset     int32
}

// FoodInput is the writable part of a food. Stock is only read on create;
// afterwards it changes through AdjustStock alone.
type FoodInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int32
	MinStock    int32
	Status      string
}

const defaultPageSize = 20

// CatalogService serves the food catalog through the cache and applies
// admin changes, invalidating what they touch.
type CatalogService struct {
	store  CatalogStore
	ledger *stock.Ledger
	cache  *cache.Cache
	notify notifier
}

// NewCatalogService creates a new CatalogService. c may be nil.
func NewCatalogService(store CatalogStore, c *cache.Cache, publisher events.Publisher, log *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		ledger: stock.NewLedger(store),
		cache:  c,
		notify: newNotifier(c, publisher, log),
	}
}

// ListFoods returns active foods. Pages are cached under the current list
// generation.
func (s *CatalogService) ListFoods(ctx context.Context, f FoodFilter) ([]Food, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = defaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	params := database.ListActiveFoodsParams{
		Search: textOrNull(strings.TrimSpace(f.Search)),
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	categoryKey := ""
	if f.CategoryID != nil {
		params.CategoryID = pgtype.UUID{Bytes: *f.CategoryID, Valid: true}
		categoryKey = f.CategoryID.String()
	}

	load := func(ctx context.Context) ([]Food, error) {
		rows, err := s.store.ListActiveFoods(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list foods: %w", err)
		}
		return toFoods(rows), nil
	}

	version := s.cache.ListVersion(ctx)
	if version == 0 {
		return load(ctx)
	}
	key := cache.Keys.FoodList(version, categoryKey, f.Search, f.Limit, f.Offset)
	return cache.Aside(ctx, s.cache, key, 0, load)
}

// GetFood returns one active food.
func (s *CatalogService) GetFood(ctx context.Context, id uuid.UUID) (Food, error) {
	return cache.Aside(ctx, s.cache, cache.Keys.Food(id), 0, func(ctx context.Context) (Food, error) {
		f, err := s.store.GetFood(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return Food{}, ErrFoodNotFound
		}
		if err != nil {
			return Food{}, fmt.Errorf("get food: %w", err)
		}
		if f.Status != database.FoodStatusActive {
			return Food{}, ErrFoodNotFound
		}
		return toFood(f), nil
	})
}

// StockInfo returns the live stock view of a food, bypassing the cache.
func (s *CatalogService) StockInfo(ctx context.Context, id uuid.UUID) (stock.Info, error) {
	return s.ledger.Info(ctx, id)
}

// ListCategories returns active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]Category, error) {
	return cache.Aside(ctx, s.cache, cache.Keys.Categories(), 0, func(ctx context.Context) ([]Category, error) {
		rows, err := s.store.ListActiveCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out := make([]Category, 0, len(rows))
		for _, c := range rows {
			out = append(out, Category{ID: c.ID, Name: c.Name, Description: c.Description.String})
		}
		return out, nil
	})
}

// --- Admin ---

// CreateFood adds a food with its opening stock.
func (s *CatalogService) CreateFood(ctx context.Context, in FoodInput) (Food, error) {
	if err := s.validate(ctx, in); err != nil {
		return Food{}, err
	}
	if in.Stock < 0 {
		return Food{}, ErrInvalidQuantity
	}
	f, err := s.store.CreateFood(ctx, database.CreateFoodParams{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: textOrNull(in.Description),
		Price:       decimalToNumeric(in.Price),
		ImageUrl:    textOrNull(in.ImageURL),
		Stock:       in.Stock,
		MinStock:    in.MinStock,
	})
	if err != nil {
		return Food{}, fmt.Errorf("create food: %w", err)
	}
	s.bumpLists(ctx)
	return toFood(f), nil
}

// UpdateFood replaces the descriptive fields of a food. Stock, reserved and
// version are never touched here. An empty status keeps the current one, so
// a deleted food stays hidden unless it is reactivated explicitly.
func (s *CatalogService) UpdateFood(ctx context.Context, id uuid.UUID, in FoodInput) (Food, error) {
	var status database.NullFoodStatus
	if in.Status != "" {
		status = database.NullFoodStatus{FoodStatus: database.FoodStatus(in.Status), Valid: true}
		if status.FoodStatus != database.FoodStatusActive && status.FoodStatus != database.FoodStatusInactive {
			return Food{}, ErrInvalidFoodStatus
		}
	}
	if err := s.validate(ctx, in); err != nil {
		return Food{}, err
	}
	f, err := s.store.UpdateFood(ctx, database.UpdateFoodParams{
		ID:          id,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: textOrNull(in.Description),
		Price:       decimalToNumeric(in.Price),
		ImageUrl:    textOrNull(in.ImageURL),
		MinStock:    in.MinStock,
		Status:      status,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Food{}, ErrFoodNotFound
	}
	if err != nil {
		return Food{}, fmt.Errorf("update food: %w", err)
	}
	s.notify.foodsChanged(ctx, id)
	return toFood(f), nil
}

// DeleteFood hides a food from the catalog. Existing orders keep it.
func (s *CatalogService) DeleteFood(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.SoftDeleteFood(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("delete food: %w", err)
	}
	s.notify.foodsChanged(ctx, id)
	return nil
}

// AdjustStock changes the physical stock of a food through the ledger.
func (s *CatalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int32, operation string) (stock.Info, error) {
	info, err := s.ledger.Adjust(ctx, id, delta, operation)
	if err != nil {
		return stock.Info{}, err
	}
	s.notify.foodsChanged(ctx, id)
	if info.IsLowStock {
		if f, err := s.store.GetFood(ctx, id); err == nil {
			s.notify.stockLow(ctx, f.Name, info)
		}
	}
	return info, nil
}

// ListLowStock returns active foods at or below their min_stock.
func (s *CatalogService) ListLowStock(ctx context.Context) ([]Food, error) {
	rows, err := s.store.ListLowStockFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return toFoods(rows), nil
}

func (s *CatalogService) validate(ctx context.Context, in FoodInput) error {
	if !in.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if in.MinStock < 0 {
		return ErrInvalidMinStock
	}
	if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

// bumpLists retires cached lists after a create, which has no detail key yet.
func (s *CatalogService) bumpLists(ctx context.Context) {
	if err := s.cache.InvalidateFoods(ctx); err != nil {
		s.notify.log.Warn("cache invalidation failed", zap.Error(err))
	}
}

func toFood(f database.Food) Food {
	return Food{
		ID:          f.ID,
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description.String,
		Price:       numericToDecimal(f.Price),
		ImageURL:    f.ImageUrl.String,
		Status:      string(f.Status),
		Stock:       stock.InfoOf(f),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func toFoods(rows []database.Food) []Food {
	out := make([]Food, 0, len(rows))
	for _, f := range rows {
		out = append(out, toFood(f))
	}
	return out
}
