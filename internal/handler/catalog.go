package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/santapan/api/internal/service"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
)

// CatalogServicer defines the service methods needed by catalog handlers.
// Satisfied by *service.CatalogService; narrow interface for testability.
type CatalogServicer interface {
	ListCategories(ctx context.Context) ([]service.Category, error)
	ListFoods(ctx context.Context, f service.FoodFilter) ([]service.Food, error)
	GetFood(ctx context.Context, id uuid.UUID) (service.Food, error)
	StockInfo(ctx context.Context, id uuid.UUID) (stock.Info, error)
	CreateFood(ctx context.Context, in service.FoodInput) (service.Food, error)
	UpdateFood(ctx context.Context, id uuid.UUID, in service.FoodInput) (service.Food, error)
	DeleteFood(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int32, operation string) (stock.Info, error)
	ListLowStock(ctx context.Context) ([]service.Food, error)
}

// CatalogHandler serves categories and foods.
type CatalogHandler struct {
	svc CatalogServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc CatalogServicer) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RegisterRoutes registers the public catalog endpoints.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Get("/foods", h.ListFoods)
	r.Get("/foods/{id}", h.GetFood)
	r.Get("/foods/{id}/stock", h.GetStock)
}

// RegisterAdminRoutes registers food management endpoints. Expected to be
// mounted on an admin-only router.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admin/foods", h.CreateFood)
	r.Get("/admin/foods/low-stock", h.ListLowStock)
	r.Put("/admin/foods/{id}", h.UpdateFood)
	r.Delete("/admin/foods/{id}", h.DeleteFood)
	r.Patch("/admin/foods/{id}/stock", h.AdjustStock)
}

// --- Request / Response types ---

type foodRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Stock       int32  `json:"stock" validate:"gte=0"`
	MinStock    int32  `json:"min_stock" validate:"gte=0"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type adjustStockRequest struct {
	Delta     int32  `json:"delta" validate:"gt=0"`
	Operation string `json:"operation" validate:"required,oneof=add subtract"`
}

type foodListResponse struct {
	Foods  []service.Food `json:"foods"`
	Limit  int32          `json:"limit"`
	Offset int32          `json:"offset"`
}

// --- Public handlers ---

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", cats)
}

// ListFoods handles GET /foods?category_id=&search=&limit=&offset=.
func (h *CatalogHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	filter := service.FoodFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  limit,
		Offset: offset,
	}
	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}

	foods, err := h.svc.ListFoods(r.Context(), filter)
	if err != nil {
		writeError(w, "list foods", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", foodListResponse{Foods: foods, Limit: limit, Offset: offset})
}

// GetFood handles GET /foods/{id}.
func (h *CatalogHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "invalid food ID")
	if !ok {
		return
	}
	food, err := h.svc.GetFood(r.Context(), id)
	if err != nil {
		writeError(w, "get food", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", food)
}

// GetStock handles GET /foods/{id}/stock. Always read live.
func (h *CatalogHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "invalid food ID")
	if !ok {
		return
	}
	info, err := h.svc.StockInfo(r.Context(), id)
	if err != nil {
		writeError(w, "stock info", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", info)
}

// --- Admin handlers ---

// CreateFood handles POST /admin/foods.
func (h *CatalogHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}

	food, err := h.svc.CreateFood(r.Context(), in)
	if err != nil {
		writeError(w, "create food", err)
		return
	}
	writeOK(w, http.StatusCreated, "food created", food)
}

// UpdateFood handles PUT /admin/foods/{id}.
func (h *CatalogHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "invalid food ID")
	if !ok {
		return
	}
	var req foodRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}

	food, err := h.svc.UpdateFood(r.Context(), id, in)
	if err != nil {
		writeError(w, "update food", err)
		return
	}
	writeOK(w, http.StatusOK, "food updated", food)
}

// DeleteFood handles DELETE /admin/foods/{id}.
func (h *CatalogHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "invalid food ID")
	if !ok {
		return
	}
	if err := h.svc.DeleteFood(r.Context(), id); err != nil {
		writeError(w, "delete food", err)
		return
	}
	writeOK(w, http.StatusOK, "food deleted", nil)
}

// AdjustStock handles PATCH /admin/foods/{id}/stock.
func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "invalid food ID")
	if !ok {
		return
	}
	var req adjustStockRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	info, err := h.svc.AdjustStock(r.Context(), id, req.Delta, req.Operation)
	if err != nil {
		writeError(w, "adjust stock", err)
		return
	}
	writeOK(w, http.StatusOK, "stock adjusted", info)
}

// ListLowStock handles GET /admin/foods/low-stock.
func (h *CatalogHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	foods, err := h.svc.ListLowStock(r.Context())
	if err != nil {
		writeError(w, "list low stock", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", foods)
}

// --- Helpers ---

func (req foodRequest) toInput(w http.ResponseWriter) (service.FoodInput, bool) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "validation failed", "price must be a decimal number")
		return service.FoodInput{}, false
	}
	return service.FoodInput{
		// Already validated as a UUID.
		CategoryID:  uuid.MustParse(req.CategoryID),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Status:      req.Status,
	}, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeFail(w, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}
