package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/service"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]database.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*service.OrderDetail, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, note string) (*database.Order, error)
	ListOrders(ctx context.Context, status string, limit, offset int32) ([]database.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, status, note string) (*database.Order, error)
}

// OrderHandler handles customer and admin order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers the customer's own order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Put("/orders/{id}/cancel", h.Cancel)
}

// RegisterAdminRoutes registers order administration endpoints. Expected to
// be mounted on an admin-only router.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/orders", h.AdminList)
	r.Get("/admin/orders/{id}", h.AdminGet)
	r.Put("/admin/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type cancelOrderRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type orderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Status          string                  `json:"status"`
	TotalAmount     string                  `json:"total_amount"`
	DeliveryAddress string                  `json:"delivery_address"`
	Phone           string                  `json:"phone"`
	Notes           *string                 `json:"notes"`
	OrderDate       time.Time               `json:"order_date"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Items           []orderItemResponse     `json:"items,omitempty"`
	History         []statusHistoryResponse `json:"history,omitempty"`
	Summary         *summaryResponse        `json:"summary,omitempty"`
}

type orderItemResponse struct {
	ID       uuid.UUID `json:"id"`
	FoodID   uuid.UUID `json:"food_id"`
	FoodName string    `json:"food_name"`
	Quantity int32     `json:"quantity"`
	Price    string    `json:"price"`
	Subtotal string    `json:"subtotal"`
}

type statusHistoryResponse struct {
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	UpdatedBy      uuid.UUID `json:"updated_by"`
	Note           *string   `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

// --- Customer handlers ---

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, offset := parsePage(r)

	orders, err := h.svc.ListUserOrders(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, "list user orders", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", toOrderListResponse(orders, limit, offset))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	detail, err := h.svc.GetUserOrder(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, "get user order", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", toOrderDetailResponse(detail))
}

// Cancel handles PUT /orders/{id}/cancel. The body is optional.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}
	var req cancelOrderRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	order, err := h.svc.Cancel(r.Context(), userID, orderID, req.Note)
	if err != nil {
		writeError(w, "cancel order", err)
		return
	}
	writeOK(w, http.StatusOK, "order cancelled", toOrderResponse(*order))
}

// --- Admin handlers ---

// AdminList handles GET /admin/orders?status=&limit=&offset=.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeError(w, "list orders", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", toOrderListResponse(orders, limit, offset))
}

// AdminGet handles GET /admin/orders/{id}.
func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, "get order", err)
		return
	}
	writeOK(w, http.StatusOK, "ok", toOrderDetailResponse(detail))
}

// UpdateStatus handles PUT /admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), actorID, orderID, req.Status, req.Note)
	if err != nil {
		writeError(w, "update order status", err)
		return
	}
	writeOK(w, http.StatusOK, "order status updated", toOrderResponse(*order))
}

// --- Helpers ---

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     numericToString(o.TotalAmount),
		DeliveryAddress: o.DeliveryAddress,
		Phone:           o.Phone,
		Notes:           textPtr(o.Notes),
		OrderDate:       o.OrderDate,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderListResponse(orders []database.Order, limit, offset int32) orderListResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return orderListResponse{Orders: resp, Limit: limit, Offset: offset}
}

func toOrderDetailResponse(d *service.OrderDetail) orderResponse {
	resp := toOrderResponse(d.Order)

	resp.Items = make([]orderItemResponse, len(d.Items))
	for i, it := range d.Items {
		price := numericToDecimal(it.Price)
		resp.Items[i] = orderItemResponse{
			ID:       it.ID,
			FoodID:   it.FoodID,
			FoodName: it.FoodName,
			Quantity: it.Quantity,
			Price:    price.StringFixed(2),
			Subtotal: price.Mul(decimal.NewFromInt32(it.Quantity)).StringFixed(2),
		}
	}

	resp.History = make([]statusHistoryResponse, len(d.History))
	for i, hst := range d.History {
		entry := statusHistoryResponse{
			NewStatus: string(hst.NewStatus),
			UpdatedBy: hst.UpdatedBy,
			Note:      textPtr(hst.Note),
			CreatedAt: hst.CreatedAt,
		}
		if hst.PreviousStatus.Valid {
			prev := string(hst.PreviousStatus.OrderStatus)
			entry.PreviousStatus = &prev
		}
		resp.History[i] = entry
	}

	summary := toSummaryResponse(d.Summary)
	resp.Summary = &summary
	return resp
}
