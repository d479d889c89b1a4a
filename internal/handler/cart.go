package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/middleware"
	"github.com/santapan/api/internal/service"
)

// CartServicer defines the service methods needed by cart handlers.
// Satisfied by *service.CartService; narrow interface for testability.
type CartServicer interface {
	Get(ctx context.Context, userID uuid.UUID) (*service.Cart, error)
	AddItem(ctx context.Context, userID, foodID uuid.UUID, quantity int32) (database.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int32) (*database.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CheckoutServicer converts a cart into an order.
// Satisfied by *service.OrderService.
type CheckoutServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.OrderDetail, error)
}

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	cart     CartServicer
	checkout CheckoutServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart CartServicer, checkout CheckoutServicer) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

// RegisterRoutes registers cart endpoints on an authenticated router.
// Checkout is mounted separately so it can carry its own rate limit.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Delete("/cart", h.Clear)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{id}", h.UpdateItem)
	r.Delete("/cart/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	FoodID   string `json:"food_id" validate:"required,uuid"`
	Quantity int32  `json:"quantity" validate:"gt=0"`
}

type updateCartItemRequest struct {
	Quantity *int32 `json:"quantity" validate:"required,gte=0"`
}

type checkoutRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type cartResponse struct {
	ID      *uuid.UUID         `json:"id"`
	Items   []cartItemResponse `json:"items"`
	Summary summaryResponse    `json:"summary"`
}

type cartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	FoodID    uuid.UUID `json:"food_id"`
	FoodName  string    `json:"food_name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int32     `json:"quantity"`
	Price     string    `json:"price"`
	Subtotal  string    `json:"subtotal"`
	Available int32     `json:"available"`
	Active    bool      `json:"active"`
}

type summaryResponse struct {
	TotalItems  int32  `json:"total_items"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// --- Handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.respondWithCart(w, r, userID, http.StatusOK, "ok")
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if _, err := h.cart.AddItem(r.Context(), userID, uuid.MustParse(req.FoodID), req.Quantity); err != nil {
		writeError(w, "add cart item", err)
		return
	}
	h.respondWithCart(w, r, userID, http.StatusCreated, "item added to cart")
}

// UpdateItem handles PUT /cart/items/{id}. Quantity 0 removes the item.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(w, r, "id", "invalid cart item ID")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	item, err := h.cart.UpdateItem(r.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		writeError(w, "update cart item", err)
		return
	}
	message := "cart item updated"
	if item == nil {
		message = "cart item removed"
	}
	h.respondWithCart(w, r, userID, http.StatusOK, message)
}

// RemoveItem handles DELETE /cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(w, r, "id", "invalid cart item ID")
	if !ok {
		return
	}

	removed, err := h.cart.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		writeError(w, "remove cart item", err)
		return
	}
	if !removed {
		writeFail(w, http.StatusNotFound, "cart item not found")
		return
	}
	h.respondWithCart(w, r, userID, http.StatusOK, "cart item removed")
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.cart.Clear(r.Context(), userID)
	if err != nil {
		writeError(w, "clear cart", err)
		return
	}
	writeOK(w, http.StatusOK, "cart cleared", map[string]int64{"cleared": n})
}

// Checkout handles POST /cart/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	detail, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		UserID:          userID,
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, "checkout", err)
		return
	}
	writeOK(w, http.StatusCreated, "order placed", toOrderDetailResponse(detail))
}

// --- Helpers ---

func (h *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, userID uuid.UUID, status int, message string) {
	c, err := h.cart.Get(r.Context(), userID)
	if err != nil {
		writeError(w, "get cart", err)
		return
	}
	writeOK(w, status, message, toCartResponse(c))
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeFail(w, http.StatusUnauthorized, "not authenticated")
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func toCartResponse(c *service.Cart) cartResponse {
	resp := cartResponse{
		Items:   make([]cartItemResponse, len(c.Lines)),
		Summary: toSummaryResponse(c.Summary),
	}
	if c.ID != uuid.Nil {
		id := c.ID
		resp.ID = &id
	}
	for i, l := range c.Lines {
		resp.Items[i] = cartItemResponse{
			ID:        l.ItemID,
			FoodID:    l.FoodID,
			FoodName:  l.FoodName,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
			Price:     l.Price.StringFixed(2),
			Subtotal:  l.Subtotal.StringFixed(2),
			Available: l.Available,
			Active:    l.Active,
		}
	}
	return resp
}

func toSummaryResponse(s service.Summary) summaryResponse {
	return summaryResponse{
		TotalItems:  s.TotalItems,
		TotalAmount: s.TotalAmount.StringFixed(2),
		ItemCount:   s.ItemCount,
	}
}
