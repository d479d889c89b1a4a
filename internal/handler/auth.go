package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/santapan/api/internal/auth"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/enum"
	"github.com/santapan/api/internal/middleware"
	"go.uber.org/zap"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public auth endpoints. Me needs an
// authenticated router and is mounted separately.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    *string   `json:"phone"`
	Role     string    `json:"role"`
}

// --- Handlers ---

// Register creates a customer account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		zap.L().Error("hash password", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:          normalizeEmail(req.Email),
		HashedPassword: hashed,
		FullName:       strings.TrimSpace(req.FullName),
		Phone:          pgtype.Text{String: req.Phone, Valid: req.Phone != ""},
		Role:           enum.UserRoleCustomer,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeFail(w, http.StatusConflict, "email already registered")
			return
		}
		zap.L().Error("create user", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithTokens(w, http.StatusCreated, "registered", user)
}

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeFail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		zap.L().Error("get user by email", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		writeFail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.respondWithTokens(w, http.StatusOK, "logged in", user)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeFail(w, http.StatusUnauthorized, "user not found")
			return
		}
		zap.L().Error("get user by id", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithTokens(w, http.StatusOK, "token refreshed", user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeFail(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeFail(w, http.StatusNotFound, "user not found")
			return
		}
		zap.L().Error("get user by id", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeOK(w, http.StatusOK, "ok", toUserResponse(user))
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, message string, user database.User) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Role)
	if err != nil {
		zap.L().Error("generate access token", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		zap.L().Error("generate refresh token", zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeOK(w, status, message, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	})
}

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    textPtr(u.Phone),
		Role:     u.Role,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
