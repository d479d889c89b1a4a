package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/santapan/api/internal/cache"
	"github.com/santapan/api/internal/config"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/enum"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/handler"
	"github.com/santapan/api/internal/logger"
	mw "github.com/santapan/api/internal/middleware"
	"github.com/santapan/api/internal/service"
	"github.com/santapan/api/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// c and publisher may be nil; the catalog then reads straight from the
// database and events are dropped.
func New(cfg *config.Config, pool *pgxpool.Pool, hub *ws.Hub, c *cache.Cache, publisher events.Publisher, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", health(pool))

	// The websocket route is registered before the timeout middleware so
	// long-lived connections are not cut off. It authenticates via ?token=.
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	queries := database.New(pool)
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}

	catalogService := service.NewCatalogService(queries, c, publisher, log)
	cartService := service.NewCartService(queries)
	orderService := service.NewOrderService(pool, queries, newOrderStore, c, publisher, log)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService, orderService)
	orderHandler := handler.NewOrderHandler(orderService)

	limiter := mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		// Auth routes (public, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			authHandler.RegisterRoutes(r)
		})

		// Catalog (public)
		catalogHandler.RegisterRoutes(r)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.Me)

			cartHandler.RegisterRoutes(r)
			r.With(limiter.Handler).Post("/cart/checkout", cartHandler.Checkout)

			orderHandler.RegisterRoutes(r)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				catalogHandler.RegisterAdminRoutes(r)
				orderHandler.RegisterAdminRoutes(r)
			})
		})
	})

	log.Info("router initialized")
	return r
}

func health(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"message":"database unavailable"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"success":true,"message":"ok"}`)) //nolint:errcheck
	}
}
