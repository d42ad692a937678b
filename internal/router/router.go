package router

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trendifymart/api/internal/config"
	"github.com/trendifymart/api/internal/database"
	"github.com/trendifymart/api/internal/handler"
	"github.com/trendifymart/api/internal/ledger"
	mw "github.com/trendifymart/api/internal/middleware"
	"github.com/trendifymart/api/internal/service"
	"github.com/trendifymart/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Public storefront routes, the admin API behind token auth, and the
// admin pages behind the redirecting gate.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",          // Next.js dev server
			"https://trendifymart.example",   // Production storefront
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public, /api/auth/me gated inside)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Public catalog
	categoryHandler := handler.NewCategoryHandler(queries)
	r.Route("/api/categories", categoryHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(queries)
	r.Route("/api/products", productHandler.RegisterRoutes)

	// Storefront checkout. Anonymous checkout is allowed; a session, when
	// present, attaches the order to the account.
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore)
	checkoutHandler := handler.NewCheckoutHandler(orderService, hub)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(mw.MaybeAuthenticate(cfg.JWTSecret))
		checkoutHandler.RegisterRoutes(r)
	})

	// Order items (public read/append per the storefront contract)
	orderItemHandler := handler.NewOrderItemHandler(queries)
	r.Route("/api/order-items", orderItemHandler.RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Admin API (token required, admin role required)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole("admin"))

		orderHandler := handler.NewOrderHandler(queries, hub)
		r.Route("/api/admin/orders", orderHandler.RegisterRoutes)

		fabricator := ledger.NewFabricator(rand.New(rand.NewSource(time.Now().UnixNano())))
		transactionHandler := handler.NewTransactionHandler(queries, fabricator)
		r.Route("/api/admin/transactions", transactionHandler.RegisterRoutes)

		seedHandler := handler.NewSeedHandler(pool, database.SeedParams{
			AdminEmail:    cfg.SeedAdminEmail,
			AdminPassword: cfg.SeedAdminPassword,
			AdminName:     cfg.SeedAdminName,
		})
		r.Route("/api/admin/seed", seedHandler.RegisterRoutes)
	})

	// Admin pages: login is open, everything else sits behind the
	// redirecting gate.
	pageHandler := handler.NewPageHandler()
	r.Get("/login", pageHandler.Login)
	r.Get("/admin/login", pageHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(mw.AdminPageGate(cfg.JWTSecret))
		r.Get("/admin/dashboard", pageHandler.Dashboard)
	})

	log.Println("Router initialized with all handlers")
	return r
}
