// Package api wires the HTTP surface: REST endpoints for shops, products
// and orders, the chat webhook, and summary reports.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/chanida/go-bakery-shop/internal/bot"
	"github.com/chanida/go-bakery-shop/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	db        *sql.DB
	bot       *bot.Router
	publisher events.Publisher
	loc       *time.Location
	logger    zerolog.Logger
}

func NewServer(db *sql.DB, botRouter *bot.Router, publisher events.Publisher, loc *time.Location, logger zerolog.Logger) *Server {
	return &Server{
		db:        db,
		bot:       botRouter,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))

	r.Get("/health", s.health)
	r.Post("/webhook", s.handleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/shops", func(r chi.Router) {
			r.Post("/", s.createShop)
			r.Get("/", s.listShops)
			r.Get("/{id}", s.getShop)
			r.Get("/by-line-user/{lineUserID}", s.getShopByLineUser)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", s.createProduct)
			r.Get("/", s.listProducts) // ?owner_id=...&available=true
			r.Get("/{id}", s.getProduct)
			r.Patch("/{id}", s.updateProduct)
			r.Patch("/{id}/stock", s.adjustStock)
			r.Patch("/{id}/availability", s.setAvailability)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.createOrder)
			r.Get("/", s.listOrders) // ?owner_id=...&cursor=...&limit=...
			r.Get("/{id}", s.getOrder)
			r.Patch("/{id}/status", s.updateOrderStatus)
		})

		r.Get("/shops/{lineUserID}/summary/{period}", s.getSummary)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
