package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"printdesk/internal/storage"
)

// Server exposes the pricing engine over JSON HTTP.
type Server struct {
	store  storage.Store
	logger *zap.Logger
	router chi.Router
}

func New(store storage.Store, logger *zap.Logger) *Server {
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(s.correlationMiddleware)

	r.Route("/pricing", func(r chi.Router) {
		r.Get("/services", s.handleListServices)
		r.Post("/services", s.handleCreateService)
		r.Get("/services/{id}", s.handleGetService)
		r.Put("/services/{id}", s.handleUpdateService)
		r.Delete("/services/{id}", s.handleDeactivateService)
		r.Get("/services/{id}/tiers", s.handleListTiers)
		r.Post("/services/{id}/tiers", s.handleCreateTier)
		r.Get("/services/{id}/variants/{variant}/tiers", s.handleListTiers)
		r.Post("/services/{id}/variants/{variant}/tiers", s.handleCreateTier)

		r.Get("/product-types/{key}/schema", s.handleProductSchema)

		r.Get("/print-prices", s.handleListPrintSheets)
		r.Get("/print-prices/derive", s.handleDerivePrintPrices)
		r.Get("/print-prices/{id}", s.handleGetPrintSheet)

		r.Get("/quantity-discounts", s.handleQuantityDiscounts)
		r.Get("/markup-settings", s.handleMarkupSettings)

		r.Post("/multipage/calculate", s.handleMultiPageCalculate)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// correlationMiddleware tags every request with an id that shows up in
// logs and in generic 500 bodies.
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", id)
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
