// Package services composes the HTTP API: menu catalog, order
// submission and lifecycle, and the PIX payment proxy.
package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"el-sabor/internal/logger"
	"el-sabor/internal/services/api"
	"el-sabor/internal/services/menu"
	"el-sabor/internal/services/order"
	"el-sabor/internal/services/payments"
)

// NewRouter assembles the API router with request logging and the
// health endpoint. adminSecret gates the menu CRUD surface; empty
// leaves it open.
func NewRouter(log *logger.Logger, adminSecret string, menuH *menu.Handler, orderH *order.Handler, paymentsH *payments.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(api.WithLogging(log))

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	menuH.RegisterRoutes(r, api.AdminOnly(adminSecret))
	orderH.RegisterRoutes(r)
	paymentsH.RegisterRoutes(r)
	return r
}
