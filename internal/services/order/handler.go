package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/services/api"
	"el-sabor/internal/store"
)

// Handler handles HTTP requests for order submission and the
// dashboard-facing lifecycle transitions.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates an order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts the order routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/orders", h.Create)
	r.Get("/api/orders", h.List)
	r.Put("/api/orders/{id}/status", h.UpdateStatus)
}

// Create handles POST /api/orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	// Unknown body fields are ignored so older or over-eager clients
	// keep working; validation judges only the fields the order needs.
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := req.Validate(); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrTotalMismatch) {
			api.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
			return
		}
		h.logger.Error("order_create_failed", "Failed to create order", requestID, err, nil)
		api.WriteError(w, http.StatusInternalServerError, "Failed to save order", requestID)
		return
	}
	api.WriteJSON(w, http.StatusCreated, created)
}

// List handles GET /api/orders
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	orders, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("order_list_failed", "Failed to list orders", requestID, err, nil)
		api.WriteError(w, http.StatusInternalServerError, "Failed to read orders", requestID)
		return
	}
	api.WriteJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/orders/{id}/status. The acting role
// comes from the X-Role header; illegal and raced transitions map to
// 409 so a stale dashboard learns its view is out of date.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())
	id := chi.URLParam(r, "id")

	role, ok := parseRole(r.Header.Get("X-Role"))
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "X-Role must be kitchen or driver", requestID)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, role, next)
	if err != nil {
		var invalid *lifecycle.InvalidTransitionError
		var unauthorized *lifecycle.UnauthorizedRoleError
		switch {
		case errors.Is(err, store.ErrNotFound):
			api.WriteError(w, http.StatusNotFound, "Order not found", requestID)
		case errors.Is(err, lifecycle.ErrAlreadyTransitioned):
			api.WriteError(w, http.StatusConflict, "Order already transitioned", requestID)
		case errors.As(err, &invalid):
			api.WriteError(w, http.StatusConflict, err.Error(), requestID)
		case errors.As(err, &unauthorized):
			api.WriteError(w, http.StatusForbidden, err.Error(), requestID)
		default:
			h.logger.Error("order_status_update_failed", "Failed to update order status", requestID, err,
				map[string]interface{}{"order_id": id})
			api.WriteError(w, http.StatusInternalServerError, "Failed to update order status", requestID)
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

func parseRole(header string) (lifecycle.Role, bool) {
	switch lifecycle.Role(header) {
	case lifecycle.RoleKitchen:
		return lifecycle.RoleKitchen, true
	case lifecycle.RoleDriver:
		return lifecycle.RoleDriver, true
	default:
		return "", false
	}
}
