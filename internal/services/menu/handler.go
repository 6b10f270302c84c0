package menu

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"el-sabor/internal/logger"
	"el-sabor/internal/services/api"
	"el-sabor/internal/store"

	"el-sabor/internal/models"
)

// Handler handles HTTP requests for the menu catalog
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a menu handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts the menu routes. Reads are public; the CRUD
// surface sits behind the admin gate.
func (h *Handler) RegisterRoutes(r chi.Router, adminGate func(http.Handler) http.Handler) {
	r.Get("/api/menu", h.List)
	r.Group(func(g chi.Router) {
		g.Use(adminGate)
		g.Post("/api/menu", h.Create)
		g.Put("/api/menu/{id}", h.Update)
		g.Delete("/api/menu/{id}", h.Delete)
	})
}

// List handles GET /api/menu
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("menu_list_failed", "Failed to list menu", requestID, err, nil)
		api.WriteError(w, http.StatusInternalServerError, "Failed to read menu", requestID)
		return
	}
	api.WriteJSON(w, http.StatusOK, items)
}

// Create handles POST /api/menu
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := req.Validate(); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("menu_create_failed", "Failed to create menu item", requestID, err, nil)
		api.WriteError(w, http.StatusInternalServerError, "Failed to save menu item", requestID)
		return
	}
	api.WriteJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/menu/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid menu item id", requestID)
		return
	}

	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, errNegativePrice):
			api.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		case errors.Is(err, store.ErrNotFound):
			api.WriteError(w, http.StatusNotFound, "Menu item not found", requestID)
		default:
			h.logger.Error("menu_update_failed", "Failed to update menu item", requestID, err, nil)
			api.WriteError(w, http.StatusInternalServerError, "Failed to update menu item", requestID)
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/menu/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid menu item id", requestID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "Menu item not found", requestID)
			return
		}
		h.logger.Error("menu_delete_failed", "Failed to delete menu item", requestID, err, nil)
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete menu item", requestID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
