package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"el-sabor/internal/logger"
	"el-sabor/internal/payment"
	"el-sabor/internal/services/api"
	"el-sabor/internal/store"
)

// Handler handles HTTP requests for the PIX payment proxy. The gateway
// credential never leaves the server; clients only ever see the QR code
// and the polled status.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a payments handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts the payment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/payments/pix", h.CreatePix)
	r.Get("/api/payments/{id}/status", h.Status)
}

type createPixRequest struct {
	OrderID       string `json:"orderId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

type qrCodeResponse struct {
	Image string `json:"image"`
	Code  string `json:"code"`
}

type createPixResponse struct {
	QRCode    qrCodeResponse `json:"qrCode"`
	ExpiresIn int            `json:"expiresIn"`
	PaymentID string         `json:"paymentId"`
	Status    string         `json:"status"`
}

// CreatePix handles POST /api/payments/pix
func (h *Handler) CreatePix(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())

	var req createPixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if req.OrderID == "" || req.CustomerName == "" || req.CustomerPhone == "" {
		api.WriteError(w, http.StatusBadRequest, "orderId, customerName and customerPhone are required", requestID)
		return
	}

	charge, err := h.service.CreatePixCharge(r.Context(), req.OrderID, req.CustomerName, req.CustomerPhone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "Order not found", requestID)
			return
		}
		h.logger.Error("pix_charge_failed", "Failed to create PIX charge", requestID, err,
			map[string]interface{}{"order_id": req.OrderID})
		api.WriteError(w, http.StatusInternalServerError, "Failed to create PIX payment", requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, createPixResponse{
		QRCode: qrCodeResponse{
			Image: charge.QRCodeImage,
			Code:  charge.QRCodeText,
		},
		ExpiresIn: ExpiresIn(charge, time.Now()),
		PaymentID: charge.TransactionID,
		Status:    "pending",
	})
}

type statusResponse struct {
	Status       string `json:"status"`
	StatusDetail string `json:"statusDetail,omitempty"`
	Paid         bool   `json:"paid"`
}

// Status handles GET /api/payments/{id}/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := api.RequestID(r.Context())
	transactionID := chi.URLParam(r, "id")

	status, err := h.service.GetStatus(r.Context(), transactionID)
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound {
			api.WriteError(w, http.StatusNotFound, "Payment not found", requestID)
			return
		}
		h.logger.Error("pix_status_failed", "Failed to query payment status", requestID, err,
			map[string]interface{}{"transaction_id": transactionID})
		api.WriteError(w, http.StatusInternalServerError, "Failed to query payment status", requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, statusResponse{
		Status:       status.Status,
		StatusDetail: status.StatusDetail,
		Paid:         status.Paid,
	})
}
