package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"el-sabor/internal/config"
	"el-sabor/internal/logger"
)

// testCPF is the provider's documented test document number; real
// payer documents are not collected at checkout.
const testCPF = "13468423454"

// MercadoPago talks to the Mercado Pago payments REST API
type MercadoPago struct {
	baseURL     string
	accessToken string
	client      *http.Client
	logger      *logger.Logger

	mu      sync.Mutex
	charges map[string]*Charge // order id -> created charge
}

// NewMercadoPago creates an adapter from the payment configuration
func NewMercadoPago(cfg *config.PaymentConfig, log *logger.Logger) *MercadoPago {
	return &MercadoPago{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      log,
		charges:     make(map[string]*Charge),
	}
}

type mpPayer struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name,omitempty"`
	Identification struct {
		Type   string `json:"type"`
		Number string `json:"number"`
	} `json:"identification"`
	Phone *struct {
		AreaCode string `json:"area_code"`
		Number   string `json:"number"`
	} `json:"phone,omitempty"`
}

type mpCreatePayment struct {
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	Description       string          `json:"description"`
	PaymentMethodID   string          `json:"payment_method_id"`
	Installments      int             `json:"installments"`
	Payer             mpPayer         `json:"payer"`
}

type mpPayment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode               string `json:"qr_code"`
			QRCodeBase64         string `json:"qr_code_base64"`
			QRCodeExpirationDate string `json:"qr_code_expiration_date"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePixCharge creates a PIX payment for the order. The idempotency
// key derives from the order id and the created charge is cached, so a
// client retry cannot produce a duplicate charge.
func (g *MercadoPago) CreatePixCharge(ctx context.Context, req *CreateChargeRequest) (*Charge, error) {
	g.mu.Lock()
	if charge, ok := g.charges[req.OrderID]; ok {
		g.mu.Unlock()
		return charge, nil
	}
	g.mu.Unlock()

	payload := mpCreatePayment{
		TransactionAmount: req.Amount.Round(2),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Installments:      1,
		Payer:             buildPayer(req),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", "pix_"+req.OrderID)

	var payment mpPayment
	if err := g.do(httpReq, &payment); err != nil {
		return nil, err
	}

	data := payment.PointOfInteraction.TransactionData
	if data.QRCode == "" {
		return nil, &GatewayError{
			StatusCode: http.StatusOK,
			Detail:     "payment response missing QR code data",
		}
	}

	expiresAt, err := time.Parse(time.RFC3339, data.QRCodeExpirationDate)
	if err != nil {
		// Providers have shipped both RFC3339 and offset-less shapes.
		expiresAt, err = time.Parse("2006-01-02T15:04:05.000-07:00", data.QRCodeExpirationDate)
		if err != nil {
			return nil, &GatewayError{
				StatusCode: http.StatusOK,
				Detail:     fmt.Sprintf("unparseable qr_code_expiration_date %q", data.QRCodeExpirationDate),
			}
		}
	}

	charge := &Charge{
		TransactionID: payment.ID.String(),
		QRCodeImage:   data.QRCodeBase64,
		QRCodeText:    data.QRCode,
		ExpiresAt:     expiresAt,
	}

	g.mu.Lock()
	g.charges[req.OrderID] = charge
	g.mu.Unlock()

	g.logger.Info("pix_charge_created", "Created PIX charge", "", map[string]interface{}{
		"order_id":       req.OrderID,
		"transaction_id": charge.TransactionID,
		"status":         payment.Status,
	})

	return charge, nil
}

// GetStatus polls the provider for the charge state
func (g *MercadoPago) GetStatus(ctx context.Context, transactionID string) (*ChargeStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+transactionID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)

	var payment mpPayment
	if err := g.do(httpReq, &payment); err != nil {
		return nil, err
	}

	return &ChargeStatus{
		Status:       payment.Status,
		StatusDetail: payment.StatusDetail,
		Paid:         payment.Status == "approved",
	}, nil
}

func (g *MercadoPago) do(req *http.Request, out interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return &GatewayError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("gateway_request_failed",
			fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, resp.StatusCode),
			"", nil, map[string]interface{}{
				"response": string(body),
			})
		return &GatewayError{StatusCode: resp.StatusCode, Detail: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Detail: "unexpected response shape: " + err.Error()}
	}
	return nil
}

func buildPayer(req *CreateChargeRequest) mpPayer {
	payer := mpPayer{
		Email: req.Payer.Email,
	}
	if payer.Email == "" {
		payer.Email = fmt.Sprintf("cliente.%s@email.com", strings.ToLower(req.OrderID))
	}

	parts := strings.Fields(req.Payer.Name)
	if len(parts) > 0 {
		payer.FirstName = parts[0]
		payer.LastName = strings.Join(parts[1:], " ")
	} else {
		payer.FirstName = "Cliente"
	}

	payer.Identification.Type = "CPF"
	payer.Identification.Number = testCPF

	if digits := digitsOnly(req.Payer.Phone); len(digits) > 2 {
		payer.Phone = &struct {
			AreaCode string `json:"area_code"`
			Number   string `json:"number"`
		}{
			AreaCode: digits[:2],
			Number:   digits[2:],
		}
	}

	return payer
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
