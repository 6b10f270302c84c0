package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"el-sabor/internal/config"
	"el-sabor/internal/logger"
)

func chargeRequest() *CreateChargeRequest {
	return &CreateChargeRequest{
		OrderID:     "ORDER-1700000000001",
		Amount:      decimal.RequireFromString("45.00"),
		Description: "Pedido #ORDER-1700000000001",
		Payer: Payer{
			Name:  "João Silva",
			Phone: "81995238551",
		},
	}
}

func TestMercadoPago_CreatePixCharge(t *testing.T) {
	var calls int
	var gotIdempotencyKey string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		gotIdempotencyKey = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		fmt.Fprint(w, `{
			"id": 123456789,
			"status": "pending",
			"status_detail": "pending_waiting_transfer",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "00020126580014br.gov.bcb.pix",
					"qr_code_base64": "aW1hZ2U=",
					"qr_code_expiration_date": "2026-08-31T23:59:59.000-03:00"
				}
			}
		}`)
	}))
	defer srv.Close()

	gw := NewMercadoPago(&config.PaymentConfig{BaseURL: srv.URL, AccessToken: "test-token"}, logger.New("payment-test"))

	charge, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	assert.Equal(t, "123456789", charge.TransactionID)
	assert.Equal(t, "00020126580014br.gov.bcb.pix", charge.QRCodeText)
	assert.Equal(t, "aW1hZ2U=", charge.QRCodeImage)
	assert.False(t, charge.ExpiresAt.IsZero())

	assert.Equal(t, "pix_ORDER-1700000000001", gotIdempotencyKey)
	assert.Equal(t, "pix", gotBody["payment_method_id"])
	assert.InDelta(t, 45.00, gotBody["transaction_amount"], 0.001)

	payer := gotBody["payer"].(map[string]interface{})
	assert.Equal(t, "João", payer["first_name"])
	assert.Equal(t, "Silva", payer["last_name"])
	phone := payer["phone"].(map[string]interface{})
	assert.Equal(t, "81", phone["area_code"])
	assert.Equal(t, "995238551", phone["number"])

	// retry for the same order returns the cached charge
	again, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)
	assert.Equal(t, charge.TransactionID, again.TransactionID)
	assert.Equal(t, 1, calls, "a retried create must not reach the provider again")
}

func TestMercadoPago_CreatePixCharge_MissingQRData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1, "status": "rejected"}`)
	}))
	defer srv.Close()

	gw := NewMercadoPago(&config.PaymentConfig{BaseURL: srv.URL, AccessToken: "t"}, logger.New("payment-test"))

	_, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Contains(t, gatewayErr.Detail, "QR code")
}

func TestMercadoPago_GetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/123", r.URL.Path)
		fmt.Fprint(w, `{"id": 123, "status": "approved", "status_detail": "accredited"}`)
	}))
	defer srv.Close()

	gw := NewMercadoPago(&config.PaymentConfig{BaseURL: srv.URL, AccessToken: "t"}, logger.New("payment-test"))

	status, err := gw.GetStatus(context.Background(), "123")
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, "approved", status.Status)
	assert.Equal(t, "accredited", status.StatusDetail)
}

func TestMercadoPago_GatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid access token"}`)
	}))
	defer srv.Close()

	gw := NewMercadoPago(&config.PaymentConfig{BaseURL: srv.URL, AccessToken: "bad"}, logger.New("payment-test"))

	_, err := gw.GetStatus(context.Background(), "123")
	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusUnauthorized, gatewayErr.StatusCode)
}

func TestMemory_AtMostOnceCharge(t *testing.T) {
	gw := NewMemory(time.Hour)

	first, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)
	second, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, 1, gw.ChargeCount())
}

func TestStatusPoller_PaidStopsPolling(t *testing.T) {
	gw := NewMemory(time.Hour)
	charge, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	poller := NewStatusPoller(gw, 5*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		gw.Approve(charge.TransactionID)
	}()

	require.NoError(t, poller.Wait(context.Background(), charge))
}

func TestStatusPoller_Expiry(t *testing.T) {
	gw := NewMemory(30 * time.Millisecond)
	charge, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	poller := NewStatusPoller(gw, 5*time.Millisecond)
	err = poller.Wait(context.Background(), charge)
	assert.ErrorIs(t, err, ErrPaymentExpired)
}

func TestStatusPoller_Cancel(t *testing.T) {
	gw := NewMemory(time.Hour)
	charge, err := gw.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewStatusPoller(gw, 5*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = poller.Wait(ctx, charge)
	assert.ErrorIs(t, err, context.Canceled)
}

// flakyGateway fails GetStatus a fixed number of times before
// delegating to the wrapped gateway.
type flakyGateway struct {
	PixGateway
	failures int
	calls    int
}

func (g *flakyGateway) GetStatus(ctx context.Context, transactionID string) (*ChargeStatus, error) {
	g.calls++
	if g.calls <= g.failures {
		return nil, &GatewayError{StatusCode: http.StatusBadGateway, Detail: "upstream timeout"}
	}
	return g.PixGateway.GetStatus(ctx, transactionID)
}

func TestStatusPoller_SurvivesTransientErrors(t *testing.T) {
	mem := NewMemory(time.Hour)
	charge, err := mem.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)
	mem.Approve(charge.TransactionID)

	gw := &flakyGateway{PixGateway: mem, failures: 3}
	poller := NewStatusPoller(gw, 5*time.Millisecond)

	require.NoError(t, poller.Wait(context.Background(), charge))
	assert.Equal(t, 4, gw.calls)
}

func TestStatusPoller_ExpiryReportedOverPollErrors(t *testing.T) {
	mem := NewMemory(30 * time.Millisecond)
	charge, err := mem.CreatePixCharge(context.Background(), chargeRequest())
	require.NoError(t, err)

	gw := &flakyGateway{PixGateway: mem, failures: 1 << 30}
	poller := NewStatusPoller(gw, 5*time.Millisecond)

	err = poller.Wait(context.Background(), charge)
	assert.ErrorIs(t, err, ErrPaymentExpired)
}
