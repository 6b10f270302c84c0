package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		Customer: Customer{Name: "Ana Souza", Phone: "11987654321"},
		Items: []CartLine{
			{Item: MenuItem{ID: 1, Name: "X-Burger", Price: decimal.RequireFromString("25.50")}, Quantity: 1},
		},
		Total:         decimal.RequireFromString("25.50"),
		DeliveryType:  DeliveryTypePickup,
		PaymentMethod: PaymentCash,
	}
}

func TestCreateOrderRequestValidate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	t.Run("empty items", func(t *testing.T) {
		req := validRequest()
		req.Items = nil
		assert.Error(t, req.Validate())
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := validRequest()
		req.Items[0].Quantity = 0
		assert.Error(t, req.Validate())
	})

	t.Run("short phone", func(t *testing.T) {
		req := validRequest()
		req.Customer.Phone = "1198765"
		assert.Error(t, req.Validate())
	})

	t.Run("unknown payment method", func(t *testing.T) {
		req := validRequest()
		req.PaymentMethod = "CHEQUE"
		assert.Error(t, req.Validate())
	})
}

func TestObservationsLimitCountsCharacters(t *testing.T) {
	// "ção" characters are multi-byte in UTF-8; 200 of them must still
	// fit the 200-character budget.
	req := validRequest()
	req.Observations = strings.Repeat("ç", MaxObservationsLen)
	assert.NoError(t, req.Validate())

	req.Observations = strings.Repeat("ç", MaxObservationsLen+1)
	assert.Error(t, req.Validate())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("READY_FOR_PICKUP")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, status)

	_, err = ParseOrderStatus("COOKING")
	assert.Error(t, err)
}
