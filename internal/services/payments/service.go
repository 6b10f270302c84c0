package payments

import (
	"context"
	"fmt"
	"time"

	"el-sabor/internal/logger"
	"el-sabor/internal/payment"
	"el-sabor/internal/store"
)

// Service creates PIX charges for stored orders and reports their
// polled payment state. The gateway guarantees at-most-once charge
// creation per order, so a retried request gets the same QR code back.
type Service struct {
	orders  store.OrderStore
	gateway payment.PixGateway
	logger  *logger.Logger
}

// NewService creates a payments service
func NewService(orders store.OrderStore, gateway payment.PixGateway, log *logger.Logger) *Service {
	return &Service{orders: orders, gateway: gateway, logger: log}
}

// CreatePixCharge looks up the order and asks the gateway for a charge
// over its stored total. The amount always comes from the store, never
// from the client.
func (s *Service) CreatePixCharge(ctx context.Context, orderID, payerName, payerPhone string) (*payment.Charge, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	charge, err := s.gateway.CreatePixCharge(ctx, &payment.CreateChargeRequest{
		OrderID:     order.ID,
		Amount:      order.Total,
		Description: fmt.Sprintf("Pedido #%s", order.ID),
		Payer: payment.Payer{
			Name:  payerName,
			Phone: payerPhone,
			Email: order.Customer.Email,
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pix_charge_created", "PIX charge created", logger.RequestIDFromContext(ctx), map[string]interface{}{
		"order_id":       order.ID,
		"transaction_id": charge.TransactionID,
		"amount":         order.Total.String(),
	})
	return charge, nil
}

// GetStatus polls the gateway for the charge's payment state
func (s *Service) GetStatus(ctx context.Context, transactionID string) (*payment.ChargeStatus, error) {
	return s.gateway.GetStatus(ctx, transactionID)
}

// ExpiresIn returns the whole seconds until the charge's QR code
// expires; expired charges report zero.
func ExpiresIn(charge *payment.Charge, now time.Time) int {
	remaining := int(charge.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
