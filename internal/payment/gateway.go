// Package payment wraps the PIX payment gateway behind a fixed
// adapter interface. The rest of the system only ever creates a charge
// for an order and asks whether it has been paid.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPaymentExpired reports that a charge's QR code expired before a
// paid status was observed.
var ErrPaymentExpired = errors.New("payment expired")

// GatewayError reports a failed or malformed gateway exchange. The
// detail stays server-side; clients get a generic message.
type GatewayError struct {
	StatusCode int
	Detail     string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Detail)
}

// Payer identifies who pays a charge
type Payer struct {
	Name  string
	Phone string
	Email string
}

// CreateChargeRequest asks the gateway for a new PIX charge
type CreateChargeRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Description string
	Payer       Payer
}

// Charge is the created PIX charge the customer pays against
type Charge struct {
	TransactionID string
	QRCodeImage   string
	QRCodeText    string
	ExpiresAt     time.Time
}

// ChargeStatus is the polled state of a charge
type ChargeStatus struct {
	Status       string
	StatusDetail string
	Paid         bool
}

// PixGateway is the capability boundary to the payment provider.
// CreatePixCharge must be at-most-once per order: retrying for an
// order that already has a charge returns the existing charge instead
// of creating a duplicate.
type PixGateway interface {
	CreatePixCharge(ctx context.Context, req *CreateChargeRequest) (*Charge, error)
	GetStatus(ctx context.Context, transactionID string) (*ChargeStatus, error)
}
