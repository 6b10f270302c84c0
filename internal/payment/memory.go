package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process gateway for development and tests. Charges
// start pending; Approve flips them to paid the way a real payer
// scanning the QR code would.
type Memory struct {
	mu       sync.Mutex
	byOrder  map[string]*Charge
	statuses map[string]*ChargeStatus
	ttl      time.Duration
}

// NewMemory creates an in-process gateway whose charges expire after ttl
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		byOrder:  make(map[string]*Charge),
		statuses: make(map[string]*ChargeStatus),
		ttl:      ttl,
	}
}

// CreatePixCharge creates a pending charge, one per order id
func (g *Memory) CreatePixCharge(ctx context.Context, req *CreateChargeRequest) (*Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if charge, ok := g.byOrder[req.OrderID]; ok {
		return charge, nil
	}

	txID := uuid.NewString()
	charge := &Charge{
		TransactionID: txID,
		QRCodeImage:   "iVBORw0KGgo=",
		QRCodeText:    fmt.Sprintf("00020126PIX%s", txID),
		ExpiresAt:     time.Now().UTC().Add(g.ttl),
	}

	g.byOrder[req.OrderID] = charge
	g.statuses[txID] = &ChargeStatus{Status: "pending", StatusDetail: "pending_waiting_transfer"}
	return charge, nil
}

// GetStatus returns the charge state
func (g *Memory) GetStatus(ctx context.Context, transactionID string) (*ChargeStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.statuses[transactionID]
	if !ok {
		return nil, &GatewayError{StatusCode: 404, Detail: "unknown transaction " + transactionID}
	}
	out := *status
	return &out, nil
}

// Approve marks a charge as paid
func (g *Memory) Approve(transactionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if status, ok := g.statuses[transactionID]; ok {
		status.Status = "approved"
		status.StatusDetail = "accredited"
		status.Paid = true
	}
}

// ChargeCount reports how many charges exist, for duplicate checks
func (g *Memory) ChargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.byOrder)
}
