package payment

import (
	"context"
	"fmt"
	"time"
)

// StatusPoller asks the gateway for a charge's state at a fixed
// interval until the charge is paid, expires, or the caller cancels.
type StatusPoller struct {
	gateway  PixGateway
	interval time.Duration
}

// NewStatusPoller creates a poller with an explicit interval
func NewStatusPoller(gateway PixGateway, interval time.Duration) *StatusPoller {
	return &StatusPoller{gateway: gateway, interval: interval}
}

// Wait blocks until the charge is paid (nil), the QR code expires
// (ErrPaymentExpired), or ctx is cancelled. The first check runs
// immediately so an already-paid charge returns without waiting a
// tick. Transient gateway failures do not abort the wait; a paid
// charge must not be abandoned over one bad poll, so errors are
// retried on the next tick until the charge expires.
func (p *StatusPoller) Wait(ctx context.Context, charge *Charge) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		if !charge.ExpiresAt.IsZero() && time.Now().After(charge.ExpiresAt) {
			if lastErr != nil {
				return fmt.Errorf("%w (last poll error: %v)", ErrPaymentExpired, lastErr)
			}
			return ErrPaymentExpired
		}

		status, err := p.gateway.GetStatus(ctx, charge.TransactionID)
		if err != nil {
			lastErr = err
		} else {
			lastErr = nil
			if status.Paid {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
