package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
)

// ErrUnknownDriver reports a driver id outside the configured list
var ErrUnknownDriver = errors.New("unknown driver id")

// Driver is the driver operator view. It polls the order service and
// keeps only the pickup queue: orders ready for pickup plus the ones
// already completed. Orders are not assigned to individual drivers;
// every driver sees the whole queue.
type Driver struct {
	service  OrderService
	logger   *logger.Logger
	interval time.Duration
	driverID string

	mu     sync.Mutex
	orders []models.Order
}

// NewDriver creates a driver dashboard for an authenticated driver id.
// The id must appear in allowedIDs; matching ignores case.
func NewDriver(service OrderService, log *logger.Logger, interval time.Duration, driverID string, allowedIDs []string) (*Driver, error) {
	normalized := strings.ToUpper(strings.TrimSpace(driverID))
	allowed := false
	for _, id := range allowedIDs {
		if strings.EqualFold(id, normalized) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrUnknownDriver
	}
	return &Driver{service: service, logger: log, interval: interval, driverID: normalized}, nil
}

// DriverID returns the authenticated driver id
func (d *Driver) DriverID() string {
	return d.driverID
}

// Run polls until the context is canceled
func (d *Driver) Run(ctx context.Context) error {
	d.Refresh(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Refresh(ctx)
		}
	}
}

// Refresh reloads the pickup queue once
func (d *Driver) Refresh(ctx context.Context) {
	orders, err := d.service.List(ctx)
	if err != nil {
		d.logger.Error("driver_refresh_failed", "Failed to refresh driver dashboard",
			logger.RequestIDFromContext(ctx), err, map[string]interface{}{"driver_id": d.driverID})
		return
	}

	queue := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.StatusReadyForPickup || o.Status == models.StatusCompleted {
			queue = append(queue, o)
		}
	}

	d.mu.Lock()
	d.orders = queue
	d.mu.Unlock()
}

// Queue returns the last polled pickup queue, newest first
func (d *Driver) Queue() []models.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Order, len(d.orders))
	copy(out, d.orders)
	return out
}

// Complete marks a ready-for-pickup order as picked up
func (d *Driver) Complete(ctx context.Context, orderID string) (*models.Order, error) {
	return d.service.UpdateStatus(ctx, orderID, lifecycle.RoleDriver, models.StatusCompleted)
}

// MarkDelivered closes an out-for-delivery order
func (d *Driver) MarkDelivered(ctx context.Context, orderID string) (*models.Order, error) {
	return d.service.UpdateStatus(ctx, orderID, lifecycle.RoleDriver, models.StatusDelivered)
}
