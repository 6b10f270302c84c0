package dashboard

import (
	"context"
	"sync"
	"time"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
)

// Kitchen is the kitchen operator view. Run polls the order service at
// a fixed interval and keeps a grouped snapshot; the action methods
// apply the kitchen-role transitions.
type Kitchen struct {
	service  OrderService
	logger   *logger.Logger
	interval time.Duration

	mu          sync.Mutex
	orders      []models.Order
	lastPending int
	seeded      bool
}

// NewKitchen creates a kitchen dashboard polling at the given interval
func NewKitchen(service OrderService, log *logger.Logger, interval time.Duration) *Kitchen {
	return &Kitchen{service: service, logger: log, interval: interval}
}

// Run polls until the context is canceled. The first poll happens
// immediately so the view is populated before the first tick.
func (k *Kitchen) Run(ctx context.Context) error {
	k.Refresh(ctx)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			k.Refresh(ctx)
		}
	}
}

// Refresh reloads the snapshot once. A pending count that grew since
// the previous refresh is logged as a new-order notification; the first
// refresh only seeds the counter.
func (k *Kitchen) Refresh(ctx context.Context) {
	orders, err := k.service.List(ctx)
	if err != nil {
		k.logger.Error("kitchen_refresh_failed", "Failed to refresh kitchen dashboard",
			logger.RequestIDFromContext(ctx), err, nil)
		return
	}

	pending := 0
	for _, o := range orders {
		if o.Status == models.StatusPending {
			pending++
		}
	}

	k.mu.Lock()
	notify := k.seeded && pending > k.lastPending
	k.orders = orders
	k.lastPending = pending
	k.seeded = true
	k.mu.Unlock()

	if notify {
		k.logger.Info("new_orders_pending", "Novo Pedido!", logger.RequestIDFromContext(ctx),
			map[string]interface{}{"pending_count": pending})
	}
}

// Snapshot returns the last polled orders grouped by status
func (k *Kitchen) Snapshot() map[models.OrderStatus][]models.Order {
	k.mu.Lock()
	defer k.mu.Unlock()
	return GroupByStatus(k.orders)
}

// PendingCount returns the pending total seen by the last refresh
func (k *Kitchen) PendingCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lastPending
}

// Accept moves a pending order to ACCEPTED
func (k *Kitchen) Accept(ctx context.Context, orderID string) (*models.Order, error) {
	return k.service.UpdateStatus(ctx, orderID, lifecycle.RoleKitchen, models.StatusAccepted)
}

// Cancel moves a pending order to CANCELED
func (k *Kitchen) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	return k.service.UpdateStatus(ctx, orderID, lifecycle.RoleKitchen, models.StatusCanceled)
}

// MarkReady moves an accepted pickup order to READY_FOR_PICKUP
func (k *Kitchen) MarkReady(ctx context.Context, orderID string) (*models.Order, error) {
	return k.service.UpdateStatus(ctx, orderID, lifecycle.RoleKitchen, models.StatusReadyForPickup)
}

// Dispatch moves an accepted delivery order to OUT_FOR_DELIVERY
func (k *Kitchen) Dispatch(ctx context.Context, orderID string) (*models.Order, error) {
	return k.service.UpdateStatus(ctx, orderID, lifecycle.RoleKitchen, models.StatusOutForDelivery)
}
