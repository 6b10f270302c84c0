package order

import (
	"context"
	"errors"
	"fmt"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

// ErrTotalMismatch reports a submitted total that disagrees with the
// server-side sum of the line snapshots.
var ErrTotalMismatch = errors.New("order total does not match item prices")

// Notifier publishes order events. A nil Notifier disables publishing;
// publish failures never fail the request that triggered them.
type Notifier interface {
	PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error
	PublishStatusChanged(ctx context.Context, msg *models.StatusChangedMessage) error
}

// Service implements order submission and lifecycle transitions on top
// of an OrderStore.
type Service struct {
	orders   store.OrderStore
	notifier Notifier
	printer  *lifecycle.AutoPrinter
	logger   *logger.Logger
}

// NewService creates an order service. notifier and printer may be nil.
func NewService(orders store.OrderStore, notifier Notifier, printer *lifecycle.AutoPrinter, log *logger.Logger) *Service {
	return &Service{orders: orders, notifier: notifier, printer: printer, logger: log}
}

// Create validates the submission, recomputes its total from the line
// snapshots and appends it to the store. The order comes back with its
// assigned id, creation timestamp and PENDING status.
func (s *Service) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	serverTotal := req.ItemsTotal()
	if !req.Total.Equal(serverTotal) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrTotalMismatch, req.Total, serverTotal)
	}

	order := &models.Order{
		Customer:      req.Customer,
		Items:         req.Items,
		Total:         serverTotal,
		DeliveryType:  req.DeliveryType,
		PaymentMethod: req.PaymentMethod,
		Observations:  req.Observations,
	}

	created, err := s.orders.Append(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	s.logger.Info("order_created", "Order created", logger.RequestIDFromContext(ctx), map[string]interface{}{
		"order_id": created.ID,
		"total":    created.Total.String(),
		"payment":  string(created.PaymentMethod),
	})

	if s.notifier != nil {
		if err := s.notifier.PublishOrderCreated(ctx, models.NewOrderCreatedMessage(created)); err != nil {
			s.logger.Error("order_created_publish_failed", "Failed to publish order created event",
				logger.RequestIDFromContext(ctx), err, map[string]interface{}{"order_id": created.ID})
		}
	}
	return created, nil
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get returns the order with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

// UpdateStatus applies a status transition on behalf of a role. The
// store serializes the legality check, so of two racing requests for
// the same transition exactly one succeeds. Accepting an order also
// triggers the kitchen ticket auto-print.
func (s *Service) UpdateStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error) {
	before, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := before.Status

	updated, err := s.orders.SetStatus(ctx, id, role, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_status_changed", "Order status changed", logger.RequestIDFromContext(ctx), map[string]interface{}{
		"order_id":   updated.ID,
		"old_status": string(old),
		"new_status": string(updated.Status),
		"changed_by": string(role),
	})

	if s.notifier != nil {
		msg := models.NewStatusChangedMessage(updated.ID, old, updated.Status, string(role))
		if err := s.notifier.PublishStatusChanged(ctx, msg); err != nil {
			s.logger.Error("status_changed_publish_failed", "Failed to publish status changed event",
				logger.RequestIDFromContext(ctx), err, map[string]interface{}{"order_id": updated.ID})
		}
	}

	if s.printer != nil && updated.Status == models.StatusAccepted {
		printed, err := s.printer.OrderAccepted(updated)
		if err != nil {
			s.logger.Error("ticket_print_failed", "Failed to print kitchen ticket",
				logger.RequestIDFromContext(ctx), err, map[string]interface{}{"order_id": updated.ID})
		} else if printed {
			s.logger.Info("ticket_printed", "Kitchen ticket printed",
				logger.RequestIDFromContext(ctx), map[string]interface{}{"order_id": updated.ID})
		}
	}
	return updated, nil
}
