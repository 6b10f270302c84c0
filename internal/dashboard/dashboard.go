// Package dashboard implements the kitchen and driver operator views:
// explicit-interval pollers over the order service plus the transition
// actions each role is allowed to take.
package dashboard

import (
	"context"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/models"
)

// OrderService is the slice of the order service the dashboards use
type OrderService interface {
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error)
}

// GroupByStatus buckets orders for rendering, preserving their
// newest-first order within each bucket.
func GroupByStatus(orders []models.Order) map[models.OrderStatus][]models.Order {
	grouped := make(map[models.OrderStatus][]models.Order)
	for _, o := range orders {
		grouped[o.Status] = append(grouped[o.Status], o)
	}
	return grouped
}
