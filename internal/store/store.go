// Package store defines the record-store interfaces the services
// depend on. Two backends implement them: the JSON-file store the
// system runs on by default and a PostgreSQL store.
package store

import (
	"context"
	"errors"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/models"
)

// ErrNotFound reports an unknown menu-item or order id
var ErrNotFound = errors.New("record not found")

// MenuStore holds the menu catalog
type MenuStore interface {
	// List returns all menu items in catalog order.
	List(ctx context.Context) ([]models.MenuItem, error)
	// Get returns the item with the given id or ErrNotFound.
	Get(ctx context.Context, id int) (*models.MenuItem, error)
	// Create assigns the next free id and appends the item.
	Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error)
	// Update overlays the request onto the stored item.
	Update(ctx context.Context, id int, req *models.MenuItemRequest) (*models.MenuItem, error)
	// Delete removes the item with the given id.
	Delete(ctx context.Context, id int) error
}

// OrderStore holds the append-only order log. Orders are never
// deleted; the only mutation after Append is a status transition.
type OrderStore interface {
	// Append assigns id, creation timestamp and PENDING status, then
	// stores the order.
	Append(ctx context.Context, order *models.Order) (*models.Order, error)
	// List returns all orders, newest first.
	List(ctx context.Context) ([]models.Order, error)
	// Get returns the order with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Order, error)
	// SetStatus applies a status transition on behalf of a role. The
	// legality check runs inside the store's serialization point, so
	// of two racing legal requests exactly one wins; the other gets
	// lifecycle.ErrAlreadyTransitioned.
	SetStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error)
}
