// Package postgres implements the record-store interfaces on
// PostgreSQL. Status writes use an expected-status predicate so racing
// transitions resolve the same way the JSON-file store resolves them.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"el-sabor/internal/database"
	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

// Store is a PostgreSQL-backed MenuStore and OrderStore
type Store struct {
	db     *database.DB
	logger *logger.Logger

	mu              sync.Mutex
	lastOrderMillis int64
}

// New wraps an open database connection
func New(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// Menu returns the store's MenuStore view
func (s *Store) Menu() store.MenuStore { return menuView{s} }

// Orders returns the store's OrderStore view
func (s *Store) Orders() store.OrderStore { return orderView{s} }

type menuView struct{ *Store }

type orderView struct{ *Store }

func (v orderView) List(ctx context.Context) ([]models.Order, error) {
	return v.ListOrders(ctx)
}

func (v orderView) Get(ctx context.Context, id string) (*models.Order, error) {
	return v.GetOrder(ctx, id)
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var (
		item      models.MenuItem
		priceText string
		flavors   []byte
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &priceText,
		&item.Category, &item.Image, &flavors)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if item.Price, err = decimal.NewFromString(priceText); err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", priceText, err)
	}
	if len(flavors) > 0 {
		if err := json.Unmarshal(flavors, &item.Flavors); err != nil {
			return nil, fmt.Errorf("invalid stored flavors: %w", err)
		}
	}
	return &item, nil
}

// List returns all menu items in catalog order
func (s *Store) List(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, database.SelectMenuSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menu []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		menu = append(menu, *item)
	}
	return menu, rows.Err()
}

// Get returns the menu item with the given id
func (s *Store) Get(ctx context.Context, id int) (*models.MenuItem, error) {
	return scanMenuItem(s.db.QueryRow(ctx, database.SelectMenuItemSQL, id))
}

// Create inserts a new menu item and returns it with its assigned id
func (s *Store) Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error) {
	item := req.Apply(models.MenuItem{})

	flavors, err := marshalFlavors(item.Flavors)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, database.InsertMenuItemSQL,
		item.Name, item.Description, item.Price.String(), item.Category, item.Image, flavors,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return &item, nil
}

// Update overlays the request onto the stored item
func (s *Store) Update(ctx context.Context, id int, req *models.MenuItemRequest) (*models.MenuItem, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item := req.Apply(*current)
	flavors, err := marshalFlavors(item.Flavors)
	if err != nil {
		return nil, err
	}

	err = s.db.Exec(ctx, database.UpdateMenuItemSQL,
		id, item.Name, item.Description, item.Price.String(), item.Category, item.Image, flavors)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return &item, nil
}

// Delete removes the item with the given id
func (s *Store) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Pool.Exec(ctx, database.DeleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func marshalFlavors(flavors []string) ([]byte, error) {
	if len(flavors) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(flavors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flavors: %w", err)
	}
	return data, nil
}

// Append assigns id, timestamp and PENDING status, then inserts the order
func (s *Store) Append(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	millis := now.UnixMilli()
	if millis <= s.lastOrderMillis {
		millis = s.lastOrderMillis + 1
	}
	s.lastOrderMillis = millis
	s.mu.Unlock()

	stored := *order
	stored.ID = fmt.Sprintf("ORDER-%d", millis)
	stored.CreatedAt = now
	stored.Status = models.StatusPending

	items, err := json.Marshal(stored.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	err = s.db.Exec(ctx, database.InsertOrderSQL,
		stored.ID,
		stored.Customer.Name,
		stored.Customer.Phone,
		nullable(stored.Customer.Email),
		nullable(stored.Customer.Address),
		items,
		stored.Total.String(),
		string(stored.Status),
		string(stored.DeliveryType),
		string(stored.PaymentMethod),
		nullable(stored.Observations),
		stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return &stored, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order     models.Order
		email     *string
		address   *string
		obs       *string
		items     []byte
		totalText string
	)
	err := row.Scan(&order.ID, &order.Customer.Name, &order.Customer.Phone, &email, &address,
		&items, &totalText, &order.Status, &order.DeliveryType, &order.PaymentMethod,
		&obs, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if email != nil {
		order.Customer.Email = *email
	}
	if address != nil {
		order.Customer.Address = *address
	}
	if obs != nil {
		order.Observations = *obs
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("invalid stored order items: %w", err)
	}
	if order.Total, err = decimal.NewFromString(totalText); err != nil {
		return nil, fmt.Errorf("invalid stored total %q: %w", totalText, err)
	}
	return &order, nil
}

// ListOrders returns all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, database.SelectOrdersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// GetOrder returns the order with the given id
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, database.SelectOrderSQL, id))
}

// SetStatus applies a status transition through an expected-status
// conditional update. A raced caller whose predicate no longer matches
// re-reads and reports against the fresh state.
func (s *Store) SetStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var statusText string
		err := s.db.QueryRow(ctx, database.SelectOrderStatusSQL, id).Scan(&statusText)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, store.ErrNotFound
			}
			return nil, err
		}
		current := models.OrderStatus(statusText)

		if err := lifecycle.Apply(role, current, next); err != nil {
			return nil, err
		}

		tag, err := s.db.Pool.Exec(ctx, database.UpdateOrderStatusSQL, id, string(next), string(current))
		if err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return s.GetOrder(ctx, id)
		}
		// Lost the race; loop re-reads and judges the new state.
	}
	return nil, lifecycle.ErrAlreadyTransitioned
}
