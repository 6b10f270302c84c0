// Package jsonfile persists the menu and the order log as two flat
// JSON record files, the layout the system has always used. Every
// read-modify-write sequence runs under a single mutex, which is the
// store's serialization point against concurrent admin, kitchen and
// driver access.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

const (
	menuFile   = "menu.json"
	ordersFile = "orders.json"
)

// Store is a JSON-file-backed MenuStore and OrderStore
type Store struct {
	dir    string
	logger *logger.Logger

	mu              sync.Mutex
	lastOrderMillis int64
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

// New prepares the data directory and seeds the record files on first
// run. An uncreatable data directory is fatal; the caller should exit.
func New(dataDir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	s := &Store{dir: dataDir, logger: log}

	if err := s.initFile(menuFile, seedMenu); err != nil {
		return nil, err
	}
	if err := s.initFile(ordersFile, []models.Order{}); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initFile(name string, initial interface{}) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := s.writeFile(name, initial); err != nil {
		return err
	}
	s.logger.Info("store_seeded", fmt.Sprintf("Initialized %s", name), "startup", nil)
	return nil
}

func (s *Store) readFile(name string, out interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeFile(name string, in interface{}) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// List returns all menu items in catalog order
func (s *Store) List(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var menu []models.MenuItem
	if err := s.readFile(menuFile, &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// Get returns the menu item with the given id
func (s *Store) Get(ctx context.Context, id int) (*models.MenuItem, error) {
	menu, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range menu {
		if menu[i].ID == id {
			return &menu[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// Create assigns the next free id and appends the item to the catalog
func (s *Store) Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var menu []models.MenuItem
	if err := s.readFile(menuFile, &menu); err != nil {
		return nil, err
	}

	nextID := 1
	for _, item := range menu {
		if item.ID >= nextID {
			nextID = item.ID + 1
		}
	}

	item := req.Apply(models.MenuItem{ID: nextID})
	menu = append(menu, item)

	if err := s.writeFile(menuFile, menu); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update overlays the request onto the stored item
func (s *Store) Update(ctx context.Context, id int, req *models.MenuItemRequest) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var menu []models.MenuItem
	if err := s.readFile(menuFile, &menu); err != nil {
		return nil, err
	}

	for i := range menu {
		if menu[i].ID == id {
			menu[i] = req.Apply(menu[i])
			if err := s.writeFile(menuFile, menu); err != nil {
				return nil, err
			}
			return &menu[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// Delete removes the item with the given id from the catalog
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var menu []models.MenuItem
	if err := s.readFile(menuFile, &menu); err != nil {
		return err
	}

	filtered := menu[:0:0]
	for _, item := range menu {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == len(menu) {
		return store.ErrNotFound
	}

	return s.writeFile(menuFile, filtered)
}

// Append assigns id, timestamp and PENDING status, then stores the order
func (s *Store) Append(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []models.Order
	if err := s.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	millis := now.UnixMilli()
	// Two appends inside the same millisecond must still get
	// distinguishable ids.
	if millis <= s.lastOrderMillis {
		millis = s.lastOrderMillis + 1
	}
	s.lastOrderMillis = millis

	stored := *order
	stored.ID = fmt.Sprintf("ORDER-%d", millis)
	stored.CreatedAt = now
	stored.Status = models.StatusPending

	orders = append(orders, stored)
	if err := s.writeFile(ordersFile, orders); err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []models.Order
	if err := s.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}

	// Stored oldest first; callers want newest first.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	return orders, nil
}

// GetOrder returns the order with the given id
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []models.Order
	if err := s.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// SetStatus applies a status transition. The legality check runs while
// the store mutex is held, so two racing legal requests resolve to one
// winner and one lifecycle.ErrAlreadyTransitioned.
func (s *Store) SetStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []models.Order
	if err := s.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if err := lifecycle.Apply(role, orders[i].Status, next); err != nil {
			return nil, err
		}
		orders[i].Status = next
		if err := s.writeFile(ordersFile, orders); err != nil {
			return nil, err
		}
		return &orders[i], nil
	}
	return nil, store.ErrNotFound
}
