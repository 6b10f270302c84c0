// Package menu exposes the administrative catalog CRUD surface.
package menu

import (
	"context"
	"errors"

	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

var errNegativePrice = errors.New("price must not be negative")

// Service wraps the menu store with request validation
type Service struct {
	menu   store.MenuStore
	logger *logger.Logger
}

// NewService creates a menu service
func NewService(menu store.MenuStore, log *logger.Logger) *Service {
	return &Service{menu: menu, logger: log}
}

// List returns the catalog in order
func (s *Service) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

// Create validates and stores a new item
func (s *Service) Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.menu.Create(ctx, req)
}

// Update overlays the request onto an existing item
func (s *Service) Update(ctx context.Context, id int, req *models.MenuItemRequest) (*models.MenuItem, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, errNegativePrice
	}
	return s.menu.Update(ctx, id, req)
}

// Delete removes an item from the catalog
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.menu.Delete(ctx, id)
}
