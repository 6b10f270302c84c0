package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MenuItem represents a catalog entry. Orders store snapshots of menu
// items, so editing or deleting an item never rewrites submitted orders.
type MenuItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Flavors     []string        `json:"flavors,omitempty"`
}

// HasFlavors reports whether the item requires a flavor choice
func (m MenuItem) HasFlavors() bool {
	return len(m.Flavors) > 0
}

// HasFlavor reports whether flavor is one of the item's declared options
func (m MenuItem) HasFlavor(flavor string) bool {
	for _, f := range m.Flavors {
		if f == flavor {
			return true
		}
	}
	return false
}

// MenuItemRequest represents the payload for creating or updating a menu item
type MenuItemRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Image       string           `json:"image"`
	Flavors     []string         `json:"flavors,omitempty"`
}

// Validate checks the create-item payload
func (req *MenuItemRequest) Validate() error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price == nil {
		return fmt.Errorf("price is required")
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// Apply overlays the non-empty request fields onto an existing item,
// keeping the original for anything the payload omits.
func (req *MenuItemRequest) Apply(item MenuItem) MenuItem {
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Image != "" {
		item.Image = req.Image
	}
	if req.Flavors != nil {
		item.Flavors = req.Flavors
	}
	return item
}
