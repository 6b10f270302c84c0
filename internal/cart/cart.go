// Package cart holds the per-session selection a customer builds up
// before checkout. A line is identified by the (item id, flavor) pair,
// so the same item can sit in the cart once per flavor.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"el-sabor/internal/models"
)

// ErrFlavorRequired is returned when an item declares flavors and the
// caller adds it without choosing one. There is no default flavor.
var ErrFlavorRequired = fmt.Errorf("item requires a flavor choice")

// ErrUnknownFlavor is returned when the chosen flavor is not one of the
// item's declared options.
var ErrUnknownFlavor = fmt.Errorf("flavor is not offered for this item")

// Cart is a mutable, session-scoped item selection. It is not safe for
// concurrent use; a cart belongs to exactly one customer session.
type Cart struct {
	lines []models.CartLine
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// AddLine puts one unit of the item into the cart. Adding an identity
// already present merges into the existing line instead of appending.
func (c *Cart) AddLine(item models.MenuItem, flavor string) error {
	if item.HasFlavors() {
		if flavor == "" {
			return ErrFlavorRequired
		}
		if !item.HasFlavor(flavor) {
			return fmt.Errorf("%w: %q", ErrUnknownFlavor, flavor)
		}
	} else if flavor != "" {
		return fmt.Errorf("%w: item %q declares no flavors", ErrUnknownFlavor, item.Name)
	}

	for i := range c.lines {
		if c.lines[i].Matches(item.ID, flavor) {
			c.lines[i].Quantity++
			return nil
		}
	}

	c.lines = append(c.lines, models.CartLine{
		Item:           item,
		Quantity:       1,
		SelectedFlavor: flavor,
	})
	return nil
}

// SetQuantity sets the quantity of the line with the given identity.
// A quantity of zero or less removes exactly that line. Removal is
// keyed by the full (item id, flavor) identity; two flavors of the
// same item never interfere.
func (c *Cart) SetQuantity(itemID int, flavor string, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(itemID, flavor)
		return
	}
	for i := range c.lines {
		if c.lines[i].Matches(itemID, flavor) {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// SetFlavor changes the flavor of an existing line. If a line with the
// target identity already exists, the quantities merge.
func (c *Cart) SetFlavor(itemID int, oldFlavor, newFlavor string) error {
	src := -1
	for i := range c.lines {
		if c.lines[i].Matches(itemID, oldFlavor) {
			src = i
			break
		}
	}
	if src == -1 {
		return nil
	}
	if !c.lines[src].Item.HasFlavor(newFlavor) {
		return fmt.Errorf("%w: %q", ErrUnknownFlavor, newFlavor)
	}

	for i := range c.lines {
		if i != src && c.lines[i].Matches(itemID, newFlavor) {
			c.lines[i].Quantity += c.lines[src].Quantity
			c.lines = append(c.lines[:src], c.lines[src+1:]...)
			return nil
		}
	}

	c.lines[src].SelectedFlavor = newFlavor
	return nil
}

// RemoveLine removes the line with the given identity, if present
func (c *Cart) RemoveLine(itemID int, flavor string) {
	for i := range c.lines {
		if c.lines[i].Matches(itemID, flavor) {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a snapshot of the cart's lines
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns the sum of price times quantity over all lines
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Count returns the total number of units in the cart
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Empty reports whether the cart has no lines
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}
