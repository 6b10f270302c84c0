package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func init() {
	// The JSON API exchanges prices as plain numbers, like the
	// stored menu.json and orders.json records.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusCanceled       OrderStatus = "CANCELED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusCompleted      OrderStatus = "COMPLETED"
)

// ParseOrderStatus validates a wire value against the known statuses
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusAccepted, StatusCanceled, StatusOutForDelivery,
		StatusDelivered, StatusReadyForPickup, StatusCompleted:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown order status: %q", s)
	}
}

// DeliveryType represents how the customer receives the order.
// DELIVERY is a dormant variant: the model and the status machine know
// it, but checkout only offers PICKUP.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "DELIVERY"
	DeliveryTypePickup   DeliveryType = "PICKUP"
)

// PaymentMethod represents how the customer pays
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentPix  PaymentMethod = "PIX"
)

// Customer represents the identity captured at checkout start
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Validate checks the checkout identification fields
func (c *Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("customer name is required")
	}
	if digits := countDigits(c.Phone); digits < 10 {
		return fmt.Errorf("customer phone must have at least 10 digits")
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// CartLine is a menu-item snapshot plus the chosen quantity and flavor.
// Line identity is the (item id, selected flavor) pair.
type CartLine struct {
	Item           MenuItem `json:"item"`
	Quantity       int      `json:"quantity"`
	SelectedFlavor string   `json:"selectedFlavor,omitempty"`
}

// Matches reports whether the line has the given identity
func (l CartLine) Matches(itemID int, flavor string) bool {
	return l.Item.ID == itemID && l.SelectedFlavor == flavor
}

// LineTotal returns price multiplied by quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a submitted order. Orders are append-only: once
// created they are mutated only through status transitions.
type Order struct {
	ID            string          `json:"id"`
	Customer      Customer        `json:"user"`
	Items         []CartLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	DeliveryType  DeliveryType    `json:"deliveryType"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	Observations  string          `json:"observations,omitempty"`
}

// ItemsTotal recomputes the total from the line snapshots
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// MaxObservationsLen bounds the free-text order note
const MaxObservationsLen = 200

// CreateOrderRequest represents the order submission payload
type CreateOrderRequest struct {
	Customer      Customer        `json:"user"`
	Items         []CartLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	DeliveryType  DeliveryType    `json:"deliveryType"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Observations  string          `json:"observations,omitempty"`
}

// Validate checks the order submission payload
func (req *CreateOrderRequest) Validate() error {
	if len(req.Items) == 0 {
		return fmt.Errorf("items are required")
	}
	for i, line := range req.Items {
		if line.Quantity < 1 {
			return fmt.Errorf("items[%d].quantity must be positive", i)
		}
		if line.Item.Price.IsNegative() {
			return fmt.Errorf("items[%d].price must not be negative", i)
		}
	}
	if err := req.Customer.Validate(); err != nil {
		return err
	}
	switch req.DeliveryType {
	case DeliveryTypePickup, DeliveryTypeDelivery:
	default:
		return fmt.Errorf("deliveryType must be PICKUP or DELIVERY")
	}
	switch req.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentPix:
	default:
		return fmt.Errorf("paymentMethod must be one of: CASH, CARD, PIX")
	}
	if utf8.RuneCountInString(req.Observations) > MaxObservationsLen {
		return fmt.Errorf("observations must not exceed %d characters", MaxObservationsLen)
	}
	return nil
}

// ItemsTotal computes the server-side total for the requested lines
func (req *CreateOrderRequest) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range req.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}
