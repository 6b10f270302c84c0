package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedMessage announces a freshly submitted order
type OrderCreatedMessage struct {
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	DeliveryType  DeliveryType    `json:"delivery_type"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatusChangedMessage announces an order status transition
type StatusChangedMessage struct {
	OrderID   string      `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy string      `json:"changed_by"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrderCreatedMessage builds the created event for an order
func NewOrderCreatedMessage(order *Order) *OrderCreatedMessage {
	count := 0
	for _, line := range order.Items {
		count += line.Quantity
	}
	return &OrderCreatedMessage{
		OrderID:       order.ID,
		CustomerName:  order.Customer.Name,
		DeliveryType:  order.DeliveryType,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		ItemCount:     count,
		CreatedAt:     order.CreatedAt,
	}
}

// NewStatusChangedMessage builds the transition event for an order
func NewStatusChangedMessage(orderID string, old, next OrderStatus, changedBy string) *StatusChangedMessage {
	return &StatusChangedMessage{
		OrderID:   orderID,
		OldStatus: old,
		NewStatus: next,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}
