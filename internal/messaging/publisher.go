package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"el-sabor/internal/logger"
	"el-sabor/internal/models"
)

// Publisher emits order events to the orders exchange
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishOrderCreated announces a freshly submitted order
func (p *Publisher) PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error {
	return p.publish(ctx, RoutingKeyCreated, msg)
}

// PublishStatusChanged announces an order status transition
func (p *Publisher) PublishStatusChanged(ctx context.Context, msg *models.StatusChangedMessage) error {
	return p.publish(ctx, RoutingKeyStatusPrefix+string(msg.NewStatus), msg)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, message interface{}) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: 2, // persistent
		Timestamp:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		OrdersExchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		publishing,
	)

	if err != nil {
		p.logger.Error("event_publish_failed",
			fmt.Sprintf("Failed to publish %s event", routingKey),
			"", err, map[string]interface{}{
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("event_published",
		fmt.Sprintf("Published %s event", routingKey),
		"", map[string]interface{}{
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.conn.Close()
}
