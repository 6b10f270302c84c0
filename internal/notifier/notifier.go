// Package notifier runs the console notification mode: it consumes the
// order event queue and prints human-readable pt-BR notifications for
// new and transitioned orders.
package notifier

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"el-sabor/internal/logger"
	"el-sabor/internal/messaging"
	"el-sabor/internal/models"
	"el-sabor/internal/printer"
)

// Subscriber consumes order events and displays notifications
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a notification subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start consumes until the context is canceled or a shutdown signal
// arrives.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleEvent); err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.close(requestID)
	case <-s.done:
		return nil
	}
}

func (s *Subscriber) handleEvent(ctx context.Context, routingKey string, body []byte) error {
	requestID := logger.GenerateRequestID()

	switch {
	case routingKey == messaging.RoutingKeyCreated:
		var msg models.OrderCreatedMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			s.logger.Error("message_parsing_failed", "Failed to parse order created event", requestID, err, nil)
			return fmt.Errorf("failed to parse order created event: %w", err)
		}
		fmt.Println(FormatOrderCreated(&msg))
		s.logger.Info("notification_displayed", "Order created notification displayed", requestID,
			map[string]interface{}{"order_id": msg.OrderID, "total": msg.Total.String()})
		return nil

	case strings.HasPrefix(routingKey, messaging.RoutingKeyStatusPrefix):
		var msg models.StatusChangedMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			s.logger.Error("message_parsing_failed", "Failed to parse status changed event", requestID, err, nil)
			return fmt.Errorf("failed to parse status changed event: %w", err)
		}
		fmt.Println(FormatStatusChanged(&msg))
		s.logger.Info("notification_displayed", "Status notification displayed", requestID,
			map[string]interface{}{
				"order_id":   msg.OrderID,
				"old_status": string(msg.OldStatus),
				"new_status": string(msg.NewStatus),
				"changed_by": msg.ChangedBy,
			})
		return nil

	default:
		s.logger.Debug("event_ignored", "Ignoring event with unknown routing key", requestID,
			map[string]interface{}{"routing_key": routingKey})
		return nil
	}
}

// FormatOrderCreated renders the console line for a new order
func FormatOrderCreated(msg *models.OrderCreatedMessage) string {
	return fmt.Sprintf("🔔 [%s] Novo pedido %s de %s: %d item(ns), %s (%s)",
		msg.CreatedAt.Format("02/01/2006 15:04:05"),
		printer.ShortOrderID(msg.OrderID),
		msg.CustomerName,
		msg.ItemCount,
		printer.FormatBRL(msg.Total),
		models.TranslatePaymentMethod(msg.PaymentMethod),
	)
}

// FormatStatusChanged renders the console line for a transition
func FormatStatusChanged(msg *models.StatusChangedMessage) string {
	timestamp := msg.Timestamp.Format("02/01/2006 15:04:05")
	id := printer.ShortOrderID(msg.OrderID)

	switch msg.NewStatus {
	case models.StatusAccepted:
		return fmt.Sprintf("🍳 [%s] Pedido %s aceito pela cozinha.", timestamp, id)
	case models.StatusReadyForPickup:
		return fmt.Sprintf("✅ [%s] Pedido %s pronto para retirada!", timestamp, id)
	case models.StatusOutForDelivery:
		return fmt.Sprintf("🛵 [%s] Pedido %s saiu para entrega.", timestamp, id)
	case models.StatusDelivered, models.StatusCompleted:
		return fmt.Sprintf("🎉 [%s] Pedido %s concluído. Obrigado!", timestamp, id)
	case models.StatusCanceled:
		return fmt.Sprintf("❌ [%s] Pedido %s foi cancelado.", timestamp, id)
	default:
		return fmt.Sprintf("📋 [%s] Pedido %s: %s -> %s (%s)", timestamp, id,
			models.TranslateOrderStatus(msg.OldStatus),
			models.TranslateOrderStatus(msg.NewStatus),
			msg.ChangedBy,
		)
	}
}

func (s *Subscriber) close(requestID string) error {
	if s.consumer != nil {
		if err := s.consumer.Close(); err != nil {
			s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, err, nil)
		}
	}
	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
