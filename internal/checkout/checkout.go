// Package checkout drives one customer's path from a filled cart to a
// confirmed order: identification, delivery and payment choice,
// submission, and the payment-confirmation gate for PIX.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"el-sabor/internal/cart"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/payment"
	"el-sabor/internal/store"
)

// ErrNotIdentified is returned when Submit runs before Identify
var ErrNotIdentified = errors.New("customer not identified")

// ErrEmptyCart is returned when Submit runs on an empty cart
var ErrEmptyCart = errors.New("cart is empty")

// ErrAlreadySubmitted guards the single-flight rule: one checkout
// session produces at most one order and one charge.
var ErrAlreadySubmitted = errors.New("checkout already submitted")

// ErrDeliveryUnavailable is returned for the dormant DELIVERY type
var ErrDeliveryUnavailable = errors.New("delivery is not currently offered")

// Notifier publishes the order-created event; nil disables publishing
type Notifier interface {
	PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error
}

// Session is one customer's checkout. It is an explicit object passed
// through the flow rather than ambient session state.
type Session struct {
	cart     *cart.Cart
	orders   store.OrderStore
	gateway  payment.PixGateway
	notifier Notifier
	logger   *logger.Logger

	pollInterval time.Duration

	customer      *models.Customer
	deliveryType  models.DeliveryType
	paymentMethod models.PaymentMethod
	observations  string

	mu        sync.Mutex
	submitted bool
	confirmed bool
	order     *models.Order
	charge    *payment.Charge
}

// NewSession creates a checkout session around a customer's cart.
// pollInterval is how often the PIX confirmation gate checks the
// gateway; notifier may be nil.
func NewSession(c *cart.Cart, orders store.OrderStore, gateway payment.PixGateway,
	notifier Notifier, log *logger.Logger, pollInterval time.Duration) *Session {

	return &Session{
		cart:          c,
		orders:        orders,
		gateway:       gateway,
		notifier:      notifier,
		logger:        log,
		pollInterval:  pollInterval,
		deliveryType:  models.DeliveryTypePickup,
		paymentMethod: models.PaymentCash,
	}
}

// Identify captures the customer once at checkout start
func (s *Session) Identify(customer models.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	s.customer = &customer
	return nil
}

// SetDeliveryType chooses how the order is received. Only PICKUP is
// offered; DELIVERY exists in the model but is dormant.
func (s *Session) SetDeliveryType(t models.DeliveryType) error {
	if t != models.DeliveryTypePickup {
		return ErrDeliveryUnavailable
	}
	s.deliveryType = t
	return nil
}

// SetPaymentMethod chooses how the customer pays
func (s *Session) SetPaymentMethod(m models.PaymentMethod) error {
	switch m {
	case models.PaymentCash, models.PaymentCard, models.PaymentPix:
		s.paymentMethod = m
		return nil
	default:
		return fmt.Errorf("unknown payment method: %s", m)
	}
}

// SetObservations attaches the customer's free-text note. The limit
// counts characters, not bytes, so accented text gets the full budget.
func (s *Session) SetObservations(text string) error {
	if utf8.RuneCountInString(text) > models.MaxObservationsLen {
		return fmt.Errorf("observations must not exceed %d characters", models.MaxObservationsLen)
	}
	s.observations = text
	return nil
}

// Submit converts the cart into a PENDING order. For CASH and CARD the
// session confirms immediately and the cart clears; for PIX a charge
// is created and confirmation waits for AwaitPayment.
//
// When the order was stored but charge creation failed, calling Submit
// again retries only the charge. The gateway deduplicates charges per
// order, so the retry never bills twice.
func (s *Session) Submit(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	if s.submitted {
		retryCharge := s.order != nil && s.paymentMethod == models.PaymentPix && s.charge == nil
		created := s.order
		s.mu.Unlock()
		if !retryCharge {
			return nil, ErrAlreadySubmitted
		}
		if err := s.createCharge(ctx, created); err != nil {
			return created, err
		}
		return created, nil
	}
	s.submitted = true
	s.mu.Unlock()

	if s.customer == nil {
		s.reset()
		return nil, ErrNotIdentified
	}
	if s.cart.Empty() {
		s.reset()
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		Customer:      *s.customer,
		Items:         s.cart.Lines(),
		Total:         s.cart.Total(),
		DeliveryType:  s.deliveryType,
		PaymentMethod: s.paymentMethod,
		Observations:  s.observations,
	}

	created, err := s.orders.Append(ctx, order)
	if err != nil {
		s.reset()
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	s.mu.Lock()
	s.order = created
	s.mu.Unlock()

	if s.notifier != nil {
		if err := s.notifier.PublishOrderCreated(ctx, models.NewOrderCreatedMessage(created)); err != nil {
			s.logger.Error("event_publish_failed", "Order created event not published", "", err,
				map[string]interface{}{"order_id": created.ID})
		}
	}

	if s.paymentMethod != models.PaymentPix {
		s.confirm()
		return created, nil
	}

	if err := s.createCharge(ctx, created); err != nil {
		return created, err
	}
	return created, nil
}

// createCharge asks the gateway for a PIX charge on the stored order
// and records it on the session.
func (s *Session) createCharge(ctx context.Context, order *models.Order) error {
	charge, err := s.gateway.CreatePixCharge(ctx, &payment.CreateChargeRequest{
		OrderID:     order.ID,
		Amount:      order.Total,
		Description: fmt.Sprintf("Pedido #%s", order.ID),
		Payer: payment.Payer{
			Name:  order.Customer.Name,
			Phone: order.Customer.Phone,
			Email: order.Customer.Email,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create PIX charge: %w", err)
	}

	s.mu.Lock()
	s.charge = charge
	s.mu.Unlock()
	return nil
}

// AwaitPayment blocks until the PIX charge is paid, then opens the
// confirmation gate. For CASH and CARD it returns immediately. It
// returns payment.ErrPaymentExpired when the QR code lapses and the
// context error when the customer abandons the view.
func (s *Session) AwaitPayment(ctx context.Context) error {
	s.mu.Lock()
	charge := s.charge
	confirmed := s.confirmed
	s.mu.Unlock()

	if confirmed {
		return nil
	}
	if charge == nil {
		return fmt.Errorf("no charge to await")
	}

	poller := payment.NewStatusPoller(s.gateway, s.pollInterval)
	if err := poller.Wait(ctx, charge); err != nil {
		return err
	}

	s.confirm()
	return nil
}

// confirm opens the confirmation gate exactly once and clears the cart
func (s *Session) confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return
	}
	s.confirmed = true
	s.cart.Clear()
}

// reset lets a failed submission be retried
func (s *Session) reset() {
	s.mu.Lock()
	s.submitted = false
	s.mu.Unlock()
}

// Confirmed reports whether the order is confirmed to the customer
func (s *Session) Confirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// Order returns the submitted order, if any
func (s *Session) Order() *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// Charge returns the PIX charge to render, if any
func (s *Session) Charge() *payment.Charge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charge
}
