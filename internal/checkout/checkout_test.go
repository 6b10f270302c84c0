package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"el-sabor/internal/cart"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/payment"
	"el-sabor/internal/store/jsonfile"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	burger = models.MenuItem{
		ID: 1, Name: "Hambúrguer Clássico", Price: price("25.50"),
		Flavors: []string{"Bovino", "Frango", "Vegetariano"},
	}
	soda = models.MenuItem{
		ID: 6, Name: "Refrigerante Lata", Price: price("6.00"),
		Flavors: []string{"Coca-Cola", "Guaraná", "Soda"},
	}
	pizza = models.MenuItem{
		ID: 3, Name: "Pizza Margherita", Price: price("45.00"),
		Flavors: []string{"Tamanho P", "Tamanho M", "Tamanho G"},
	}
)

func newSession(t *testing.T, c *cart.Cart, gw payment.PixGateway) *Session {
	t.Helper()
	s, err := jsonfile.New(t.TempDir(), logger.New("checkout-test"))
	require.NoError(t, err)
	return NewSession(c, s.Orders(), gw, nil, logger.New("checkout-test"), 5*time.Millisecond)
}

func identify(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Identify(models.Customer{Name: "João Silva", Phone: "81995238551"}))
}

// The cash scenario: 2x Hambúrguer Clássico (Bovino) + 1x Refrigerante
// Lata (Coca-Cola) totals 57.00, submits as PENDING and confirms
// immediately.
func TestSubmit_CashConfirmsImmediately(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddLine(burger, "Bovino"))
	require.NoError(t, c.AddLine(burger, "Bovino"))
	require.NoError(t, c.AddLine(soda, "Coca-Cola"))

	session := newSession(t, c, payment.NewMemory(time.Hour))
	identify(t, session)
	require.NoError(t, session.SetPaymentMethod(models.PaymentCash))

	order, err := session.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(price("57.00")), "total = %s", order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, session.Confirmed())
	assert.True(t, c.Empty(), "cart clears on confirmed checkout")
	assert.Nil(t, session.Charge())
}

// The PIX scenario: a 45.00 charge is created, the session stays
// unconfirmed until the gateway approves, then confirms exactly once.
func TestSubmit_PixGatesConfirmation(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddLine(pizza, "Tamanho M"))

	gw := payment.NewMemory(time.Hour)
	session := newSession(t, c, gw)
	identify(t, session)
	require.NoError(t, session.SetPaymentMethod(models.PaymentPix))

	order, err := session.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, session.Confirmed(), "PIX order must not confirm before payment")
	assert.False(t, c.Empty(), "cart must survive until payment confirms")

	charge := session.Charge()
	require.NotNil(t, charge)

	go func() {
		time.Sleep(20 * time.Millisecond)
		gw.Approve(charge.TransactionID)
	}()

	require.NoError(t, session.AwaitPayment(context.Background()))
	assert.True(t, session.Confirmed())
	assert.True(t, c.Empty())

	// the gate opens once; a second wait is a no-op
	require.NoError(t, session.AwaitPayment(context.Background()))
}

func TestSubmit_PixExpiry(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddLine(pizza, "Tamanho G"))

	gw := payment.NewMemory(25 * time.Millisecond)
	session := newSession(t, c, gw)
	identify(t, session)
	require.NoError(t, session.SetPaymentMethod(models.PaymentPix))

	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	err = session.AwaitPayment(context.Background())
	assert.ErrorIs(t, err, payment.ErrPaymentExpired)
	assert.False(t, session.Confirmed())
	assert.False(t, c.Empty())
}

func TestSubmit_SingleFlight(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddLine(pizza, "Tamanho P"))

	gw := payment.NewMemory(time.Hour)
	session := newSession(t, c, gw)
	identify(t, session)
	require.NoError(t, session.SetPaymentMethod(models.PaymentPix))

	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	_, err = session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 1, gw.ChargeCount(), "one session, one charge")
}

// stumblingGateway fails the first charge creation, then behaves like
// the in-memory gateway.
type stumblingGateway struct {
	*payment.Memory
	failFirst bool
}

func (g *stumblingGateway) CreatePixCharge(ctx context.Context, req *payment.CreateChargeRequest) (*payment.Charge, error) {
	if g.failFirst {
		g.failFirst = false
		return nil, errors.New("gateway unavailable")
	}
	return g.Memory.CreatePixCharge(ctx, req)
}

// A gateway outage after the order is stored must not strand the
// customer: submitting again retries only the charge.
func TestSubmit_RetriesChargeAfterGatewayFailure(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddLine(pizza, "Tamanho M"))

	gw := &stumblingGateway{Memory: payment.NewMemory(time.Hour), failFirst: true}
	session := newSession(t, c, gw)
	identify(t, session)
	require.NoError(t, session.SetPaymentMethod(models.PaymentPix))

	order, err := session.Submit(context.Background())
	require.Error(t, err)
	require.NotNil(t, order, "the order is stored even when the charge fails")
	assert.Nil(t, session.Charge())
	assert.False(t, c.Empty(), "cart must survive a failed charge")

	retried, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, order.ID, retried.ID, "retry must reuse the stored order")

	charge := session.Charge()
	require.NotNil(t, charge)
	assert.Equal(t, 1, gw.ChargeCount(), "one order, one charge")

	// once the charge exists the single-flight rule applies again
	_, err = session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	gw.Approve(charge.TransactionID)
	require.NoError(t, session.AwaitPayment(context.Background()))
	assert.True(t, session.Confirmed())
	assert.True(t, c.Empty())
}

func TestSubmit_Preconditions(t *testing.T) {
	session := newSession(t, cart.New(), payment.NewMemory(time.Hour))

	_, err := session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotIdentified)

	identify(t, session)
	_, err = session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSetDeliveryType_DeliveryDormant(t *testing.T) {
	session := newSession(t, cart.New(), payment.NewMemory(time.Hour))

	assert.NoError(t, session.SetDeliveryType(models.DeliveryTypePickup))
	assert.ErrorIs(t, session.SetDeliveryType(models.DeliveryTypeDelivery), ErrDeliveryUnavailable)
}

func TestIdentify_Validation(t *testing.T) {
	session := newSession(t, cart.New(), payment.NewMemory(time.Hour))

	err := session.Identify(models.Customer{Name: "", Phone: "81995238551"})
	assert.Error(t, err)

	err = session.Identify(models.Customer{Name: "João", Phone: "12345"})
	assert.Error(t, err)
}
