package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/payment"
	"el-sabor/internal/services"
	"el-sabor/internal/services/menu"
	"el-sabor/internal/services/order"
	"el-sabor/internal/services/payments"
	"el-sabor/internal/store"
	"el-sabor/internal/store/jsonfile"
)

type ticketRecorder struct {
	printed int64
}

func (t *ticketRecorder) PrintTicket(order *models.Order) error {
	atomic.AddInt64(&t.printed, 1)
	return nil
}

type testAPI struct {
	service *order.Service
	tickets *ticketRecorder
	url     string
}

// newTestAPI stands up the full API service over a jsonfile store, the
// same wiring the api mode runs.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logger.New("client-test")
	st, err := jsonfile.New(t.TempDir(), log)
	require.NoError(t, err)

	tickets := &ticketRecorder{}
	service := order.NewService(st.Orders(), nil, lifecycle.NewAutoPrinter(tickets, true), log)

	menuH := menu.NewHandler(menu.NewService(st.Menu(), log), log)
	orderH := order.NewHandler(service, log)
	paymentsH := payments.NewHandler(
		payments.NewService(st.Orders(), payment.NewMemory(30*time.Minute), log), log)

	server := httptest.NewServer(services.NewRouter(log, "", menuH, orderH, paymentsH))
	t.Cleanup(server.Close)

	return &testAPI{service: service, tickets: tickets, url: server.URL}
}

func (a *testAPI) createOrder(t *testing.T) string {
	t.Helper()
	price := decimal.RequireFromString("45.00")
	created, err := a.service.Create(context.Background(), &models.CreateOrderRequest{
		Customer: models.Customer{Name: "Maria Lima", Phone: "81998765432"},
		Items: []models.CartLine{
			{Item: models.MenuItem{ID: 3, Name: "Pizza Margherita", Price: price}, Quantity: 1},
		},
		Total:         price,
		DeliveryType:  models.DeliveryTypePickup,
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	return created.ID
}

func TestClientListAndUpdate(t *testing.T) {
	api := newTestAPI(t)
	id := api.createOrder(t)

	c := New(api.url, logger.New("kitchen"))

	orders, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].ID)
	assert.Equal(t, models.StatusPending, orders[0].Status)

	updated, err := c.UpdateStatus(context.Background(), id, lifecycle.RoleKitchen, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)
}

// Two dashboard processes accepting the same order must produce one
// winner, one conflict, and exactly one printed ticket, because both
// go through the API service instead of opening the store directly.
func TestClientConcurrentAccept(t *testing.T) {
	api := newTestAPI(t)
	id := api.createOrder(t)

	first := New(api.url, logger.New("kitchen-1"))
	second := New(api.url, logger.New("kitchen-2"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []*Client{first, second} {
		wg.Add(1)
		go func(i int, c *Client) {
			defer wg.Done()
			_, errs[i] = c.UpdateStatus(context.Background(), id, lifecycle.RoleKitchen, models.StatusAccepted)
		}(i, c)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, lifecycle.ErrAlreadyTransitioned):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one accept must win")
	assert.Equal(t, 1, conflicts, "the loser must see a conflict")
	assert.Equal(t, int64(1), atomic.LoadInt64(&api.tickets.printed), "one accept, one ticket")
}

func TestClientErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	id := api.createOrder(t)

	c := New(api.url, logger.New("driver"))

	_, err := c.UpdateStatus(context.Background(), "ORDER-does-not-exist", lifecycle.RoleKitchen, models.StatusAccepted)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// a driver cannot accept a pending order
	_, err = c.UpdateStatus(context.Background(), id, lifecycle.RoleDriver, models.StatusAccepted)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}
