package jsonfile

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), logger.New("store-test"))
	require.NoError(t, err)
	return s
}

func testOrder() *models.Order {
	return &models.Order{
		Customer: models.Customer{Name: "João Silva", Phone: "81995238551"},
		Items: []models.CartLine{
			{
				Item:           models.MenuItem{ID: 1, Name: "Hambúrguer Clássico", Price: p("25.50")},
				Quantity:       2,
				SelectedFlavor: "Bovino",
			},
		},
		Total:         p("51.00"),
		DeliveryType:  models.DeliveryTypePickup,
		PaymentMethod: models.PaymentCash,
	}
}

func TestNew_SeedsMenu(t *testing.T) {
	s := newTestStore(t)

	menu, err := s.Menu().List(context.Background())
	require.NoError(t, err)
	require.Len(t, menu, 6)
	assert.Equal(t, "Hambúrguer Clássico", menu[0].Name)
	assert.True(t, menu[0].Price.Equal(p("25.50")))
	assert.Equal(t, []string{"Bovino", "Frango", "Vegetariano"}, menu[0].Flavors)
}

func TestMenu_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	menu := s.Menu()

	price := decimal.RequireFromString("12.00")
	created, err := menu.Create(ctx, &models.MenuItemRequest{
		Name:     "Suco de Laranja",
		Price:    &price,
		Category: "Bebidas",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID, "ids continue past the seed data")

	newPrice := decimal.RequireFromString("14.00")
	updated, err := menu.Update(ctx, created.ID, &models.MenuItemRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "Suco de Laranja", updated.Name, "partial update keeps existing fields")
	assert.True(t, updated.Price.Equal(newPrice))

	require.NoError(t, menu.Delete(ctx, created.ID))
	_, err = menu.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = menu.Delete(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrders_AppendAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Orders().Append(ctx, testOrder())
	require.NoError(t, err)
	second, err := s.Orders().Append(ctx, testOrder())
	require.NoError(t, err)

	assert.Regexp(t, `^ORDER-\d+$`, first.ID)
	assert.NotEqual(t, first.ID, second.ID, "same-millisecond appends stay distinct")
	assert.Equal(t, models.StatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())

	orders, err := s.Orders().List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")
}

func TestOrders_SetStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order, err := s.Orders().Append(ctx, testOrder())
	require.NoError(t, err)

	updated, err := s.Orders().SetStatus(ctx, order.ID, lifecycle.RoleKitchen, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	// the write persisted
	got, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	// repeat of the same transition
	_, err = s.Orders().SetStatus(ctx, order.ID, lifecycle.RoleKitchen, models.StatusAccepted)
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyTransitioned)

	// skipping a state
	_, err = s.Orders().SetStatus(ctx, order.ID, lifecycle.RoleDriver, models.StatusCompleted)
	var invalid *lifecycle.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)

	_, err = s.Orders().SetStatus(ctx, "ORDER-0", lifecycle.RoleKitchen, models.StatusAccepted)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestOrders_SetStatus_Race fires concurrent accepts at one order;
// exactly one caller may win, everyone else observes the applied state.
func TestOrders_SetStatus_Race(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order, err := s.Orders().Append(ctx, testOrder())
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Orders().SetStatus(ctx, order.ID, lifecycle.RoleKitchen, models.StatusAccepted)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, lifecycle.ErrAlreadyTransitioned)
		}
	}
	assert.Equal(t, 1, wins)

	got, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	log := logger.New("store-test")

	s, err := New(dir, log)
	require.NoError(t, err)
	order, err := s.Orders().Append(context.Background(), testOrder())
	require.NoError(t, err)

	reopened, err := New(dir, log)
	require.NoError(t, err)
	got, err := reopened.Orders().Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(p("51.00")))
	assert.Equal(t, "João Silva", got.Customer.Name)
}
