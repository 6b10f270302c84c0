package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
)

type fakeOrderService struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	lists  int
}

func newFakeOrderService() *fakeOrderService {
	return &fakeOrderService{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderService) add(id string, status models.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[id] = &models.Order{ID: id, Status: status}
}

func (f *fakeOrderService) List(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderService) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := f.orders[id]
	if err := lifecycle.Apply(role, order.Status, next); err != nil {
		return nil, err
	}
	order.Status = next
	copied := *order
	return &copied, nil
}

func TestKitchenRefreshGroupsByStatus(t *testing.T) {
	svc := newFakeOrderService()
	svc.add("ORDER-1", models.StatusPending)
	svc.add("ORDER-2", models.StatusPending)
	svc.add("ORDER-3", models.StatusAccepted)

	k := NewKitchen(svc, logger.New("kitchen-test"), time.Second)
	k.Refresh(context.Background())

	snapshot := k.Snapshot()
	assert.Len(t, snapshot[models.StatusPending], 2)
	assert.Len(t, snapshot[models.StatusAccepted], 1)
	assert.Equal(t, 2, k.PendingCount())
}

func TestKitchenTracksPendingGrowth(t *testing.T) {
	svc := newFakeOrderService()
	svc.add("ORDER-1", models.StatusPending)

	k := NewKitchen(svc, logger.New("kitchen-test"), time.Second)
	ctx := context.Background()

	k.Refresh(ctx)
	require.Equal(t, 1, k.PendingCount())

	svc.add("ORDER-2", models.StatusPending)
	k.Refresh(ctx)
	assert.Equal(t, 2, k.PendingCount())
}

func TestKitchenActions(t *testing.T) {
	svc := newFakeOrderService()
	svc.add("ORDER-1", models.StatusPending)
	svc.add("ORDER-2", models.StatusPending)
	svc.add("ORDER-3", models.StatusAccepted)

	k := NewKitchen(svc, logger.New("kitchen-test"), time.Second)
	ctx := context.Background()

	accepted, err := k.Accept(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	canceled, err := k.Cancel(ctx, "ORDER-2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)

	ready, err := k.MarkReady(ctx, "ORDER-3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForPickup, ready.Status)

	_, err = k.Accept(ctx, "ORDER-1")
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyTransitioned)
}

func TestKitchenRunPollsUntilCanceled(t *testing.T) {
	svc := newFakeOrderService()
	k := NewKitchen(svc, logger.New("kitchen-test"), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	assert.Eventually(t, func() bool { return svc.listCount() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewDriverValidatesID(t *testing.T) {
	svc := newFakeOrderService()
	log := logger.New("driver-test")
	allowed := []string{"DRIVER1", "DRIVER2"}

	_, err := NewDriver(svc, log, time.Second, "DRIVER9", allowed)
	assert.ErrorIs(t, err, ErrUnknownDriver)

	d, err := NewDriver(svc, log, time.Second, " driver1 ", allowed)
	require.NoError(t, err)
	assert.Equal(t, "DRIVER1", d.DriverID())
}

func TestDriverQueueFiltersStatuses(t *testing.T) {
	svc := newFakeOrderService()
	svc.add("ORDER-1", models.StatusPending)
	svc.add("ORDER-2", models.StatusReadyForPickup)
	svc.add("ORDER-3", models.StatusCompleted)
	svc.add("ORDER-4", models.StatusAccepted)

	d, err := NewDriver(svc, logger.New("driver-test"), time.Second, "DRIVER1", []string{"DRIVER1"})
	require.NoError(t, err)
	d.Refresh(context.Background())

	queue := d.Queue()
	require.Len(t, queue, 2)
	for _, o := range queue {
		assert.Contains(t, []models.OrderStatus{models.StatusReadyForPickup, models.StatusCompleted}, o.Status)
	}
}

func TestDriverComplete(t *testing.T) {
	svc := newFakeOrderService()
	svc.add("ORDER-1", models.StatusReadyForPickup)
	svc.add("ORDER-2", models.StatusPending)
	svc.add("ORDER-3", models.StatusOutForDelivery)

	d, err := NewDriver(svc, logger.New("driver-test"), time.Second, "DRIVER1", []string{"DRIVER1"})
	require.NoError(t, err)
	ctx := context.Background()

	completed, err := d.Complete(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	delivered, err := d.MarkDelivered(ctx, "ORDER-3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)

	var invalid *lifecycle.InvalidTransitionError
	_, err = d.Complete(ctx, "ORDER-2")
	assert.ErrorAs(t, err, &invalid)
}

func TestGroupByStatusEmpty(t *testing.T) {
	assert.Empty(t, GroupByStatus(nil))
}
