package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/features/orders/domain"
	"storefront-admin/internal/features/orders/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrderAPI is a hand-written OrderAPI double that records calls so tests
// can assert which remote operations were (or were not) issued.
type fakeOrderAPI struct {
	mu            sync.Mutex
	calls         []string
	returnOrder   *domain.Order
	returnPage    *domain.OrderPage
	transitions   []domain.Status
	returnError   error
	blockUpdate   chan struct{} // when set, UpdateStatus blocks until closed
	updateStarted chan struct{}
}

func (f *fakeOrderAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeOrderAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeOrderAPI) ListOrders(ctx context.Context, filter domain.ListFilter) (*domain.OrderPage, error) {
	f.record("ListOrders")
	return f.returnPage, f.returnError
}

func (f *fakeOrderAPI) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	f.record("GetOrder")
	return f.returnOrder, f.returnError
}

func (f *fakeOrderAPI) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	f.record("UpdateStatus")
	if f.blockUpdate != nil {
		close(f.updateStarted)
		<-f.blockUpdate
	}
	return f.returnOrder, f.returnError
}

func (f *fakeOrderAPI) RequestReturn(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	f.record("RequestReturn")
	return f.returnOrder, f.returnError
}

func (f *fakeOrderAPI) UpdateReturnStatus(ctx context.Context, orderID string, status domain.Status, refundReason string) (*domain.Order, error) {
	f.record("UpdateReturnStatus")
	return f.returnOrder, f.returnError
}

func (f *fakeOrderAPI) ValidTransitions(ctx context.Context, orderID string) ([]domain.Status, error) {
	f.record("ValidTransitions")
	return f.transitions, f.returnError
}

func (f *fakeOrderAPI) CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	f.record("CancelOrder")
	return f.returnOrder, f.returnError
}

func (f *fakeOrderAPI) DeleteOrder(ctx context.Context, orderID string) error {
	f.record("DeleteOrder")
	return f.returnError
}

func (f *fakeOrderAPI) HealthCheck(ctx context.Context) error { return nil }

// fakeCache is an in-memory Cache implementation for tests.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	flushed int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, cacheErrNotFound
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushed++
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

var cacheErrNotFound = assert.AnError

// fakeBus records published events.
type fakeBus struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *fakeBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, payload)
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, func() error { return nil }, nil
}

func (b *fakeBus) published() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

var _ cache.Cache = (*fakeCache)(nil)
var _ cache.EventBus = (*fakeBus)(nil)
var _ ports.OrderAPI = (*fakeOrderAPI)(nil)

func electronicOrder(status domain.Status) *domain.Order {
	return &domain.Order{ID: "ord-1", Status: status, PaymentMethod: domain.PaymentElectronic}
}

func codOrder(status domain.Status) *domain.Order {
	return &domain.Order{ID: "ord-2", Status: status, PaymentMethod: domain.PaymentCashOnDelivery}
}

func newTestService(api *fakeOrderAPI) (*OrderService, *fakeCache, *fakeBus) {
	c := newFakeCache()
	b := &fakeBus{}
	return NewOrderService(api, c, b, 30*time.Second), c, b
}

// TestChangeStatus_Success verifies the legal-move happy path: remote call,
// cache invalidation, event publish.
func TestChangeStatus_Success(t *testing.T) {
	api := &fakeOrderAPI{returnOrder: electronicOrder(domain.StatusReadyToShip)}
	svc, c, bus := newTestService(api)

	updated, err := svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusReadyToShip, updated.Status)
	assert.Equal(t, []string{"UpdateStatus"}, api.calls)
	assert.Equal(t, 1, c.flushed)
	require.Equal(t, 1, bus.published())

	var event OrderEvent
	require.NoError(t, json.Unmarshal(bus.messages[0], &event))
	assert.Equal(t, "order.updated", event.Kind)
	assert.Equal(t, "ord-1", event.OrderID)
	assert.Equal(t, domain.StatusReadyToShip, event.Status)
}

// TestChangeStatus_IllegalTransition verifies local rejection with no network
// call. Scenario: cash-on-delivery Delivered order cannot be cancelled.
func TestChangeStatus_IllegalTransition(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, c, bus := newTestService(api)

	_, err := svc.ChangeStatus(context.Background(), codOrder(domain.StatusDelivered), domain.StatusCancelled)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, api.callCount(), "no remote call may be issued for an illegal transition")
	assert.Zero(t, c.flushed)
	assert.Zero(t, bus.published())
}

// TestChangeStatus_RemoteRejection verifies a server-side rejection is
// surfaced without reconciling (no invalidation, no event).
func TestChangeStatus_RemoteRejection(t *testing.T) {
	api := &fakeOrderAPI{returnError: &ports.RejectionError{StatusCode: 409, Message: "stale state"}}
	svc, c, bus := newTestService(api)

	_, err := svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)

	require.Error(t, err)
	_, ok := ports.IsRejection(err)
	assert.True(t, ok)
	assert.Zero(t, c.flushed)
	assert.Zero(t, bus.published())
}

// TestChangeStatus_DoubleSubmit verifies the per-order in-flight guard.
func TestChangeStatus_DoubleSubmit(t *testing.T) {
	api := &fakeOrderAPI{
		returnOrder:   electronicOrder(domain.StatusReadyToShip),
		blockUpdate:   make(chan struct{}),
		updateStarted: make(chan struct{}),
	}
	svc, _, _ := newTestService(api)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)
		done <- err
	}()

	<-api.updateStarted
	assert.Equal(t, 1, svc.InFlightCount())

	_, err := svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)
	assert.ErrorIs(t, err, ErrMutationInFlight)

	close(api.blockUpdate)
	require.NoError(t, <-done)
	assert.Zero(t, svc.InFlightCount())
}

// TestChangeStatus_IndependentOrders verifies mutations on different orders
// do not block each other.
func TestChangeStatus_IndependentOrders(t *testing.T) {
	api := &fakeOrderAPI{
		returnOrder:   codOrder(domain.StatusProcessing),
		blockUpdate:   make(chan struct{}),
		updateStarted: make(chan struct{}),
	}
	svc, _, _ := newTestService(api)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)
		done <- err
	}()
	<-api.updateStarted

	// ord-2 is unaffected by the in-flight mutation on ord-1; validation for
	// its own cancel path runs normally.
	_, err := svc.CancelOrder(context.Background(), codOrder(domain.StatusShipped), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	close(api.blockUpdate)
	require.NoError(t, <-done)
}

// TestRequestReturn_EmptyReason verifies local rejection before any network
// call, regardless of order status.
func TestRequestReturn_EmptyReason(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, _, _ := newTestService(api)

	for _, status := range []domain.Status{domain.StatusDelivered, domain.StatusProcessing} {
		_, err := svc.RequestReturn(context.Background(), electronicOrder(status), "   ")
		assert.ErrorIs(t, err, ErrReturnReasonRequired, "status %s", status)
	}
	assert.Zero(t, api.callCount())
}

// TestRequestReturn_NotDelivered verifies the action is closed outside Delivered.
func TestRequestReturn_NotDelivered(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, _, _ := newTestService(api)

	_, err := svc.RequestReturn(context.Background(), electronicOrder(domain.StatusShipped), "damaged")
	assert.ErrorIs(t, err, ErrReturnNotAllowed)
	assert.Zero(t, api.callCount())
}

// TestRequestReturn_Success verifies the happy path.
func TestRequestReturn_Success(t *testing.T) {
	returned := electronicOrder(domain.StatusReturnRequested)
	returned.ReturnReason = "damaged"
	api := &fakeOrderAPI{returnOrder: returned}
	svc, _, bus := newTestService(api)

	updated, err := svc.RequestReturn(context.Background(), electronicOrder(domain.StatusDelivered), "damaged")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturnRequested, updated.Status)
	assert.Equal(t, []string{"RequestReturn"}, api.calls)
	assert.Equal(t, 1, bus.published())
}

// TestResolveReturn_RefundReasonRequired verifies the local refund-reason
// check fires before the transitions fetch.
func TestResolveReturn_RefundReasonRequired(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, _, _ := newTestService(api)

	_, err := svc.ResolveReturn(context.Background(), electronicOrder(domain.StatusReturned), domain.StatusRefunded, "")
	assert.ErrorIs(t, err, ErrRefundReasonRequired)
	assert.Zero(t, api.callCount())
}

// TestResolveReturn_Success verifies resolution against the server-reported set.
func TestResolveReturn_Success(t *testing.T) {
	api := &fakeOrderAPI{
		returnOrder: electronicOrder(domain.StatusRefunded),
		transitions: []domain.Status{domain.StatusRefunded, domain.StatusCompleted},
	}
	svc, _, _ := newTestService(api)

	updated, err := svc.ResolveReturn(context.Background(), electronicOrder(domain.StatusReturned), domain.StatusRefunded, "defective item")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, updated.Status)
	assert.Equal(t, []string{"ValidTransitions", "UpdateReturnStatus"}, api.calls)
}

// TestResolveReturn_TargetNotInServerSet verifies the server-reported set
// gates resolution even when the static table would allow the move.
func TestResolveReturn_TargetNotInServerSet(t *testing.T) {
	api := &fakeOrderAPI{
		transitions: []domain.Status{domain.StatusCompleted},
	}
	svc, _, _ := newTestService(api)

	_, err := svc.ResolveReturn(context.Background(), electronicOrder(domain.StatusReturned), domain.StatusRefunded, "defective item")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, []string{"ValidTransitions"}, api.calls)
}

// TestCancelOrder_AfterHandoff verifies cancellation is refused once the
// shipment is out, mirroring the table's asymmetry.
func TestCancelOrder_AfterHandoff(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, _, _ := newTestService(api)

	_, err := svc.CancelOrder(context.Background(), electronicOrder(domain.StatusOutForDelivery), "customer asked")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, api.callCount())
}

// TestCancelOrder_Success verifies the pre-fulfilment cancel path.
func TestCancelOrder_Success(t *testing.T) {
	api := &fakeOrderAPI{returnOrder: electronicOrder(domain.StatusCancelled)}
	svc, _, bus := newTestService(api)

	updated, err := svc.CancelOrder(context.Background(), electronicOrder(domain.StatusProcessing), "out of stock")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, 1, bus.published())
}

// TestDeleteCancelledOrder verifies deletion is offered only for Cancelled.
func TestDeleteCancelledOrder(t *testing.T) {
	api := &fakeOrderAPI{}
	svc, _, bus := newTestService(api)

	err := svc.DeleteCancelledOrder(context.Background(), electronicOrder(domain.StatusDelivered))
	assert.ErrorIs(t, err, ErrOrderNotCancelled)
	assert.Zero(t, api.callCount())

	err = svc.DeleteCancelledOrder(context.Background(), electronicOrder(domain.StatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, []string{"DeleteOrder"}, api.calls)

	var event OrderEvent
	require.Equal(t, 1, bus.published())
	require.NoError(t, json.Unmarshal(bus.messages[0], &event))
	assert.Equal(t, "order.deleted", event.Kind)
}

// TestListOrders_CacheRoundTrip verifies a second identical query is served
// from cache and a mutation flushes it.
func TestListOrders_CacheRoundTrip(t *testing.T) {
	page := &domain.OrderPage{Orders: []domain.Order{*electronicOrder(domain.StatusProcessing)}, Total: 1, Page: 1, PageSize: 20}
	api := &fakeOrderAPI{returnPage: page, returnOrder: electronicOrder(domain.StatusReadyToShip)}
	svc, _, _ := newTestService(api)

	filter := domain.ListFilter{Page: 1, PageSize: 20}

	first, err := svc.ListOrders(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	second, err := svc.ListOrders(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, api.callCount(), "second read must come from cache")

	// A successful mutation invalidates the cached listing.
	_, err = svc.ChangeStatus(context.Background(), electronicOrder(domain.StatusProcessing), domain.StatusReadyToShip)
	require.NoError(t, err)

	_, err = svc.ListOrders(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 3, api.callCount(), "post-mutation read must refetch")
}
