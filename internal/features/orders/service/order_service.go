package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/orders/domain"
	"storefront-admin/internal/features/orders/ports"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTransition is returned when the requested status is not a
	// legal move for the order. No network call is made.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrReturnReasonRequired is returned when a return is requested without a reason.
	ErrReturnReasonRequired = errors.New("return reason is required")
	// ErrReturnNotAllowed is returned when a return is requested for an order
	// that has not been delivered.
	ErrReturnNotAllowed = errors.New("returns can only be requested for delivered orders")
	// ErrRefundReasonRequired is returned when resolving a return to Refunded
	// without a refund reason.
	ErrRefundReasonRequired = errors.New("refund reason is required")
	// ErrOrderNotCancelled is returned when deletion is attempted on an order
	// that is not in the Cancelled state.
	ErrOrderNotCancelled = errors.New("only cancelled orders can be deleted")
	// ErrMutationInFlight is returned when a second mutation is attempted on
	// an order whose previous mutation has not completed.
	ErrMutationInFlight = errors.New("another change for this order is still in progress")
)

// EventChannel is the bus channel order lifecycle events are published on.
const EventChannel = "admin:events"

const listCacheKeyPrefix = "orders:list:"

// OrderEvent is the payload published after a successful mutation. Consumers
// treat it as a refetch hint only; it carries no authoritative state.
type OrderEvent struct {
	// Kind is the event type, e.g. "order.updated" or "order.deleted".
	Kind string `json:"kind"`
	// OrderID identifies the affected order.
	OrderID string `json:"order_id"`
	// Status is the server-confirmed status after the mutation, if any.
	Status domain.Status `json:"status,omitempty"`
	// At is when the mutation completed.
	At time.Time `json:"at"`
}

// OrderService coordinates between operator intent and the remote order API.
// It validates actions against the transition policy table before issuing any
// network call, guards against double-submits per order, and reconciles by
// invalidating cached reads rather than patching local state. The remote
// platform stays authoritative and may reject transitions of its own.
type OrderService struct {
	api     ports.OrderAPI
	cache   cache.Cache
	bus     cache.EventBus
	listTTL time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOrderService creates a new OrderService.
func NewOrderService(api ports.OrderAPI, c cache.Cache, bus cache.EventBus, listTTL time.Duration) *OrderService {
	return &OrderService{
		api:      api,
		cache:    c,
		bus:      bus,
		listTTL:  listTTL,
		inFlight: make(map[string]bool),
	}
}

// ListOrders returns a page of orders, served from cache when a recent
// identical query exists.
func (s *OrderService) ListOrders(ctx context.Context, filter domain.ListFilter) (*domain.OrderPage, error) {
	key := listCacheKey(filter)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var page domain.OrderPage
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
	}

	page, err := s.api.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, data, s.listTTL); err != nil {
			logger.Get().Debug("Failed to cache order list", zap.Error(err))
		}
	}

	return page, nil
}

// GetOrder fetches one order from the remote platform.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Transitions returns the locally known legal moves for an order.
func (s *OrderService) Transitions(order *domain.Order) []domain.Status {
	return domain.ValidTransitions(order.PaymentMethod, order.Status)
}

// ServerTransitions fetches the transitions the platform reports for one
// order. Used by the return-resolution flow, where the platform may apply
// narrower, order-specific rules than the static table.
func (s *OrderService) ServerTransitions(ctx context.Context, orderID string) ([]domain.Status, error) {
	transitions, err := s.api.ValidTransitions(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transitions: %w", err)
	}
	return transitions, nil
}

// ChangeStatus moves an order to the target status. The target must be legal
// per the transition policy table, otherwise the call fails locally without
// touching the network. On success, cached listings are invalidated and an
// order.updated event is published so consoles refetch.
func (s *OrderService) ChangeStatus(ctx context.Context, order *domain.Order, target domain.Status) (*domain.Order, error) {
	if !domain.CanTransition(order.PaymentMethod, order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, order.Status, target, order.PaymentMethod)
	}

	if err := s.begin(order.ID); err != nil {
		return nil, err
	}
	defer s.end(order.ID)

	updated, err := s.api.UpdateStatus(ctx, order.ID, target)
	if err != nil {
		return nil, err
	}

	s.reconcile(ctx, OrderEvent{Kind: "order.updated", OrderID: updated.ID, Status: updated.Status})
	return updated, nil
}

// RequestReturn opens a return for a delivered order. The reason is mandatory
// and checked before anything else, so an empty reason rejects locally
// regardless of order state.
func (s *OrderService) RequestReturn(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReturnReasonRequired
	}
	if order.Status != domain.StatusDelivered {
		return nil, fmt.Errorf("%w: order is %s", ErrReturnNotAllowed, order.Status)
	}

	if err := s.begin(order.ID); err != nil {
		return nil, err
	}
	defer s.end(order.ID)

	updated, err := s.api.RequestReturn(ctx, order.ID, reason)
	if err != nil {
		return nil, err
	}

	s.reconcile(ctx, OrderEvent{Kind: "order.updated", OrderID: updated.ID, Status: updated.Status})
	return updated, nil
}

// ResolveReturn advances an open return to newStatus. The target must be in
// the per-order transition set reported by the platform; when that set
// disagrees with the static table for a state the table knows, the mismatch
// is logged and the platform wins. Resolving to Refunded requires a refund
// reason, checked locally before any network call.
func (s *OrderService) ResolveReturn(ctx context.Context, order *domain.Order, newStatus domain.Status, refundReason string) (*domain.Order, error) {
	if newStatus == domain.StatusRefunded && strings.TrimSpace(refundReason) == "" {
		return nil, ErrRefundReasonRequired
	}

	serverTransitions, err := s.ServerTransitions(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.warnOnTableMismatch(order, serverTransitions)

	if !containsStatus(serverTransitions, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s (server-reported set %v)", ErrInvalidTransition, order.Status, newStatus, serverTransitions)
	}

	if err := s.begin(order.ID); err != nil {
		return nil, err
	}
	defer s.end(order.ID)

	updated, err := s.api.UpdateReturnStatus(ctx, order.ID, newStatus, refundReason)
	if err != nil {
		return nil, err
	}

	s.reconcile(ctx, OrderEvent{Kind: "order.updated", OrderID: updated.ID, Status: updated.Status})
	return updated, nil
}

// CancelOrder cancels an order with an optional reason. Cancellation must be
// a legal move from the current status, which excludes anything at or past
// OutForDelivery.
func (s *OrderService) CancelOrder(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	if !domain.CanTransition(order.PaymentMethod, order.Status, domain.StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, domain.StatusCancelled)
	}

	if err := s.begin(order.ID); err != nil {
		return nil, err
	}
	defer s.end(order.ID)

	updated, err := s.api.CancelOrder(ctx, order.ID, reason)
	if err != nil {
		return nil, err
	}

	s.reconcile(ctx, OrderEvent{Kind: "order.updated", OrderID: updated.ID, Status: updated.Status})
	return updated, nil
}

// DeleteCancelledOrder permanently removes an order already in the Cancelled
// state. Irreversible; role gating happens at the HTTP layer.
func (s *OrderService) DeleteCancelledOrder(ctx context.Context, order *domain.Order) error {
	if order.Status != domain.StatusCancelled {
		return fmt.Errorf("%w: order is %s", ErrOrderNotCancelled, order.Status)
	}

	if err := s.begin(order.ID); err != nil {
		return err
	}
	defer s.end(order.ID)

	if err := s.api.DeleteOrder(ctx, order.ID); err != nil {
		return err
	}

	s.reconcile(ctx, OrderEvent{Kind: "order.deleted", OrderID: order.ID})
	return nil
}

// InFlightCount reports how many order mutations are currently outstanding.
// Drives the console's global busy indicator.
func (s *OrderService) InFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// begin marks an order as having a mutation in flight. Fails when one is
// already outstanding for the same order; mutations on different orders are
// independent.
func (s *OrderService) begin(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[orderID] {
		return ErrMutationInFlight
	}
	s.inFlight[orderID] = true
	return nil
}

// end clears the in-flight mark regardless of mutation outcome.
func (s *OrderService) end(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, orderID)
}

// reconcile flushes cached listings and publishes the event after a confirmed
// mutation. Readers refetch; nothing is patched locally. Failures here are
// logged only: the mutation itself already succeeded remotely.
func (s *OrderService) reconcile(ctx context.Context, event OrderEvent) {
	if err := s.cache.DeleteByPrefix(ctx, listCacheKeyPrefix); err != nil {
		logger.Get().Warn("Failed to invalidate order list cache", zap.Error(err))
	}

	event.At = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Get().Warn("Failed to encode order event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, EventChannel, payload); err != nil {
		logger.Get().Warn("Failed to publish order event",
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

// warnOnTableMismatch compares the server-reported transition set with the
// static table and logs a warning when they diverge for a known state. The
// server remains the source of truth either way.
func (s *OrderService) warnOnTableMismatch(order *domain.Order, serverTransitions []domain.Status) {
	local := domain.ValidTransitions(order.PaymentMethod, order.Status)
	if len(local) == 0 {
		return
	}

	for _, t := range serverTransitions {
		if !containsStatus(local, t) {
			logger.Get().Warn("transition table mismatch",
				zap.String("order_id", order.ID),
				zap.String("status", string(order.Status)),
				zap.Any("local", local),
				zap.Any("server", serverTransitions),
			)
			return
		}
	}
}

// containsStatus reports whether set includes status.
func containsStatus(set []domain.Status, status domain.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// listCacheKey builds a deterministic cache key for a listing query.
func listCacheKey(filter domain.ListFilter) string {
	return fmt.Sprintf("%s%s|%s|%d|%d", listCacheKeyPrefix, filter.Search, filter.Status, filter.Page, filter.PageSize)
}
