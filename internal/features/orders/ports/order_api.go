package ports

import (
	"context"
	"errors"
	"fmt"

	"storefront-admin/internal/features/orders/domain"
)

// ErrOrderNotFound is returned when the remote platform has no such order.
var ErrOrderNotFound = errors.New("order not found")

// RejectionError indicates the remote platform understood the request and
// refused it (HTTP 4xx), e.g. its own transition rules differ from the local
// table. Distinct from transport failures so callers can report it as a
// business rejection rather than an infrastructure problem.
type RejectionError struct {
	// StatusCode is the HTTP status the platform responded with.
	StatusCode int
	// Message is the error detail reported by the platform.
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("commerce API rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsRejection reports whether err is a remote rejection and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// OrderAPI defines the interface to the remote order-management API.
// This is a Secondary Port (Driven Port); the remote platform owns all order
// state, and every mutation here runs server-side validation of its own.
type OrderAPI interface {
	// ListOrders retrieves a page of orders matching the filter.
	ListOrders(ctx context.Context, filter domain.ListFilter) (*domain.OrderPage, error)

	// GetOrder retrieves a single order by its identifier.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// UpdateStatus moves an order to the target status and returns the
	// server-confirmed order.
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)

	// RequestReturn opens a return for a delivered order.
	RequestReturn(ctx context.Context, orderID, reason string) (*domain.Order, error)

	// UpdateReturnStatus advances an open return to the target status.
	// refundReason may be empty unless the target status requires one.
	UpdateReturnStatus(ctx context.Context, orderID string, status domain.Status, refundReason string) (*domain.Order, error)

	// ValidTransitions fetches the server-reported legal transitions for one
	// order. The platform may apply narrower, order-specific rules than the
	// static table.
	ValidTransitions(ctx context.Context, orderID string) ([]domain.Status, error)

	// CancelOrder cancels an order with an optional free-text reason.
	CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error)

	// DeleteOrder permanently removes an order. The platform only permits
	// this for cancelled orders; there is no undo.
	DeleteOrder(ctx context.Context, orderID string) error

	// HealthCheck verifies the platform is reachable and credentials work.
	HealthCheck(ctx context.Context) error
}
