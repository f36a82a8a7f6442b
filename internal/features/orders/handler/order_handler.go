package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/orders/domain"
	"storefront-admin/internal/features/orders/ports"
	"storefront-admin/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the order action coordinator.
	service *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// UpdateStatusRequest is the body of PUT /orders/{id}/status.
type UpdateStatusRequest struct {
	// Status is the target status tag.
	Status domain.Status `json:"status"`
}

// RequestReturnRequest is the body of POST /orders/{id}/return.
type RequestReturnRequest struct {
	// Reason is the mandatory customer-facing return reason.
	Reason string `json:"reason"`
}

// ResolveReturnRequest is the body of PUT /orders/{id}/return.
type ResolveReturnRequest struct {
	// Status is the target return status.
	Status domain.Status `json:"status"`
	// RefundReason is mandatory when Status is Refunded.
	RefundReason string `json:"refund_reason"`
}

// CancelOrderRequest is the body of POST /orders/{id}/cancel.
type CancelOrderRequest struct {
	// Reason is an optional free-text cancellation reason.
	Reason string `json:"reason"`
}

// StatusInfo pairs a status tag with its display metadata and legal moves.
type StatusInfo struct {
	// Status is the status tag.
	Status domain.Status `json:"status"`
	// Presentation is the display metadata for the tag.
	Presentation domain.Presentation `json:"presentation"`
	// Transitions lists the legal next statuses for this tag.
	Transitions []domain.Status `json:"transitions"`
}

// ListOrders handles GET /orders.
// @Summary List orders
// @Description Returns a paginated order listing with optional search term and status filter.
// @Tags Orders
// @Produce json
// @Param search query string false "Free-text search term"
// @Param status query string false "Status filter"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20)"
// @Success 200 {object} domain.OrderPage
// @Failure 502 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filter := domain.ListFilter{
		Search:   c.Query("search"),
		Status:   domain.Status(c.Query("status")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	page, err := h.service.ListOrders(c.Context(), filter)
	if err != nil {
		return h.fail(c, "list orders", err)
	}

	return c.Status(http.StatusOK).JSON(page)
}

// GetOrder handles GET /orders/{id}.
// @Summary Get order by ID
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// GetTransitions handles GET /orders/{id}/transitions.
// @Summary Get server-reported valid transitions for one order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} map[string][]string
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/transitions [get]
func (h *OrderHandler) GetTransitions(c *fiber.Ctx) error {
	transitions, err := h.service.ServerTransitions(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "fetch transitions", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"transitions": transitions})
}

// UpdateStatus handles PUT /orders/{id}/status.
// @Summary Change order status
// @Description Moves an order to a new status. The target must be a legal transition for the order's payment method.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body UpdateStatusRequest true "Target status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return h.badRequest(c, "status is required")
	}

	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	updated, err := h.service.ChangeStatus(c.Context(), order, req.Status)
	if err != nil {
		return h.fail(c, "change status", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// RequestReturn handles POST /orders/{id}/return.
// @Summary Request a return for a delivered order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body RequestReturnRequest true "Return reason"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/return [post]
func (h *OrderHandler) RequestReturn(c *fiber.Ctx) error {
	var req RequestReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	updated, err := h.service.RequestReturn(c.Context(), order, req.Reason)
	if err != nil {
		return h.fail(c, "request return", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// ResolveReturn handles PUT /orders/{id}/return.
// @Summary Resolve an open return
// @Description Advances a return to the target status. Resolving to Refunded requires a refund reason.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body ResolveReturnRequest true "Resolution"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/return [put]
func (h *OrderHandler) ResolveReturn(c *fiber.Ctx) error {
	var req ResolveReturnRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return h.badRequest(c, "status is required")
	}

	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	updated, err := h.service.ResolveReturn(c.Context(), order, req.Status, req.RefundReason)
	if err != nil {
		return h.fail(c, "resolve return", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// CancelOrder handles POST /orders/{id}/cancel.
// @Summary Cancel an order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body CancelOrderRequest false "Optional cancellation reason"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	var req CancelOrderRequest
	// Body is optional for cancellation
	_ = c.BodyParser(&req)

	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	updated, err := h.service.CancelOrder(c.Context(), order, req.Reason)
	if err != nil {
		return h.fail(c, "cancel order", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// DeleteOrder handles DELETE /orders/{id}. Admin role required (enforced by
// route middleware); the order must already be Cancelled.
// @Summary Delete a cancelled order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	order, err := h.fetchOrder(c)
	if err != nil {
		return h.fail(c, "get order", err)
	}

	if err := h.service.DeleteCancelledOrder(c.Context(), order); err != nil {
		return h.fail(c, "delete order", err)
	}

	return c.SendStatus(http.StatusNoContent)
}

// ListStatuses handles GET /orders/statuses.
// @Summary List statuses with presentation metadata and legal moves
// @Tags Orders
// @Produce json
// @Param payment_method query string true "CashOnDelivery or ElectronicPayment"
// @Success 200 {array} StatusInfo
// @Failure 400 {object} ErrorResponse
// @Router /orders/statuses [get]
func (h *OrderHandler) ListStatuses(c *fiber.Ctx) error {
	method := domain.PaymentMethod(c.Query("payment_method"))

	statuses := domain.Statuses(method)
	if len(statuses) == 0 {
		return h.badRequest(c, "unknown payment_method")
	}

	infos := make([]StatusInfo, 0, len(statuses))
	for _, s := range statuses {
		presentation, _ := domain.PresentationFor(s)
		infos = append(infos, StatusInfo{
			Status:       s,
			Presentation: presentation,
			Transitions:  domain.ValidTransitions(method, s),
		})
	}

	return c.Status(http.StatusOK).JSON(infos)
}

// fetchOrder resolves the :id path parameter to a server-confirmed order.
func (h *OrderHandler) fetchOrder(c *fiber.Ctx) (*domain.Order, error) {
	orderID := c.Params("id")
	if orderID == "" {
		return nil, errMissingOrderID
	}
	return h.service.GetOrder(c.Context(), orderID)
}

var errMissingOrderID = errors.New("order ID is required")

// badRequest writes a 400 with the given message.
func (h *OrderHandler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// fail maps coordinator and remote errors to HTTP responses. Local validation
// failures are 4xx with the validation message; remote rejections carry the
// platform's status; transport failures surface as 502.
func (h *OrderHandler) fail(c *fiber.Ctx, action string, err error) error {
	status := http.StatusBadGateway
	msg := "Upstream commerce API unavailable"

	switch {
	case errors.Is(err, errMissingOrderID):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, ports.ErrOrderNotFound):
		status = http.StatusNotFound
		msg = "Order not found"
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReturnReasonRequired),
		errors.Is(err, service.ErrReturnNotAllowed),
		errors.Is(err, service.ErrRefundReasonRequired),
		errors.Is(err, service.ErrOrderNotCancelled):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, service.ErrMutationInFlight):
		status = http.StatusConflict
		msg = err.Error()
	default:
		if rej, ok := ports.IsRejection(err); ok {
			if rej.StatusCode == http.StatusUnauthorized || rej.StatusCode == http.StatusForbidden {
				status = http.StatusForbidden
				msg = "Not authorized for this action"
			} else {
				status = rej.StatusCode
				msg = rej.Message
			}
		}
	}

	if status >= 500 {
		logger.Get().Error("Order action failed",
			zap.String("action", action),
			zap.String("order_id", c.Params("id")),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// rayID returns the request id set by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// queryInt parses an int query parameter with a default.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
