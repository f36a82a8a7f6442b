package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-admin/internal/core/config"
	"storefront-admin/internal/core/httpclient"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/orders/domain"
	"storefront-admin/internal/features/orders/ports"

	"go.uber.org/zap"
)

// CommerceAdapter implements the OrderAPI port against the commerce platform's
// admin REST API.
type CommerceAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the commerce connection details.
	config config.CommerceConfig
}

// NewCommerceAdapter creates a new instance of CommerceAdapter.
func NewCommerceAdapter(cfg config.CommerceConfig) *CommerceAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 10 * time.Second
	}
	return &CommerceAdapter{
		client: httpclient.NewClient(timeout),
		config: cfg,
	}
}

// ListOrders fetches a page of orders matching the filter.
func (a *CommerceAdapter) ListOrders(ctx context.Context, filter domain.ListFilter) (*domain.OrderPage, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	endpoint := fmt.Sprintf("%s/admin/api/v1/orders", a.config.URL)
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var page apiOrderPage
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(page.Orders))
	for _, raw := range page.Orders {
		orders = append(orders, mapToDomain(raw))
	}

	return &domain.OrderPage{
		Orders:   orders,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// GetOrder fetches an order by id and maps it to the domain entity.
func (a *CommerceAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s", a.config.URL, url.PathEscape(orderID))

	var raw apiOrder
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	order := mapToDomain(raw)
	return &order, nil
}

// UpdateStatus moves an order to the target status.
func (a *CommerceAdapter) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s/status", a.config.URL, url.PathEscape(orderID))
	body := map[string]string{"status": string(status)}

	var raw apiOrder
	if err := a.do(ctx, http.MethodPut, endpoint, body, &raw); err != nil {
		return nil, err
	}

	order := mapToDomain(raw)
	return &order, nil
}

// RequestReturn opens a return for an order.
func (a *CommerceAdapter) RequestReturn(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s/return", a.config.URL, url.PathEscape(orderID))
	body := map[string]string{"reason": reason}

	var raw apiOrder
	if err := a.do(ctx, http.MethodPost, endpoint, body, &raw); err != nil {
		return nil, err
	}

	order := mapToDomain(raw)
	return &order, nil
}

// UpdateReturnStatus advances an open return.
func (a *CommerceAdapter) UpdateReturnStatus(ctx context.Context, orderID string, status domain.Status, refundReason string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s/return", a.config.URL, url.PathEscape(orderID))
	body := map[string]string{"status": string(status)}
	if refundReason != "" {
		body["refund_reason"] = refundReason
	}

	var raw apiOrder
	if err := a.do(ctx, http.MethodPut, endpoint, body, &raw); err != nil {
		return nil, err
	}

	order := mapToDomain(raw)
	return &order, nil
}

// ValidTransitions fetches the server-reported legal transitions for an order.
func (a *CommerceAdapter) ValidTransitions(ctx context.Context, orderID string) ([]domain.Status, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s/transitions", a.config.URL, url.PathEscape(orderID))

	var resp apiTransitions
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	transitions := make([]domain.Status, 0, len(resp.Transitions))
	for _, s := range resp.Transitions {
		transitions = append(transitions, domain.Status(s))
	}
	return transitions, nil
}

// CancelOrder cancels an order with an optional reason.
func (a *CommerceAdapter) CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s/cancel", a.config.URL, url.PathEscape(orderID))
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}

	var raw apiOrder
	if err := a.do(ctx, http.MethodPost, endpoint, body, &raw); err != nil {
		return nil, err
	}

	order := mapToDomain(raw)
	return &order, nil
}

// DeleteOrder permanently removes an order.
func (a *CommerceAdapter) DeleteOrder(ctx context.Context, orderID string) error {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders/%s", a.config.URL, url.PathEscape(orderID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// HealthCheck verifies the commerce API is reachable and credentials are valid.
func (a *CommerceAdapter) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/admin/api/v1/orders?page_size=1", a.config.URL)
	var page apiOrderPage
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return fmt.Errorf("commerce health check failed: %w", err)
	}
	return nil
}

// do executes one authenticated request and decodes the response into out.
// A nil out discards the body. 404 maps to ErrOrderNotFound, other 4xx to a
// RejectionError carrying the platform's message, everything else is a
// transport failure.
func (a *CommerceAdapter) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Basic "+a.basicAuth())

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.ErrOrderNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ports.RejectionError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	case resp.StatusCode >= 500:
		return fmt.Errorf("commerce API returned status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// basicAuth builds the Basic credentials from the consumer key pair.
func (a *CommerceAdapter) basicAuth() string {
	authVal := make([]byte, 0, len(a.config.ConsumerKey)+len(a.config.ConsumerSecret)+1)
	authVal = fmt.Appendf(authVal, "%s:%s", a.config.ConsumerKey, a.config.ConsumerSecret)
	return base64.StdEncoding.EncodeToString(authVal)
}

// readErrorMessage extracts the platform's error detail from a 4xx body.
func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "unreadable error body"
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// mapToDomain converts a raw commerce order response into a domain Order.
func mapToDomain(raw apiOrder) domain.Order {
	items := make([]domain.OrderItem, 0, len(raw.LineItems))
	for _, item := range raw.LineItems {
		items = append(items, domain.OrderItem{
			Quantity:  item.Quantity,
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Picture:   item.Picture,
		})
	}

	order := domain.Order{
		ID:             raw.ID,
		Status:         domain.Status(raw.Status),
		PaymentMethod:  domain.PaymentMethod(raw.PaymentMethod),
		TotalAmount:    raw.TotalAmount,
		OrderDate:      time.Time(raw.OrderDate),
		ShippingMethod: raw.ShippingMethod,
		ShippingCost:   raw.ShippingCost,
		Note:           raw.Note,
		ReturnReason:   raw.ReturnReason,
		TrackingNumber: raw.TrackingNumber,
		Recipient: domain.Recipient{
			Name:    raw.Recipient.Name,
			Phone:   raw.Recipient.Phone,
			Email:   raw.Recipient.Email,
			Address: raw.Recipient.Address,
			City:    raw.Recipient.City,
			State:   raw.Recipient.State,
		},
		Items:     items,
		CreatedAt: time.Time(raw.CreatedAt),
		UpdatedAt: time.Time(raw.UpdatedAt),
	}

	if !time.Time(raw.EstimatedDelivery).IsZero() {
		t := time.Time(raw.EstimatedDelivery)
		order.EstimatedDelivery = &t
	}

	return order
}

// internal structs for mapping

// apiOrderPage represents a paginated order listing from the commerce API.
type apiOrderPage struct {
	Orders   []apiOrder `json:"orders"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// apiOrder represents the JSON structure of an order from the commerce API.
type apiOrder struct {
	ID                string         `json:"id"`
	Status            string         `json:"status"`
	PaymentMethod     string         `json:"payment_method"`
	TotalAmount       float64        `json:"total_amount"`
	OrderDate         apiTime        `json:"order_date"`
	ShippingMethod    string         `json:"shipping_method"`
	ShippingCost      float64        `json:"shipping_cost"`
	Note              string         `json:"note"`
	ReturnReason      string         `json:"return_reason"`
	EstimatedDelivery apiTime        `json:"estimated_delivery"`
	TrackingNumber    string         `json:"tracking_number"`
	Recipient         apiRecipient   `json:"recipient"`
	LineItems         []apiLineItem  `json:"line_items"`
	CreatedAt         apiTime        `json:"created_at"`
	UpdatedAt         apiTime        `json:"updated_at"`
}

// apiRecipient holds the shipping contact block of an order.
type apiRecipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// apiLineItem represents a product line in a commerce order.
type apiLineItem struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Picture   string  `json:"picture"`
}

// apiTransitions is the response of the per-order transitions endpoint.
type apiTransitions struct {
	Transitions []string `json:"transitions"`
}

// apiTime handles the commerce API's date formats (RFC3339 with or without
// timezone, null, empty string).
type apiTime time.Time

// UnmarshalJSON parses the commerce API date formats.
func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = apiTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse("2006-01-02T15:04:05", s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse date", zap.String("date", s), zap.Error(err))
		return nil // Zero time rather than failing the whole decode
	}
	*t = apiTime(parsed)
	return nil
}
