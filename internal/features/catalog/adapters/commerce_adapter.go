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
	"storefront-admin/internal/features/catalog/domain"
	"storefront-admin/internal/features/catalog/ports"
)

// CommerceAdapter implements the CatalogAPI port against the commerce
// platform's admin REST API.
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

// ListProducts fetches a page of products matching the filter.
func (a *CommerceAdapter) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	endpoint := fmt.Sprintf("%s/admin/api/v1/products", a.config.URL)
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var page domain.ProductPage
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches a product by id.
func (a *CommerceAdapter) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/products/%s", a.config.URL, url.PathEscape(productID))

	var product domain.Product
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a product on the platform.
func (a *CommerceAdapter) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/products", a.config.URL)

	var created domain.Product
	if err := a.do(ctx, http.MethodPost, endpoint, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces a product on the platform.
func (a *CommerceAdapter) UpdateProduct(ctx context.Context, productID string, product *domain.Product) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/products/%s", a.config.URL, url.PathEscape(productID))

	var updated domain.Product
	if err := a.do(ctx, http.MethodPut, endpoint, product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct permanently removes a product.
func (a *CommerceAdapter) DeleteProduct(ctx context.Context, productID string) error {
	endpoint := fmt.Sprintf("%s/admin/api/v1/products/%s", a.config.URL, url.PathEscape(productID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// ListAttributes fetches all values of one attribute resource.
func (a *CommerceAdapter) ListAttributes(ctx context.Context, resource string) ([]domain.Attribute, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/%s", a.config.URL, url.PathEscape(resource))

	var attrs []domain.Attribute
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// CreateAttribute adds a value to an attribute resource.
func (a *CommerceAdapter) CreateAttribute(ctx context.Context, resource string, attr *domain.Attribute) (*domain.Attribute, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/%s", a.config.URL, url.PathEscape(resource))

	var created domain.Attribute
	if err := a.do(ctx, http.MethodPost, endpoint, attr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAttribute renames an attribute value.
func (a *CommerceAdapter) UpdateAttribute(ctx context.Context, resource, attrID string, attr *domain.Attribute) (*domain.Attribute, error) {
	endpoint := fmt.Sprintf("%s/admin/api/v1/%s/%s", a.config.URL, url.PathEscape(resource), url.PathEscape(attrID))

	var updated domain.Attribute
	if err := a.do(ctx, http.MethodPut, endpoint, attr, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAttribute removes an attribute value.
func (a *CommerceAdapter) DeleteAttribute(ctx context.Context, resource, attrID string) error {
	endpoint := fmt.Sprintf("%s/admin/api/v1/%s/%s", a.config.URL, url.PathEscape(resource), url.PathEscape(attrID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// do executes one authenticated request and decodes the response into out.
// A nil out discards the body. 404 maps to ErrNotFound, other 4xx to a
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
		return ports.ErrNotFound
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
