package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-admin/internal/core/config"
	"storefront-admin/internal/core/httpclient"
	"storefront-admin/internal/features/dashboard/domain"
)

// CommerceAdapter implements the ReportsAPI port against the commerce
// platform's report endpoints.
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

// FetchSummary retrieves the sales report and the per-status counts in one
// call each and merges them.
func (a *CommerceAdapter) FetchSummary(ctx context.Context) (*domain.Summary, error) {
	var sales struct {
		TotalSales  float64   `json:"total_sales"`
		OrderCount  int       `json:"order_count"`
		GeneratedAt time.Time `json:"generated_at"`
	}
	if err := a.get(ctx, "/admin/api/v1/reports/sales", &sales); err != nil {
		return nil, fmt.Errorf("failed to fetch sales report: %w", err)
	}

	var statuses struct {
		Counts map[string]int `json:"counts"`
	}
	if err := a.get(ctx, "/admin/api/v1/reports/order-statuses", &statuses); err != nil {
		return nil, fmt.Errorf("failed to fetch status report: %w", err)
	}

	summary := &domain.Summary{
		TotalSales:   sales.TotalSales,
		OrderCount:   sales.OrderCount,
		StatusCounts: statuses.Counts,
		GeneratedAt:  sales.GeneratedAt,
	}
	if sales.OrderCount > 0 {
		summary.AverageOrderValue = sales.TotalSales / float64(sales.OrderCount)
	}

	return summary, nil
}

// get executes one authenticated GET and decodes the response into out.
func (a *CommerceAdapter) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.URL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+a.basicAuth())

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("commerce API returned status: %d", resp.StatusCode)
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
