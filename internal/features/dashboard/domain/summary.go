package domain

import "time"

// Summary aggregates the numbers shown on the console's landing page. All
// figures come from the platform's report endpoints; the gateway only caches
// them.
type Summary struct {
	// TotalSales is the gross sales amount for the current period.
	TotalSales float64 `json:"total_sales"`
	// OrderCount is the number of orders placed in the current period.
	OrderCount int `json:"order_count"`
	// AverageOrderValue is TotalSales divided by OrderCount.
	AverageOrderValue float64 `json:"average_order_value"`
	// StatusCounts maps each order status to its current open count.
	StatusCounts map[string]int `json:"status_counts"`
	// GeneratedAt is when the platform computed the figures.
	GeneratedAt time.Time `json:"generated_at"`
}
