package ports

import (
	"context"

	"storefront-admin/internal/features/dashboard/domain"
)

// ReportsAPI defines the interface to the remote platform's report endpoints.
type ReportsAPI interface {
	// FetchSummary retrieves the current sales and status figures.
	FetchSummary(ctx context.Context) (*domain.Summary, error)
}
