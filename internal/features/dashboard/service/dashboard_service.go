package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/dashboard/domain"
	"storefront-admin/internal/features/dashboard/ports"

	"go.uber.org/zap"
)

const summaryCacheKey = "dashboard:summary"

// DashboardService serves the console's summary figures, cached with a TTL.
// Report queries are expensive on the platform side, so within the TTL every
// console shares one cached result.
type DashboardService struct {
	// api is the remote reports API.
	api ports.ReportsAPI
	// cache stores the summary between refreshes.
	cache cache.Cache
	// ttl bounds how stale a served summary may be.
	ttl time.Duration
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(api ports.ReportsAPI, c cache.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{
		api:   api,
		cache: c,
		ttl:   ttl,
	}
}

// Summary returns the current dashboard figures, refetching from the platform
// only when the cached copy has expired.
func (s *DashboardService) Summary(ctx context.Context) (*domain.Summary, error) {
	if data, err := s.cache.Get(ctx, summaryCacheKey); err == nil {
		var summary domain.Summary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
	}

	summary, err := s.api.FetchSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard summary: %w", err)
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, summaryCacheKey, data, s.ttl); err != nil {
			logger.Get().Debug("Failed to cache dashboard summary", zap.Error(err))
		}
	}

	return summary, nil
}
