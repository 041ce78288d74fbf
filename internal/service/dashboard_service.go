package service

import (
	"context"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// DashboardStatsKey is the cache key of the admin dashboard aggregates.
const DashboardStatsKey = "dashboard:stats"

// DashboardService serves admin aggregates, cached when a cache is configured.
type DashboardService struct {
	store  *store.Store
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService builds the service; cache may be nil.
func NewDashboardService(store *store.Store, cache Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// GetStats returns the dashboard aggregates. Cache failures fall through to the database.
func (s *DashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetStats")
	defer span.End()

	if s.cache != nil {
		var cached models.DashboardStats
		found, err := s.cache.GetJSON(ctx, DashboardStatsKey, &cached)
		switch {
		case err != nil:
			util.DashboardCacheHitsTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		case found:
			util.DashboardCacheHitsTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		default:
			util.DashboardCacheHitsTotal.WithLabelValues("miss").Inc()
		}
	}

	stats, err := s.store.GetDashboardStats(ctx)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, DashboardStatsKey, stats, s.ttl); err != nil {
			s.logger.Warn("Dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached aggregates.
func (s *DashboardService) InvalidateStats(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, DashboardStatsKey)
}
