package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
)

type statsStore interface {
	ProjectRotationStats(ctx context.Context, q repository.Querier, projectID string) (*models.RotationStats, error)
}

type statsProjectStore interface {
	GetByID(ctx context.Context, q repository.Querier, id string) (*models.Project, error)
}

// StatsService serves per-project rotation summaries with a short-lived
// cache in front of the aggregate queries.
type StatsService struct {
	db       repository.Querier
	stats    statsStore
	projects statsProjectStore
	cache    *CacheService
	logger   *zap.Logger
}

// NewStatsService constructs a stats service.
func NewStatsService(db repository.Querier, stats statsStore, projects statsProjectStore, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{db: db, stats: stats, projects: projects, cache: cache, logger: logger}
}

func statsCacheKey(projectID string) string {
	return fmt.Sprintf("rotation:stats:%s", projectID)
}

// ProjectStats returns the rotation summary for a project.
func (s *StatsService) ProjectStats(ctx context.Context, projectID string) (*models.RotationStats, error) {
	key := statsCacheKey(projectID)
	if s.cache != nil {
		var cached models.RotationStats
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	if _, err := s.projects.GetByID(ctx, s.db, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	stats, err := s.stats.ProjectRotationStats(ctx, s.db, projectID)
	if err != nil {
		return nil, fmt.Errorf("project rotation stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, 0); err != nil {
			s.logger.Warn("stats cache set failed", zap.String("project_id", projectID), zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached summary for a project. Callers invoke it after
// batch generation, accept/reject and sweep runs.
func (s *StatsService) Invalidate(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCacheKey(projectID)); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.String("project_id", projectID), zap.Error(err))
	}
}
