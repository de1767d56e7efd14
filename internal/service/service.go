package service

import (
	"go.uber.org/zap"

	"mmarau-music/backend/config"
	"mmarau-music/backend/internal/repository"
	"mmarau-music/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Minister  MinisterService
	Semester  SemesterService
	Roster    RosterService
	Analytics AnalyticsService
	Export    ExportService
	Calendar  CalendarService
}

// NewService 创建 Service 聚合
// cache 允许为 nil（Redis 不可用时分析缓存与限流降级）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Minister:  NewMinisterService(repo, logger),
		Semester:  NewSemesterService(repo, logger),
		Roster:    NewRosterService(cfg, repo, logger),
		Analytics: NewAnalyticsService(cfg, repo, cache, logger),
		Export:    NewExportService(repo, logger),
		Calendar:  NewCalendarService(repo, logger),
	}
}
