package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"mmarau-music/backend/config"
	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
	"mmarau-music/backend/pkg/redis"
)

// 排名结果缓存键
const (
	cacheKeyRankAll      = "analytics:rank:all"
	cacheKeyRankByGender = "analytics:rank:gender"
)

// AnalyticsService 参与度分析业务接口。
// 排名类接口读多写少，结果进 Redis 短 TTL 缓存；
// 写入后不主动失效，过期前的读取容忍轻微滞后。
type AnalyticsService interface {
	TotalMinisters(ctx context.Context) (*dto.TotalMinistersResponse, error)
	GroupByGender(ctx context.Context) ([]dto.GenderCountResponse, error)
	// RankAll 全体牧者按历史排班总次数降序，位次 1..N 连续（并列不共享位次）
	RankAll(ctx context.Context) ([]dto.RankedMinisterResponse, error)
	// RankByGender 按性别分组，组内各自独立排名
	RankByGender(ctx context.Context) ([]dto.GenderRankGroupResponse, error)
	// MinisterStats 单学期内每位参与牧者的统计（未参与者不出现）
	MinisterStats(ctx context.Context, semesterID string) ([]dto.MinisterStatsResponse, error)
	SemesterServiceCount(ctx context.Context, semesterID string) (*dto.ServiceCountResponse, error)
}

type analyticsService struct {
	repo     *repository.Repository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例；cache 可为 nil（直接回源）
func NewAnalyticsService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) AnalyticsService {
	ttl := time.Duration(cfg.Feature.RankCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &analyticsService{repo: repo, cache: cache, cacheTTL: ttl, logger: logger}
}

// ────────────────────── TotalMinisters ──────────────────────

func (s *analyticsService) TotalMinisters(ctx context.Context) (*dto.TotalMinistersResponse, error) {
	total, err := s.repo.Minister.CountAll(ctx)
	if err != nil {
		s.logger.Error("统计牧者总数失败", zap.Error(err))
		return nil, err
	}

	return &dto.TotalMinistersResponse{Total: total}, nil
}

// ────────────────────── GroupByGender ──────────────────────

func (s *analyticsService) GroupByGender(ctx context.Context) ([]dto.GenderCountResponse, error) {
	counts, err := s.repo.Minister.CountByGender(ctx)
	if err != nil {
		s.logger.Error("按性别统计失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.GenderCountResponse, 0, len(counts))
	for _, c := range counts {
		result = append(result, dto.GenderCountResponse{Gender: c.Gender, Total: c.Total})
	}

	return result, nil
}

// ────────────────────── RankAll ──────────────────────

func (s *analyticsService) RankAll(ctx context.Context) ([]dto.RankedMinisterResponse, error) {
	if cached := s.readCache(ctx, cacheKeyRankAll); cached != nil {
		var result []dto.RankedMinisterResponse
		if err := json.Unmarshal(cached, &result); err == nil {
			return result, nil
		}
	}

	ranked, err := s.rankedMinisters(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.RankedMinisterResponse, 0, len(ranked))
	for i, m := range ranked {
		result = append(result, dto.RankedMinisterResponse{
			Rank:          i + 1,
			MinisterID:    m.minister.MinisterID,
			Name:          m.minister.FullName,
			Gender:        m.minister.Gender,
			IsActive:      m.minister.IsActive,
			TotalServices: m.total,
		})
	}

	s.writeCache(ctx, cacheKeyRankAll, result)

	return result, nil
}

// ────────────────────── RankByGender ──────────────────────

func (s *analyticsService) RankByGender(ctx context.Context) ([]dto.GenderRankGroupResponse, error) {
	if cached := s.readCache(ctx, cacheKeyRankByGender); cached != nil {
		var result []dto.GenderRankGroupResponse
		if err := json.Unmarshal(cached, &result); err == nil {
			return result, nil
		}
	}

	ranked, err := s.rankedMinisters(ctx)
	if err != nil {
		return nil, err
	}

	// 全体序列已排好，按性别切分后组内相对顺序自然保持
	groups := []dto.GenderRankGroupResponse{
		{Gender: model.GenderMale, Ministers: []dto.GenderRankedMinister{}},
		{Gender: model.GenderFemale, Ministers: []dto.GenderRankedMinister{}},
	}
	for _, m := range ranked {
		for gi := range groups {
			if groups[gi].Gender == m.minister.Gender {
				groups[gi].Ministers = append(groups[gi].Ministers, dto.GenderRankedMinister{
					Rank:          len(groups[gi].Ministers) + 1,
					Name:          m.minister.FullName,
					TotalServices: m.total,
				})
			}
		}
	}

	s.writeCache(ctx, cacheKeyRankByGender, groups)

	return groups, nil
}

// ────────────────────── MinisterStats ──────────────────────

func (s *analyticsService) MinisterStats(ctx context.Context, semesterID string) ([]dto.MinisterStatsResponse, error) {
	rows, err := s.repo.Service.ListSemesterAssignments(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询学期排班记录失败", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}

	stats := make(map[string]*dto.MinisterStatsResponse)
	order := make([]string, 0)
	for _, row := range rows {
		entry, ok := stats[row.MinisterID]
		if !ok {
			entry = &dto.MinisterStatsResponse{
				MinisterID:   row.MinisterID,
				Name:         row.FullName,
				Gender:       row.Gender,
				ServiceDates: []string{},
			}
			stats[row.MinisterID] = entry
			order = append(order, row.MinisterID)
		}
		entry.TotalServices++
		if row.Role == model.RoleLead {
			entry.LeadCount++
		} else {
			entry.BackupCount++
		}
		entry.ServiceDates = append(entry.ServiceDates, row.ServiceDate.Format("2006-01-02"))
	}

	result := make([]dto.MinisterStatsResponse, 0, len(order))
	for _, id := range order {
		entry := stats[id]
		sort.Strings(entry.ServiceDates)
		result = append(result, *entry)
	}

	// 参与多者在前，同次数按姓名
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalServices != result[j].TotalServices {
			return result[i].TotalServices > result[j].TotalServices
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// ────────────────────── SemesterServiceCount ──────────────────────

func (s *analyticsService) SemesterServiceCount(ctx context.Context, semesterID string) (*dto.ServiceCountResponse, error) {
	total, err := s.repo.Service.CountBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("统计学期场次失败", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}

	return &dto.ServiceCountResponse{Total: total}, nil
}

// ── 内部辅助方法 ──

type rankedMinister struct {
	minister model.Minister
	total    int
}

// rankedMinisters 全体牧者（含停用、含零参与）按总次数降序；
// 次数相同保持登记先后（List 按 created_at 升序），排序用稳定算法
func (s *analyticsService) rankedMinisters(ctx context.Context) ([]rankedMinister, error) {
	ministers, err := s.repo.Minister.List(ctx, false)
	if err != nil {
		s.logger.Error("列出牧者失败", zap.Error(err))
		return nil, err
	}

	counts, err := s.repo.Service.ParticipationTotals(ctx)
	if err != nil {
		s.logger.Error("聚合参与次数失败", zap.Error(err))
		return nil, err
	}

	totals := make(map[string]int, len(counts))
	for _, c := range counts {
		totals[c.MinisterID] = c.Total
	}

	ranked := make([]rankedMinister, 0, len(ministers))
	for i := range ministers {
		ranked = append(ranked, rankedMinister{
			minister: ministers[i],
			total:    totals[ministers[i].MinisterID],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].total > ranked[j].total
	})

	return ranked, nil
}

// readCache 缓存读取失败只记日志不阻断（回源兜底）
func (s *analyticsService) readCache(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	b, err := s.cache.GetCache(ctx, key)
	if err != nil {
		s.logger.Warn("读取分析缓存失败", zap.String("key", key), zap.Error(err))
		return nil
	}
	return b
}

func (s *analyticsService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.SetCache(ctx, key, b, s.cacheTTL); err != nil {
		s.logger.Warn("写入分析缓存失败", zap.String("key", key), zap.Error(err))
	}
}
