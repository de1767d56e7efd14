package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
)

// ── 牧者模块业务错误 ──

var (
	ErrMinisterNotFound = errors.New("minister not found")
	ErrMinisterExists   = errors.New("minister already exists")
)

// MinisterService 牧者业务接口
type MinisterService interface {
	Create(ctx context.Context, req *dto.CreateMinisterRequest) (*dto.MinisterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.MinisterResponse, error)
	List(ctx context.Context) ([]dto.MinisterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateMinisterRequest) (*dto.MinisterResponse, error)
	Deactivate(ctx context.Context, id string) error
	// Delete 永久删除；历史排班中的引用悬挂保留（统计时跳过）
	Delete(ctx context.Context, id string) error
}

type ministerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMinisterService 创建 MinisterService 实例
func NewMinisterService(repo *repository.Repository, logger *zap.Logger) MinisterService {
	return &ministerService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *ministerService) Create(ctx context.Context, req *dto.CreateMinisterRequest) (*dto.MinisterResponse, error) {
	// 姓名唯一（人工取名，作为展示主键）
	if _, err := s.repo.Minister.GetByFullName(ctx, req.FullName); err == nil {
		return nil, ErrMinisterExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询牧者姓名失败", zap.String("fullname", req.FullName), zap.Error(err))
		return nil, err
	}

	minister := &model.Minister{
		FullName: req.FullName,
		Gender:   req.Gender,
		Voices:   model.StringArray(req.Voices),
		IsActive: true,
	}

	if err := s.repo.Minister.Create(ctx, minister); err != nil {
		// 姓名唯一索引兜底：并发登记同名在库层被关死
		if isUniqueViolation(err) {
			return nil, ErrMinisterExists
		}
		s.logger.Error("创建牧者失败", zap.Error(err))
		return nil, err
	}

	return toMinisterResponse(minister), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *ministerService) GetByID(ctx context.Context, id string) (*dto.MinisterResponse, error) {
	minister, err := s.repo.Minister.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMinisterNotFound
		}
		s.logger.Error("查询牧者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toMinisterResponse(minister), nil
}

// ────────────────────── List ──────────────────────

func (s *ministerService) List(ctx context.Context) ([]dto.MinisterResponse, error) {
	ministers, err := s.repo.Minister.List(ctx, false)
	if err != nil {
		s.logger.Error("列出牧者失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MinisterResponse, 0, len(ministers))
	for i := range ministers {
		result = append(result, *toMinisterResponse(&ministers[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *ministerService) Update(ctx context.Context, id string, req *dto.UpdateMinisterRequest) (*dto.MinisterResponse, error) {
	minister, err := s.repo.Minister.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMinisterNotFound
		}
		s.logger.Error("查询牧者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FullName != nil && *req.FullName != minister.FullName {
		if other, err := s.repo.Minister.GetByFullName(ctx, *req.FullName); err == nil && other.MinisterID != id {
			return nil, ErrMinisterExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询牧者姓名失败", zap.String("fullname", *req.FullName), zap.Error(err))
			return nil, err
		}
		minister.FullName = *req.FullName
	}
	if req.Gender != nil {
		minister.Gender = *req.Gender
	}
	if req.Voices != nil {
		minister.Voices = model.StringArray(req.Voices)
	}
	if req.IsActive != nil {
		minister.IsActive = *req.IsActive
	}

	if err := s.repo.Minister.Update(ctx, minister); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrMinisterExists
		}
		s.logger.Error("更新牧者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toMinisterResponse(minister), nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *ministerService) Deactivate(ctx context.Context, id string) error {
	minister, err := s.repo.Minister.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMinisterNotFound
		}
		s.logger.Error("查询牧者失败", zap.String("id", id), zap.Error(err))
		return err
	}

	minister.IsActive = false

	if err := s.repo.Minister.Update(ctx, minister); err != nil {
		s.logger.Error("停用牧者失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *ministerService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Minister.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMinisterNotFound
		}
		s.logger.Error("查询牧者失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Minister.Delete(ctx, id); err != nil {
		s.logger.Error("删除牧者失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toMinisterResponse(minister *model.Minister) *dto.MinisterResponse {
	return &dto.MinisterResponse{
		ID:        minister.MinisterID,
		FullName:  minister.FullName,
		Gender:    minister.Gender,
		Voices:    []string(minister.Voices),
		IsActive:  minister.IsActive,
		CreatedAt: minister.CreatedAt.Format(time.RFC3339),
		UpdatedAt: minister.UpdatedAt.Format(time.RFC3339),
	}
}
