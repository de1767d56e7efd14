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

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound    = errors.New("semester not found")
	ErrSemesterNameExists  = errors.New("name already exists")
	ErrSemesterDateInvalid = errors.New("end date must be after start date")
)

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest) (*dto.SemesterResponse, error)
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	// 名称唯一
	if _, err := s.repo.Semester.GetByName(ctx, req.Name); err == nil {
		return nil, ErrSemesterNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学期名称失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	// 缺省即激活（与排班页"新建即启用"的习惯一致）
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	semester := &model.Semester{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  isActive,
	}
	semester.ComputeTotalWeeks()

	// 激活写入与清除其他活动学期必须同事务（单活动学期不变量）
	if isActive {
		if err := s.createActive(ctx, semester); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Semester.Create(ctx, semester); err != nil {
			if isUniqueViolation(err) {
				return nil, ErrSemesterNameExists
			}
			s.logger.Error("创建学期失败", zap.Error(err))
			return nil, err
		}
	}

	return toSemesterResponse(semester), nil
}

func (s *semesterService) createActive(ctx context.Context, semester *model.Semester) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Semester.ClearActiveExcept(ctx, ""); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除活动学期失败", zap.Error(err))
		return err
	}

	if err := txRepo.Semester.Create(ctx, semester); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		// 名称唯一索引兜底：并发创建同名在库层被关死
		if isUniqueViolation(err) {
			return ErrSemesterNameExists
		}
		s.logger.Error("创建学期失败", zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询当前学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != semester.Name {
		if other, err := s.repo.Semester.GetByName(ctx, *req.Name); err == nil && other.SemesterID != id {
			return nil, ErrSemesterNameExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学期名称失败", zap.String("name", *req.Name), zap.Error(err))
			return nil, err
		}
		semester.Name = *req.Name
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.EndDate = endDate
	}
	if !semester.EndDate.After(semester.StartDate) {
		return nil, ErrSemesterDateInvalid
	}
	// 派生字段每次保存前重算
	semester.ComputeTotalWeeks()

	if req.IsActive != nil {
		semester.IsActive = *req.IsActive
	}

	// 置为激活时走事务，顺带清除其他活动学期
	if req.IsActive != nil && *req.IsActive {
		if err := s.activateTx(ctx, semester); err != nil {
			return nil, err
		}
		return toSemesterResponse(semester), nil
	}

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSemesterNameExists
		}
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Activate ──────────────────────

func (s *semesterService) Activate(ctx context.Context, id string) error {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	semester.IsActive = true

	return s.activateTx(ctx, semester)
}

// activateTx 在单个事务内完成 "清除其他活动学期 + 保存目标学期"
func (s *semesterService) activateTx(ctx context.Context, semester *model.Semester) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Semester.ClearActiveExcept(ctx, semester.SemesterID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除活动学期失败", zap.Error(err))
		return err
	}

	if err := txRepo.Semester.Update(ctx, semester); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活学期失败", zap.String("id", semester.SemesterID), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	return nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *semesterService) Deactivate(ctx context.Context, id string) error {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	semester.IsActive = false

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		s.logger.Error("停用学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Semester.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Semester.Delete(ctx, id); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	return &dto.SemesterResponse{
		ID:         semester.SemesterID,
		Name:       semester.Name,
		StartDate:  semester.StartDate.Format("2006-01-02"),
		EndDate:    semester.EndDate.Format("2006-01-02"),
		TotalWeeks: semester.TotalWeeks,
		IsActive:   semester.IsActive,
		CreatedAt:  semester.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  semester.UpdatedAt.Format(time.RFC3339),
	}
}
