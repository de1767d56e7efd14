package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mmarau-music/backend/config"
	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
)

// ── 礼拜场次模块业务错误 ──

var (
	ErrServiceNotFound = errors.New("service not found")
	// ErrMissingFields 必填字段缺失（date / service_type / semester_id / ministers）
	ErrMissingFields = errors.New("missing required fields")
	// ErrDuplicateMinister 同一牧者在名单中出现多次
	ErrDuplicateMinister = errors.New("a minister cannot appear more than once in a service")
	// ErrRosterIncomplete 三个声部未各有至少一名 backup
	ErrRosterIncomplete = errors.New("service must have lead and backup for soprano, alto, and tenor")
	// ErrSlotTaken 同一日历日同类型已有另一场次
	ErrSlotTaken = errors.New("service already exists for this date and type")
	// ErrBadDate 日期无法解析
	ErrBadDate = errors.New("invalid date format")
)

// DateOutOfRangeError 场次日期落在学期区间之外；携带学期边界用于提示文案
type DateOutOfRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *DateOutOfRangeError) Error() string {
	return fmt.Sprintf("service date must be within the semester: %s - %s",
		e.Start.Format("Mon Jan 02 2006"), e.End.Format("Mon Jan 02 2006"))
}

// RosterService 礼拜场次（排班名单）业务接口。
// 所有创建/更新先过校验（纯检查，不落库），通过后一次性写入。
type RosterService interface {
	Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error)
	List(ctx context.Context, semesterID, serviceType string) ([]dto.ServiceResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, id string) error
	// MinistersWithRecentFlag 给全部在册牧者附加"近期已排"标记：
	// 取该学期最近 N 场（N 为配置项 recent_service_window），
	// 出现在其中任一名单里的牧者记为 true。场次不足 N 用现有的算，
	// 没有场次则全部为 false。
	MinistersWithRecentFlag(ctx context.Context, semesterID string) ([]dto.MinisterAvailabilityResponse, error)
}

type rosterService struct {
	repo         *repository.Repository
	recentWindow int
	logger       *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) RosterService {
	window := cfg.Feature.RecentServiceWindow
	if window <= 0 {
		window = 6
	}
	return &rosterService{repo: repo, recentWindow: window, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *rosterService) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	// 1. 必填字段
	if req.Date == "" || req.ServiceType == "" || req.SemesterID == "" || len(req.Ministers) == 0 {
		return nil, ErrMissingFields
	}

	date, err := parseServiceDate(req.Date)
	if err != nil {
		return nil, ErrBadDate
	}

	// 2. 学期必须存在
	semester, err := s.repo.Semester.GetByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", req.SemesterID), zap.Error(err))
		return nil, err
	}

	// 3-6. 名单与槽位校验（纯检查，任一失败即拒绝，不产生部分写入）
	if err := s.validateRoster(ctx, date, req.ServiceType, semester, req.Ministers, ""); err != nil {
		return nil, err
	}

	day, _ := model.DayBounds(date)
	service := &model.Service{
		ServiceDate: date,
		ServiceDay:  day,
		ServiceType: req.ServiceType,
		SemesterID:  req.SemesterID,
		Assignments: toAssignments(req.Ministers),
	}

	if err := s.repo.Service.Create(ctx, service); err != nil {
		// 槽位唯一索引兜底：并发创建竞态在库层被关死
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		s.logger.Error("创建礼拜场次失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Service.GetByID(ctx, service.ServiceID)
	if err != nil {
		s.logger.Error("回读礼拜场次失败", zap.String("id", service.ServiceID), zap.Error(err))
		return nil, err
	}

	return toServiceResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *rosterService) GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	service, err := s.repo.Service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("查询礼拜场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toServiceResponse(service), nil
}

// ────────────────────── List ──────────────────────

func (s *rosterService) List(ctx context.Context, semesterID, serviceType string) ([]dto.ServiceResponse, error) {
	services, err := s.repo.Service.List(ctx, repository.ServiceFilter{
		SemesterID:  semesterID,
		ServiceType: serviceType,
	})
	if err != nil {
		s.logger.Error("列出礼拜场次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		result = append(result, *toServiceResponse(&services[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 部分更新：校验作用于合并后的完整状态，全部通过才落库
func (s *rosterService) Update(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	service, err := s.repo.Service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("查询礼拜场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// ── 合并目标状态 ──
	date := service.ServiceDate
	if req.Date != nil {
		date, err = parseServiceDate(*req.Date)
		if err != nil {
			return nil, ErrBadDate
		}
	}
	serviceType := service.ServiceType
	if req.ServiceType != nil {
		serviceType = *req.ServiceType
	}
	semesterID := service.SemesterID
	if req.SemesterID != nil {
		semesterID = *req.SemesterID
	}

	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", semesterID), zap.Error(err))
		return nil, err
	}

	ministers := req.Ministers
	if ministers == nil {
		ministers = fromAssignments(service.Assignments)
	}

	if err := s.validateRoster(ctx, date, serviceType, semester, ministers, id); err != nil {
		return nil, err
	}

	day, _ := model.DayBounds(date)
	service.ServiceDate = date
	service.ServiceDay = day
	service.ServiceType = serviceType
	service.SemesterID = semesterID

	// ── 场次字段与名单替换同事务 ──
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
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

	if err := txRepo.Service.Update(ctx, service); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		s.logger.Error("更新礼拜场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Ministers != nil {
		if err := txRepo.Service.ReplaceAssignments(ctx, id, toAssignments(req.Ministers)); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("替换排班名单失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	updated, err := s.repo.Service.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("回读礼拜场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toServiceResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *rosterService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Service.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrServiceNotFound
		}
		s.logger.Error("查询礼拜场次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Service.Delete(ctx, id); err != nil {
		s.logger.Error("删除礼拜场次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── MinistersWithRecentFlag ──────────────────────

func (s *rosterService) MinistersWithRecentFlag(ctx context.Context, semesterID string) ([]dto.MinisterAvailabilityResponse, error) {
	ministers, err := s.repo.Minister.List(ctx, true)
	if err != nil {
		s.logger.Error("列出牧者失败", zap.Error(err))
		return nil, err
	}

	recent, err := s.repo.Service.ListRecent(ctx, semesterID, s.recentWindow)
	if err != nil {
		s.logger.Error("查询近期场次失败", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}

	recentIDs := make(map[string]struct{})
	for i := range recent {
		for _, a := range recent[i].Assignments {
			recentIDs[a.MinisterID] = struct{}{}
		}
	}

	result := make([]dto.MinisterAvailabilityResponse, 0, len(ministers))
	for i := range ministers {
		_, served := recentIDs[ministers[i].MinisterID]
		result = append(result, dto.MinisterAvailabilityResponse{
			MinisterResponse:  *toMinisterResponse(&ministers[i]),
			HasServedRecently: served,
		})
	}

	return result, nil
}

// ────────────────────── 校验 ──────────────────────

// validateRoster 名单合法性检查，按序短路，每种违规返回独立错误：
//  1. 场次日期落在学期 [startDate 00:00, endDate 23:59] 内（按日历日比较）
//  2. 名单内无重复牧者（按归一化后的 ID 比较）
//  3. 三个声部各有至少一名 backup（完整性）
//  4. 同一日历日同类型无其他场次（更新时排除自身）
//
// 纯检查：不产生任何写入，由调用方在通过后一次性持久化。
func (s *rosterService) validateRoster(ctx context.Context, date time.Time, serviceType string, semester *model.Semester, ministers []dto.AssignmentInput, excludeID string) error {
	// 日期范围：起止日各自钳到当日边界
	rangeStart, _ := model.DayBounds(semester.StartDate)
	_, rangeEnd := model.DayBounds(semester.EndDate)
	if date.Before(rangeStart) || date.After(rangeEnd) {
		return &DateOutOfRangeError{Start: semester.StartDate, End: semester.EndDate}
	}

	// 重复牧者
	seen := make(map[string]struct{}, len(ministers))
	for _, m := range ministers {
		if _, dup := seen[m.MinisterID.ID]; dup {
			return ErrDuplicateMinister
		}
		seen[m.MinisterID.ID] = struct{}{}
	}

	// 完整性：每个声部至少一名 backup（lead 仅有一人属约定，不做结构强制）
	backups := make(map[string]bool, len(model.Voices))
	for _, m := range ministers {
		if m.Role == model.RoleBackup {
			backups[m.Voice] = true
		}
	}
	for _, voice := range model.Voices {
		if !backups[voice] {
			return ErrRosterIncomplete
		}
	}

	// 槽位唯一
	day, _ := model.DayBounds(date)
	if _, err := s.repo.Service.FindBySlot(ctx, day, serviceType, excludeID); err == nil {
		return ErrSlotTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询槽位冲突失败", zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// parseServiceDate 接受 RFC3339 或 "2006-01-02"
func parseServiceDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func toAssignments(inputs []dto.AssignmentInput) []model.Assignment {
	assignments := make([]model.Assignment, 0, len(inputs))
	for i, in := range inputs {
		assignments = append(assignments, model.Assignment{
			MinisterID: in.MinisterID.ID,
			Voice:      in.Voice,
			Role:       in.Role,
			Position:   i,
		})
	}
	return assignments
}

func fromAssignments(assignments []model.Assignment) []dto.AssignmentInput {
	inputs := make([]dto.AssignmentInput, 0, len(assignments))
	for _, a := range assignments {
		inputs = append(inputs, dto.AssignmentInput{
			MinisterID: dto.MinisterRef{ID: a.MinisterID},
			Voice:      a.Voice,
			Role:       a.Role,
		})
	}
	return inputs
}

func toServiceResponse(service *model.Service) *dto.ServiceResponse {
	ministers := make([]dto.AssignmentResponse, 0, len(service.Assignments))
	for _, a := range service.Assignments {
		entry := dto.AssignmentResponse{
			MinisterID: a.MinisterID,
			Voice:      a.Voice,
			Role:       a.Role,
		}
		if a.Minister != nil {
			entry.FullName = a.Minister.FullName
			entry.Gender = a.Minister.Gender
		}
		ministers = append(ministers, entry)
	}

	resp := &dto.ServiceResponse{
		ID:          service.ServiceID,
		Date:        service.ServiceDate.Format(time.RFC3339),
		ServiceType: service.ServiceType,
		SemesterID:  service.SemesterID,
		Ministers:   ministers,
		CreatedAt:   service.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   service.UpdatedAt.Format(time.RFC3339),
	}
	if service.Semester != nil {
		resp.SemesterName = service.Semester.Name
	}
	return resp
}

// isUniqueViolation PostgreSQL 23505（唯一约束冲突）
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
