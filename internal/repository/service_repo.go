package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
)

// ServiceFilter 场次列表过滤条件
type ServiceFilter struct {
	SemesterID  string
	ServiceType string
}

// ParticipationCount 单个牧者的历史排班总次数（全部学期）
type ParticipationCount struct {
	MinisterID string
	Total      int
}

// SemesterAssignmentRow 学期内一条排班记录（牧者 + 角色 + 场次日期）。
// INNER JOIN ministers：已被永久删除的牧者的悬挂记录不进入统计。
type SemesterAssignmentRow struct {
	MinisterID  string
	FullName    string
	Gender      string
	Role        string
	ServiceDate time.Time
}

// ServiceRepository 礼拜场次数据访问接口
type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	List(ctx context.Context, filter ServiceFilter) ([]model.Service, error)
	// Update 仅更新场次自身字段，名单替换走 ReplaceAssignments
	Update(ctx context.Context, service *model.Service) error
	// ReplaceAssignments 全量替换场次名单（调用方负责包在事务里）
	ReplaceAssignments(ctx context.Context, serviceID string, assignments []model.Assignment) error
	Delete(ctx context.Context, id string) error
	// FindBySlot 查找同一日历日、同类型的另一场次；excludeID 非空时排除自身
	FindBySlot(ctx context.Context, day time.Time, serviceType string, excludeID string) (*model.Service, error)
	// ListRecent 学期内按日期倒序取最近 limit 场（"近期已排"窗口）
	ListRecent(ctx context.Context, semesterID string, limit int) ([]model.Service, error)
	CountBySemester(ctx context.Context, semesterID string) (int64, error)
	// ParticipationTotals 全历史按牧者聚合的排班次数
	ParticipationTotals(ctx context.Context) ([]ParticipationCount, error)
	// ListSemesterAssignments 学期内全部排班记录（供单学期统计聚合）
	ListSemesterAssignments(ctx context.Context, semesterID string) ([]SemesterAssignmentRow, error)
}

type serviceRepo struct {
	db *gorm.DB
}

// NewServiceRepo 创建 ServiceRepository 实例
func NewServiceRepo(db *gorm.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) Create(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *serviceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var service model.Service
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Assignments.Minister").
		Where("service_id = ?", id).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepo) List(ctx context.Context, filter ServiceFilter) ([]model.Service, error) {
	var services []model.Service
	db := r.db.WithContext(ctx).
		Preload("Semester").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Assignments.Minister").
		Order("service_date DESC")
	if filter.SemesterID != "" {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.ServiceType != "" {
		db = db.Where("service_type = ?", filter.ServiceType)
	}
	err := db.Find(&services).Error
	return services, err
}

func (r *serviceRepo) Update(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).
		Omit("Assignments", "Semester").
		Save(service).Error
}

func (r *serviceRepo) ReplaceAssignments(ctx context.Context, serviceID string, assignments []model.Assignment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("service_id = ?", serviceID).
		Delete(&model.Assignment{}).Error; err != nil {
		return err
	}
	for i := range assignments {
		assignments[i].ServiceID = serviceID
		assignments[i].Position = i
	}
	return db.Create(&assignments).Error
}

func (r *serviceRepo) Delete(ctx context.Context, id string) error {
	// 名单由外键 ON DELETE CASCADE 一并清除
	return r.db.WithContext(ctx).
		Where("service_id = ?", id).
		Delete(&model.Service{}).Error
}

func (r *serviceRepo) FindBySlot(ctx context.Context, day time.Time, serviceType string, excludeID string) (*model.Service, error) {
	var service model.Service
	db := r.db.WithContext(ctx).
		Where("service_day = ? AND service_type = ?", day.Format("2006-01-02"), serviceType)
	if excludeID != "" {
		db = db.Where("service_id != ?", excludeID)
	}
	err := db.First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepo) ListRecent(ctx context.Context, semesterID string, limit int) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("semester_id = ?", semesterID).
		Order("service_date DESC").
		Limit(limit).
		Find(&services).Error
	return services, err
}

func (r *serviceRepo) CountBySemester(ctx context.Context, semesterID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Service{}).
		Where("semester_id = ?", semesterID).
		Count(&count).Error
	return count, err
}

func (r *serviceRepo) ParticipationTotals(ctx context.Context) ([]ParticipationCount, error) {
	var rows []ParticipationCount
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("minister_id, COUNT(*) AS total").
		Group("minister_id").
		Scan(&rows).Error
	return rows, err
}

func (r *serviceRepo) ListSemesterAssignments(ctx context.Context, semesterID string) ([]SemesterAssignmentRow, error) {
	var rows []SemesterAssignmentRow
	err := r.db.WithContext(ctx).
		Table("service_assignments AS a").
		Select("a.minister_id, m.fullname AS full_name, m.gender, a.role, s.service_date").
		Joins("JOIN services s ON s.service_id = a.service_id").
		Joins("JOIN ministers m ON m.minister_id = a.minister_id").
		Where("s.semester_id = ?", semesterID).
		Scan(&rows).Error
	return rows, err
}
