package repository

import (
	"context"

	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id string) (*model.Semester, error)
	GetByName(ctx context.Context, name string) (*model.Semester, error)
	GetCurrent(ctx context.Context) (*model.Semester, error)
	List(ctx context.Context) ([]model.Semester, error)
	Update(ctx context.Context, semester *model.Semester) error
	Delete(ctx context.Context, id string) error
	// ClearActiveExcept 将除 excludeID 以外所有学期的 is_active 置为 false；
	// excludeID 传空串表示全部清除。须与目标学期的激活写入放在同一事务中。
	ClearActiveExcept(ctx context.Context, excludeID string) error
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetByName(ctx context.Context, name string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetCurrent(ctx context.Context) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) List(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) Update(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Save(semester).Error
}

func (r *semesterRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		Delete(&model.Semester{}).Error
}

func (r *semesterRepo) ClearActiveExcept(ctx context.Context, excludeID string) error {
	db := r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("is_active = ?", true)
	if excludeID != "" {
		db = db.Where("semester_id != ?", excludeID)
	}
	return db.Update("is_active", false).Error
}
