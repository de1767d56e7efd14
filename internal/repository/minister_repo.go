package repository

import (
	"context"

	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
)

// GenderCount 按性别分组计数的查询结果行
type GenderCount struct {
	Gender string
	Total  int64
}

// MinisterRepository 牧者数据访问接口
type MinisterRepository interface {
	Create(ctx context.Context, minister *model.Minister) error
	GetByID(ctx context.Context, id string) (*model.Minister, error)
	GetByFullName(ctx context.Context, fullname string) (*model.Minister, error)
	List(ctx context.Context, onlyActive bool) ([]model.Minister, error)
	Update(ctx context.Context, minister *model.Minister) error
	// Delete 永久删除（历史排班中的引用悬挂保留）
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int64, error)
	CountByGender(ctx context.Context) ([]GenderCount, error)
}

type ministerRepo struct {
	db *gorm.DB
}

// NewMinisterRepo 创建 MinisterRepository 实例
func NewMinisterRepo(db *gorm.DB) MinisterRepository {
	return &ministerRepo{db: db}
}

func (r *ministerRepo) Create(ctx context.Context, minister *model.Minister) error {
	return r.db.WithContext(ctx).Create(minister).Error
}

func (r *ministerRepo) GetByID(ctx context.Context, id string) (*model.Minister, error) {
	var minister model.Minister
	err := r.db.WithContext(ctx).
		Where("minister_id = ?", id).
		First(&minister).Error
	if err != nil {
		return nil, err
	}
	return &minister, nil
}

func (r *ministerRepo) GetByFullName(ctx context.Context, fullname string) (*model.Minister, error) {
	var minister model.Minister
	err := r.db.WithContext(ctx).
		Where("fullname = ?", fullname).
		First(&minister).Error
	if err != nil {
		return nil, err
	}
	return &minister, nil
}

func (r *ministerRepo) List(ctx context.Context, onlyActive bool) ([]model.Minister, error) {
	var ministers []model.Minister
	db := r.db.WithContext(ctx).Order("created_at ASC")
	if onlyActive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Find(&ministers).Error
	return ministers, err
}

func (r *ministerRepo) Update(ctx context.Context, minister *model.Minister) error {
	return r.db.WithContext(ctx).Save(minister).Error
}

func (r *ministerRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("minister_id = ?", id).
		Delete(&model.Minister{}).Error
}

func (r *ministerRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Minister{}).
		Count(&count).Error
	return count, err
}

func (r *ministerRepo) CountByGender(ctx context.Context) ([]GenderCount, error) {
	var rows []GenderCount
	err := r.db.WithContext(ctx).
		Model(&model.Minister{}).
		Select("gender, COUNT(*) AS total").
		Group("gender").
		Scan(&rows).Error
	return rows, err
}
