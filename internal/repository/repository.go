package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db       *gorm.DB
	Minister MinisterRepository
	Semester SemesterRepository
	Service  ServiceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		Minister: NewMinisterRepo(db),
		Semester: NewSemesterRepo(db),
		Service:  NewServiceRepo(db),
	}
}

// BeginTx 开启事务，返回事务连接
// db 为 nil（单测注入 mock repo）时返回 nil 事务，调用方按 nil 跳过提交/回滚
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到指定事务连接的 Repository 副本；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
