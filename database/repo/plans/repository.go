package plans

import (
	"context"

	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 套餐仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建套餐仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// GetByID 根据 ID 获取套餐
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName 根据名称获取套餐
func (r *Repository) GetByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// List 按 ID 顺序列出全部套餐
func (r *Repository) List(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	var plans []*models.SubscriptionPlan
	err := r.db.WithContext(ctx).Order("id asc").Find(&plans).Error
	return plans, err
}

// Count 套餐总数
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SubscriptionPlan{}).Count(&count).Error
	return count, err
}

// InsertIfEmpty 表为空时插入套餐，返回实际插入的行数
// 名称上的唯一约束配合 DO NOTHING，并发首次初始化也不会产生重复行
func (r *Repository) InsertIfEmpty(ctx context.Context, plans []*models.SubscriptionPlan) (int64, error) {
	if len(plans) == 0 {
		return 0, nil
	}

	var inserted int64
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SubscriptionPlan{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&plans)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	return inserted, err
}
