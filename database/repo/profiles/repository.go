package profiles

import (
	"context"

	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 用户资料仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建用户资料仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// GetByUserID 获取用户资料
func (r *Repository) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfAbsent 用户尚无资料时创建，返回是否新建
func (r *Repository) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(profile)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePlan 修改用户的套餐
func (r *Repository) UpdatePlan(ctx context.Context, userID, planID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("subscription_plan_id", planID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
