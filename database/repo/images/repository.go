package images

import (
	"context"

	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/database/models"
	"gorm.io/gorm"
)

// Repository 图片仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建图片仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateWithTx 在指定事务中创建图片记录
func (r *Repository) CreateWithTx(tx *gorm.DB, asset *models.ImageAsset) error {
	return tx.Create(asset).Error
}

// AttachThumbnailsWithTx 写入缩略图路径并标记为就绪
func (r *Repository) AttachThumbnailsWithTx(tx *gorm.DB, id uint, basicPath, premiumPath string) error {
	result := tx.Model(&models.ImageAsset{ID: id}).Updates(map[string]interface{}{
		"basic_thumbnail_path":   basicPath,
		"premium_thumbnail_path": premiumPath,
		"ready":                  true,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePending 删除未就绪的记录，已就绪的记录不受影响
func (r *Repository) DeletePending(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("ready = ?", false).Delete(&models.ImageAsset{}, id).Error
}

// GetByID 根据 ID 获取图片（包含未就绪的记录）
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.ImageAsset, error) {
	var asset models.ImageAsset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetReadyByID 获取已就绪的图片
func (r *Repository) GetReadyByID(ctx context.Context, id uint) (*models.ImageAsset, error) {
	var asset models.ImageAsset
	if err := r.db.WithContext(ctx).Where("ready = ?", true).First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// List 分页列出已就绪的图片，ownerID 为 0 时不按用户过滤
func (r *Repository) List(ctx context.Context, ownerID uint, page, pageSize int) ([]*models.ImageAsset, int64, error) {
	var assets []*models.ImageAsset
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ImageAsset{}).Where("ready = ?", true)
	if ownerID != 0 {
		query = query.Where("owner_id = ?", ownerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(pageSize).Find(&assets).Error
	return assets, total, err
}

// Save 保存图片记录，created_at 与 expiration_at 不会被覆盖
func (r *Repository) Save(ctx context.Context, asset *models.ImageAsset) error {
	return r.db.WithContext(ctx).Omit("created_at", "expiration_at").Save(asset).Error
}

// UpdateTitle 修改标题
func (r *Repository) UpdateTitle(ctx context.Context, id uint, title string) error {
	result := r.db.WithContext(ctx).Model(&models.ImageAsset{ID: id}).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
