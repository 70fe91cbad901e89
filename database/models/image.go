package models

import (
	"time"

	"gorm.io/gorm"
)

// 链接有效期边界（秒）
const (
	MinLinkExpirationSeconds     = 300
	MaxLinkExpirationSeconds     = 30000
	DefaultLinkExpirationSeconds = 300
)

// ImageAsset 上传的图片及其缩略图
type ImageAsset struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Title                 string    `gorm:"type:varchar(255);not null" json:"title"`
	OwnerID               uint      `gorm:"index:idx_image_assets_owner_created,priority:1;not null" json:"owner_id"`
	OriginalPath          string    `gorm:"type:varchar(512);not null" json:"-"`
	BasicThumbnailPath    string    `gorm:"type:varchar(512)" json:"-"`
	PremiumThumbnailPath  string    `gorm:"type:varchar(512)" json:"-"`
	LinkExpirationSeconds int       `gorm:"not null;default:300" json:"link_expiration_time"`
	CreatedAt             time.Time `gorm:"index:idx_image_assets_owner_created,priority:2;not null" json:"created_at"`
	ExpirationAt          time.Time `gorm:"not null" json:"expiration_at"`
	Ready                 bool      `gorm:"not null;default:false" json:"-"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (ImageAsset) TableName() string {
	return "image_assets"
}

// BeforeUpdate created_at 与 expiration_at 只在创建时写入
func (a *ImageAsset) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.Omits = append(tx.Statement.Omits, "created_at", "expiration_at")
	return nil
}

// IsExpired 判断链接在 now 时刻是否已过期
func (a *ImageAsset) IsExpired(now time.Time) bool {
	return now.After(a.ExpirationAt)
}

// OwnsPath 判断存储路径是否属于该图片
func (a *ImageAsset) OwnsPath(path string) bool {
	if path == "" {
		return false
	}
	return path == a.OriginalPath || path == a.BasicThumbnailPath || path == a.PremiumThumbnailPath
}

// StoragePaths 返回已写入的全部存储路径
func (a *ImageAsset) StoragePaths() []string {
	paths := make([]string, 0, 3)
	for _, p := range []string{a.OriginalPath, a.BasicThumbnailPath, a.PremiumThumbnailPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
