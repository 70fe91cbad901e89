package models

import "time"

// 内置套餐名称
const (
	PlanBasic      = "Basic"
	PlanPremium    = "Premium"
	PlanEnterprise = "Enterprise"
)

// SubscriptionPlan 订阅套餐，决定缩略图尺寸与链接过期策略
type SubscriptionPlan struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"type:varchar(50);uniqueIndex:ux_subscription_plans_name;not null" json:"name"`
	BasicThumbnailSize     int       `gorm:"not null" json:"basic_thumbnail_size"`
	PremiumThumbnailSize   *int      `json:"premium_thumbnail_size,omitempty"`
	GrantsOriginalAccess   bool      `gorm:"not null;default:false" json:"grants_original_access"`
	GrantsNonExpiringLinks bool      `gorm:"not null;default:false" json:"grants_non_expiring_links"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// IsPremiumTier 是否属于高级档位（Premium / Enterprise）
func (p *SubscriptionPlan) IsPremiumTier() bool {
	return p.Name == PlanPremium || p.Name == PlanEnterprise
}

// PremiumSize 返回高级缩略图尺寸，不适用时返回 0
func (p *SubscriptionPlan) PremiumSize() int {
	if p.PremiumThumbnailSize == nil || *p.PremiumThumbnailSize <= 0 || !p.IsPremiumTier() {
		return 0
	}
	return *p.PremiumThumbnailSize
}
