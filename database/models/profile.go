package models

import "time"

// UserProfile 用户资料，与外部账号一一对应
type UserProfile struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	UserID             uint              `gorm:"uniqueIndex:ux_user_profiles_user;not null" json:"user_id"`
	SubscriptionPlanID *uint             `gorm:"index" json:"subscription_plan_id"`
	SubscriptionPlan   *SubscriptionPlan `gorm:"foreignKey:SubscriptionPlanID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (UserProfile) TableName() string {
	return "user_profiles"
}
