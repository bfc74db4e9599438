package model

import (
	"time"
)

// UsageRecord 按用户/功能/自然月的用量计数，只增不删
type UsageRecord struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;uniqueIndex:uk_usage_user_feature_month" json:"user_id"`
	Feature       string    `gorm:"size:40;not null;uniqueIndex:uk_usage_user_feature_month" json:"feature"`
	Month         string    `gorm:"size:7;not null;uniqueIndex:uk_usage_user_feature_month" json:"month"` // YYYY-MM
	Count         int       `gorm:"not null;default:0" json:"count"`
	LimitSnapshot int       `gorm:"not null;default:0" json:"limit_snapshot"` // 记账时生效的限额快照
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_tracking"
}
