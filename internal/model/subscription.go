package model

import (
	"time"
)

// Subscription 用户当前订阅的聚合视图
// 在交易完成时同步维护，权益判定只读这一行，不再扫描交易历史
type Subscription struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan       string    `gorm:"size:20;not null" json:"plan"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	AutoRenew  bool      `gorm:"not null;default:false" json:"auto_renew"`
	Status     string    `gorm:"size:20;default:active;index" json:"status"` // active, expired, cancelled
	LastTranID string    `gorm:"size:64" json:"last_tran_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
