package model

import (
	"time"
)

// 交易状态，pending 之后只能进入 completed 或 failed，均为终态
const (
	TranStatusPending   = "pending"
	TranStatusCompleted = "completed"
	TranStatusFailed    = "failed"
)

// Transaction 支付交易记录
// plan 为空表示一次性付款，此时 expires_at / auto_renew / next_billing_date 均不设置
type Transaction struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	UserID          int64      `gorm:"not null;index" json:"user_id"`
	TranID          string     `gorm:"size:64;not null;uniqueIndex" json:"tran_id"` // 对外关联 ID，全局唯一
	Amount          float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string     `gorm:"size:8;not null;default:BDT" json:"currency"`
	Plan            string     `gorm:"size:20" json:"plan,omitempty"`
	Status          string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	CusName         string     `gorm:"size:100" json:"cus_name,omitempty"`
	CusEmail        string     `gorm:"size:120" json:"cus_email,omitempty"`
	ExpiresAt       *time.Time `gorm:"index" json:"expires_at,omitempty"`
	AutoRenew       bool       `gorm:"not null;default:false" json:"auto_renew"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	RenewedAt       *time.Time `json:"renewed_at,omitempty"`            // 续费批处理打点，选中过的行不再重复选中
	SupersededBy    string     `gorm:"size:64" json:"superseded_by,omitempty"` // 后继交易的 tran_id
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Terminal 是否已处于终态
func (t *Transaction) Terminal() bool {
	return t.Status == TranStatusCompleted || t.Status == TranStatusFailed
}
