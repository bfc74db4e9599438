package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sakib/jobhive_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	fixtureSeq++
	return fixtureSeq
}

// TestTransaction 创建测试交易
func TestTransaction(t *testing.T, db *gorm.DB, opts ...func(*model.Transaction)) *model.Transaction {
	t.Helper()

	seq := nextSeq()
	tran := &model.Transaction{
		UserID:   1,
		TranID:   fmt.Sprintf("TXN%d-%04d", time.Now().UnixMilli(), seq),
		Amount:   500,
		Currency: "BDT",
		Status:   model.TranStatusPending,
	}

	for _, opt := range opts {
		opt(tran)
	}

	if err := db.Create(tran).Error; err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return tran
}

// WithUser 设置用户 ID
func WithUser(userID int64) func(*model.Transaction) {
	return func(tr *model.Transaction) {
		tr.UserID = userID
	}
}

// WithStatus 设置交易状态
func WithStatus(status string) func(*model.Transaction) {
	return func(tr *model.Transaction) {
		tr.Status = status
	}
}

// WithPlan 设置套餐及订阅字段（到期时间 + 自动续费）
func WithPlan(plan string, expiresAt time.Time, autoRenew bool) func(*model.Transaction) {
	return func(tr *model.Transaction) {
		tr.Plan = plan
		tr.ExpiresAt = &expiresAt
		tr.AutoRenew = autoRenew
		tr.NextBillingDate = &expiresAt
	}
}

// WithRenewedAt 标记为已被续费批处理选中
func WithRenewedAt(at time.Time) func(*model.Transaction) {
	return func(tr *model.Transaction) {
		tr.RenewedAt = &at
	}
}

// TestSubscription 创建测试订阅聚合
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, plan string, expiresAt time.Time, autoRenew bool) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:    userID,
		Plan:      plan,
		ExpiresAt: expiresAt,
		AutoRenew: autoRenew,
		Status:    "active",
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// TestUsage 创建测试用量记录
func TestUsage(t *testing.T, db *gorm.DB, userID int64, feature, month string, count, limit int) *model.UsageRecord {
	t.Helper()

	rec := &model.UsageRecord{
		UserID:        userID,
		Feature:       feature,
		Month:         month,
		Count:         count,
		LimitSnapshot: limit,
	}

	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to create test usage record: %v", err)
	}

	return rec
}
