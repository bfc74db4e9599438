package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakib/jobhive_go_server/internal/model"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Get 查询某月用量记录，不存在时返回 nil
func (r *UsageRepository) Get(userID int64, feature, month string) (*model.UsageRecord, error) {
	var rec model.UsageRecord
	err := r.db.Where("user_id = ? AND feature = ? AND month = ?", userID, feature, month).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CurrentUsage 查询当月已用次数和记账时的限额快照，无记录时返回 (0, 0)
func (r *UsageRepository) CurrentUsage(userID int64, feature, month string) (int, int, error) {
	rec, err := r.Get(userID, feature, month)
	if err != nil {
		return 0, 0, err
	}
	if rec == nil {
		return 0, 0, nil
	}
	return rec.Count, rec.LimitSnapshot, nil
}

// RecordUse 原子 upsert 自增，并发调用不会丢失计数
// limit 为调用方解析出的当前套餐限额，写入快照供审计
func (r *UsageRepository) RecordUse(userID int64, feature, month string, limit int) error {
	now := time.Now()
	rec := model.UsageRecord{
		UserID:        userID,
		Feature:       feature,
		Month:         month,
		Count:         1,
		LimitSnapshot: limit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "feature"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":          gorm.Expr("count + 1"),
			"limit_snapshot": limit,
			"updated_at":     now,
		}),
	}).Create(&rec).Error
}

// ListByUser 用户某月的全部用量记录
func (r *UsageRepository) ListByUser(userID int64, month string) ([]model.UsageRecord, error) {
	var recs []model.UsageRecord
	err := r.db.Where("user_id = ? AND month = ?", userID, month).
		Order("feature").
		Find(&recs).Error
	return recs, err
}
