package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakib/jobhive_go_server/internal/model"
)

var (
	ErrTranNotFound = errors.New("交易不存在")
	ErrTranTerminal = errors.New("交易已处于终态")
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tran *model.Transaction) error {
	return r.db.Create(tran).Error
}

func (r *TransactionRepository) GetByTranID(tranID string) (*model.Transaction, error) {
	var tran model.Transaction
	err := r.db.Where("tran_id = ?", tranID).First(&tran).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTranNotFound
		}
		return nil, err
	}
	return &tran, nil
}

// guardMiss 守卫更新零行命中时区分原因：行不存在还是已终态
func guardMiss(db *gorm.DB, tranID string) error {
	var tran model.Transaction
	if err := db.Where("tran_id = ?", tranID).First(&tran).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTranNotFound
		}
		return err
	}
	if tran.Terminal() {
		return ErrTranTerminal
	}
	return fmt.Errorf("交易 %s 状态异常: %s", tranID, tran.Status)
}

// MarkFailed pending → failed，已终态的行不再改动
func (r *TransactionRepository) MarkFailed(tranID string) error {
	res := r.db.Model(&model.Transaction{}).
		Where("tran_id = ? AND status = ?", tranID, model.TranStatusPending).
		Update("status", model.TranStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guardMiss(r.db, tranID)
	}
	return nil
}

// MarkCompleted pending → completed，并在同一事务内维护订阅聚合
func (r *TransactionRepository) MarkCompleted(tranID string) (*model.Transaction, error) {
	var tran *model.Transaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).
			Where("tran_id = ? AND status = ?", tranID, model.TranStatusPending).
			Update("status", model.TranStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return guardMiss(tx, tranID)
		}

		var t model.Transaction
		if err := tx.Where("tran_id = ?", tranID).First(&t).Error; err != nil {
			return err
		}
		tran = &t

		// 一次性付款不产生订阅
		if t.Plan == "" || t.ExpiresAt == nil {
			return nil
		}

		sub := model.Subscription{
			UserID:     t.UserID,
			Plan:       t.Plan,
			ExpiresAt:  *t.ExpiresAt,
			AutoRenew:  t.AutoRenew,
			Status:     "active",
			LastTranID: t.TranID,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"plan":         t.Plan,
				"expires_at":   *t.ExpiresAt,
				"auto_renew":   t.AutoRenew,
				"status":       "active",
				"last_tran_id": t.TranID,
				"updated_at":   time.Now(),
			}),
		}).Create(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return tran, nil
}

// GetSubscription 用户的订阅聚合，不存在时返回 nil
func (r *TransactionRepository) GetSubscription(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// LatestCompletedPlan 最近一笔带套餐的已完成交易，聚合缺失时的兜底推导
func (r *TransactionRepository) LatestCompletedPlan(userID int64) (*model.Transaction, error) {
	var tran model.Transaction
	err := r.db.Where("user_id = ? AND status = ? AND plan <> ''", userID, model.TranStatusCompleted).
		Order("created_at DESC").
		First(&tran).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tran, nil
}

// ListRenewable 到期且开启自动续费、尚未被续费批处理打点的已完成交易
func (r *TransactionRepository) ListRenewable(now time.Time) ([]model.Transaction, error) {
	var trans []model.Transaction
	err := r.db.Where(
		"status = ? AND auto_renew = ? AND expires_at <= ? AND plan <> '' AND renewed_at IS NULL",
		model.TranStatusCompleted, true, now,
	).Order("expires_at").Find(&trans).Error
	return trans, err
}

// CreateRenewal 在同一事务内写入后继交易并给源交易打点，重复运行不会再次选中源交易
func (r *TransactionRepository) CreateRenewal(source *model.Transaction, successor *model.Transaction) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(successor).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Transaction{}).
			Where("tran_id = ? AND renewed_at IS NULL", source.TranID).
			Updates(map[string]interface{}{
				"renewed_at":    now,
				"superseded_by": successor.TranID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已被并发批次处理过，回滚后继交易
			return ErrTranTerminal
		}
		return nil
	})
}

// ListByUser 用户的交易历史
func (r *TransactionRepository) ListByUser(userID int64) ([]model.Transaction, error) {
	var trans []model.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&trans).Error
	return trans, err
}
