package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/model/dto"
	"github.com/sakib/jobhive_go_server/internal/plan"
	"github.com/sakib/jobhive_go_server/internal/repository"
)

var (
	ErrUnknownFeature = errors.New("未知的功能标识")
	ErrWrongRole      = errors.New("当前角色无法使用该功能")
)

// EntitlementService 权益判定，检查与记账是两个独立操作
// 检查不产生任何写入，调用方在功能实际执行成功后再记账
type EntitlementService struct {
	usageRepo *repository.UsageRepository
	tranRepo  *repository.TransactionRepository
	catalog   *plan.Catalog
	loc       *time.Location
}

func NewEntitlementService(
	usageRepo *repository.UsageRepository,
	tranRepo *repository.TransactionRepository,
	catalog *plan.Catalog,
	loc *time.Location,
) *EntitlementService {
	if loc == nil {
		loc = time.UTC
	}
	return &EntitlementService{
		usageRepo: usageRepo,
		tranRepo:  tranRepo,
		catalog:   catalog,
		loc:       loc,
	}
}

// CurrentMonth 服务器基准时区下的自然月键，YYYY-MM
func (s *EntitlementService) CurrentMonth() string {
	return s.monthKey(time.Now())
}

func (s *EntitlementService) monthKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01")
}

// resolvePlan 解析用户当前生效的套餐
// 订阅聚合缺失时退回交易历史推导；已到期且未开自动续费的按 free 处理
func (s *EntitlementService) resolvePlan(userID int64, now time.Time) (model.PlanTier, *model.Subscription, error) {
	sub, err := s.tranRepo.GetSubscription(userID)
	if err != nil {
		return model.PlanFree, nil, err
	}

	if sub == nil {
		tran, err := s.tranRepo.LatestCompletedPlan(userID)
		if err != nil {
			return model.PlanFree, nil, err
		}
		if tran == nil {
			return model.PlanFree, nil, nil
		}
		sub = &model.Subscription{
			UserID:     tran.UserID,
			Plan:       tran.Plan,
			AutoRenew:  tran.AutoRenew,
			LastTranID: tran.TranID,
		}
		if tran.ExpiresAt != nil {
			sub.ExpiresAt = *tran.ExpiresAt
		}
	}

	if !sub.ExpiresAt.IsZero() && now.After(sub.ExpiresAt) && !sub.AutoRenew {
		return model.PlanFree, sub, nil
	}
	return model.PlanTier(sub.Plan), sub, nil
}

// CheckUsage 权益判定
// 时长功能看订阅有效期，计次功能看当月账本，两者都不在这里记账
func (s *EntitlementService) CheckUsage(userID int64, feature model.FeatureKey, role model.Role) (*dto.EntitlementResult, error) {
	featureRole, ok := s.catalog.Role(feature)
	if !ok {
		return nil, ErrUnknownFeature
	}
	if featureRole != role {
		return nil, ErrWrongRole
	}

	now := time.Now()
	tier, sub, err := s.resolvePlan(userID, now)
	if err != nil {
		return nil, err
	}

	limit := s.catalog.LimitFor(tier, role, feature)
	result := &dto.EntitlementResult{
		Feature: string(feature),
		Limit:   limit,
	}

	if limit == 0 {
		result.Message = "当前套餐不支持该功能，请升级套餐"
		return result, nil
	}

	if s.catalog.DurationBased(feature) {
		// 时长功能不查账本，有效期内或开启自动续费即可用
		result.Current = limit
		switch {
		case sub == nil || sub.ExpiresAt.IsZero():
			result.Allowed = true
		case !now.After(sub.ExpiresAt):
			result.Allowed = true
		case sub.AutoRenew:
			result.Allowed = true
		default:
			result.Message = "订阅已到期，请续费后继续使用"
		}
		return result, nil
	}

	count, _, err := s.usageRepo.CurrentUsage(userID, string(feature), s.monthKey(now))
	if err != nil {
		return nil, err
	}

	result.Current = count
	if count < limit {
		result.Allowed = true
	} else {
		result.Message = fmt.Sprintf("本月次数已用完（%d/%d），下月自动重置", count, limit)
	}
	return result, nil
}

// RecordUse 记一次用量，时长功能与限额为 0 的功能不记账
func (s *EntitlementService) RecordUse(userID int64, feature model.FeatureKey, role model.Role) error {
	featureRole, ok := s.catalog.Role(feature)
	if !ok {
		return ErrUnknownFeature
	}
	if featureRole != role {
		return ErrWrongRole
	}

	if s.catalog.DurationBased(feature) {
		return nil
	}

	now := time.Now()
	tier, _, err := s.resolvePlan(userID, now)
	if err != nil {
		return err
	}

	limit := s.catalog.LimitFor(tier, role, feature)
	if limit == 0 {
		return nil
	}

	return s.usageRepo.RecordUse(userID, string(feature), s.monthKey(now), limit)
}

// Summary 当前套餐下该角色全部功能的用量概览
func (s *EntitlementService) Summary(userID int64, role model.Role) (*dto.EntitlementSummary, error) {
	now := time.Now()
	tier, _, err := s.resolvePlan(userID, now)
	if err != nil {
		return nil, err
	}

	summary := &dto.EntitlementSummary{
		Plan: string(tier),
		Role: string(role),
	}

	for _, feature := range s.catalog.Features(role) {
		result, err := s.CheckUsage(userID, feature, role)
		if err != nil {
			return nil, err
		}
		summary.Features = append(summary.Features, *result)
	}
	return summary, nil
}
