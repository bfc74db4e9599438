package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sakib/jobhive_go_server/config"
	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/model/dto"
	"github.com/sakib/jobhive_go_server/internal/pkg/gateway"
	"github.com/sakib/jobhive_go_server/internal/pkg/pubsub"
	"github.com/sakib/jobhive_go_server/internal/pkg/retry"
	"github.com/sakib/jobhive_go_server/internal/pkg/tranid"
	"github.com/sakib/jobhive_go_server/internal/repository"
)

var (
	ErrInvalidAmount = errors.New("金额必须大于 0")
	ErrInvalidPlan   = errors.New("未知的套餐")
)

// CheckoutOutcome 发起支付的结果，跳转地址或网关直出的 HTML 二选一
type CheckoutOutcome struct {
	TranID      string
	RedirectURL string
	HTML        string
}

// PaymentService 交易生命周期编排
// 数据库写入经 retry 包装，网关调用一笔交易只发一次、从不重试
type PaymentService struct {
	tranRepo  *repository.TransactionRepository
	gw        *gateway.Client
	publisher *pubsub.Publisher
	cfg       *config.Config
}

func NewPaymentService(
	tranRepo *repository.TransactionRepository,
	gw *gateway.Client,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		tranRepo:  tranRepo,
		gw:        gw,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateCheckout 发起托管收银台支付
// 先落 pending 交易再调网关；网关侧任何失败都会把交易置为 failed 后再上抛
func (s *PaymentService) CreateCheckout(ctx context.Context, userID int64, req *dto.CreateCheckoutRequest) (*CheckoutOutcome, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	// free 不是可购买的套餐，不允许挂上订阅字段进入续费链路
	if req.Plan != "" && (!model.ValidPlan(req.Plan) || req.Plan == string(model.PlanFree)) {
		return nil, ErrInvalidPlan
	}

	now := time.Now()
	tran := &model.Transaction{
		UserID:   userID,
		TranID:   tranid.New(),
		Amount:   req.Amount,
		Currency: s.cfg.Gateway.Currency,
		Plan:     req.Plan,
		Status:   model.TranStatusPending,
		CusName:  req.CusName,
		CusEmail: req.CusEmail,
	}

	// 订阅类交易带上有效期和续费标记，一次性付款不带
	if req.Plan != "" {
		expires := now.AddDate(0, 1, 0)
		tran.ExpiresAt = &expires
		tran.AutoRenew = true
		tran.NextBillingDate = &expires
	}

	if err := retry.Do(func() error {
		return s.tranRepo.Create(tran)
	}); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, pubsub.EventCheckoutCreated, tran)

	items := []gateway.LineItem{{Name: s.itemName(req.Plan), Quantity: 1, Price: req.Amount}}
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.cfg.Gateway.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.Gateway.CancelURL
	}

	result, err := s.gw.CreateCheckout(ctx, &gateway.CheckoutRequest{
		TranID:      tran.TranID,
		Amount:      req.Amount,
		Currency:    tran.Currency,
		Items:       items,
		CusName:     req.CusName,
		CusEmail:    req.CusEmail,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		ContinueURL: s.cfg.Gateway.ContinueURL,
	})
	if err != nil {
		// 已知失败不允许把交易留在 pending
		if markErr := retry.Do(func() error {
			return s.tranRepo.MarkFailed(tran.TranID)
		}); markErr != nil {
			log.Printf("Failed to mark transaction %s failed: %v", tran.TranID, markErr)
		}
		s.publish(ctx, pubsub.EventPaymentFailed, tran)
		// 交易号随错误返回，调用方可据此排查这笔失败交易
		return &CheckoutOutcome{TranID: tran.TranID}, err
	}

	return &CheckoutOutcome{
		TranID:      tran.TranID,
		RedirectURL: result.RedirectURL,
		HTML:        result.HTML,
	}, nil
}

func (s *PaymentService) itemName(plan string) string {
	if plan == "" {
		return "One-time payment"
	}
	return fmt.Sprintf("JobHive %s plan (1 month)", plan)
}

// ConfirmPayment 网关回调驱动的终态迁移
func (s *PaymentService) ConfirmPayment(ctx context.Context, tranID, status string) (*model.Transaction, error) {
	switch status {
	case model.TranStatusCompleted:
		var tran *model.Transaction
		err := retry.Do(func() error {
			var innerErr error
			tran, innerErr = s.tranRepo.MarkCompleted(tranID)
			return innerErr
		})
		if err != nil {
			return nil, err
		}
		s.publish(ctx, pubsub.EventPaymentComplete, tran)
		return tran, nil
	case model.TranStatusFailed:
		if err := retry.Do(func() error {
			return s.tranRepo.MarkFailed(tranID)
		}); err != nil {
			return nil, err
		}
		tran, err := s.tranRepo.GetByTranID(tranID)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, pubsub.EventPaymentFailed, tran)
		return tran, nil
	default:
		return nil, fmt.Errorf("不支持的状态迁移: %s", status)
	}
}

// RenewDue 续费批处理
// 选中到期且开自动续费的已完成交易，生成后继 pending 交易并给源交易打点
// 不调网关扣款，后继交易等待人工收款
func (s *PaymentService) RenewDue(ctx context.Context) (*dto.RenewalResult, error) {
	now := time.Now()

	due, err := s.tranRepo.ListRenewable(now)
	if err != nil {
		return nil, fmt.Errorf("list renewable transactions: %w", err)
	}

	result := &dto.RenewalResult{Renewals: []dto.RenewalItem{}}
	for i := range due {
		source := &due[i]

		newExpires := now.AddDate(0, 1, 0)
		successor := &model.Transaction{
			UserID:          source.UserID,
			TranID:          tranid.New(),
			Amount:          source.Amount,
			Currency:        source.Currency,
			Plan:            source.Plan,
			Status:          model.TranStatusPending,
			CusName:         source.CusName,
			CusEmail:        source.CusEmail,
			ExpiresAt:       &newExpires,
			AutoRenew:       true,
			NextBillingDate: &newExpires,
		}

		if err := retry.Do(func() error {
			return s.tranRepo.CreateRenewal(source, successor)
		}); err != nil {
			if errors.Is(err, repository.ErrTranTerminal) {
				// 并发批次已处理过这行，跳过
				continue
			}
			log.Printf("Renewal failed for %s: %v", source.TranID, err)
			continue
		}

		result.Processed++
		result.Renewals = append(result.Renewals, dto.RenewalItem{
			TranID:     successor.TranID,
			UserID:     successor.UserID,
			Plan:       successor.Plan,
			Amount:     successor.Amount,
			Currency:   successor.Currency,
			Status:     "pending_manual_payment",
			SourceTran: source.TranID,
		})

		s.publish(ctx, pubsub.EventRenewalPending, successor)
	}

	return result, nil
}

// publish 事件通知尽力而为，失败只记日志不影响主流程
func (s *PaymentService) publish(ctx context.Context, event string, tran *model.Transaction) {
	if s.publisher == nil || tran == nil {
		return
	}
	msg := &pubsub.PaymentMessage{
		Type:     event,
		UserID:   tran.UserID,
		TranID:   tran.TranID,
		Plan:     tran.Plan,
		Amount:   tran.Amount,
		Currency: tran.Currency,
		CusEmail: tran.CusEmail,
	}
	if err := s.publisher.PublishPayment(ctx, msg); err != nil {
		log.Printf("Failed to publish %s event for %s: %v", event, tran.TranID, err)
	}
}
