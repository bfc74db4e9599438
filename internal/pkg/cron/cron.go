package cron

import (
	"context"
	"log"
	"time"

	"github.com/sakib/jobhive_go_server/internal/service"
)

// Service 进程内定时任务
// 续费批处理每天跑一次；批处理自身可安全重跑，但同一天多跑没有意义
type Service struct {
	paymentService *service.PaymentService
	stopChan       chan struct{}
}

func NewService(paymentService *service.PaymentService) *Service {
	return &Service{
		paymentService: paymentService,
		stopChan:       make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyRenewal()
	log.Println("Cron service started (daily renewal batch)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyRenewal 每日续费批处理，UTC 零点触发
func (s *Service) runDailyRenewal() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runRenewals()
			timer.Reset(24 * time.Hour)
		}
	}
}

// runRenewals 执行一次续费批处理
func (s *Service) runRenewals() {
	log.Println("Starting renewal batch...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.paymentService.RenewDue(ctx)
	if err != nil {
		log.Printf("Renewal batch failed: %v", err)
		return
	}

	if result.Processed > 0 {
		log.Printf("Renewal batch completed: %d transactions created (pending manual payment)", result.Processed)
	} else {
		log.Println("Renewal batch completed: nothing due")
	}
}
