package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sakib/jobhive_go_server/config"
	"github.com/sakib/jobhive_go_server/internal/api"
	"github.com/sakib/jobhive_go_server/internal/api/handler"
	"github.com/sakib/jobhive_go_server/internal/database"
	"github.com/sakib/jobhive_go_server/internal/pkg/cron"
	"github.com/sakib/jobhive_go_server/internal/pkg/email"
	"github.com/sakib/jobhive_go_server/internal/pkg/gateway"
	"github.com/sakib/jobhive_go_server/internal/pkg/pubsub"
	"github.com/sakib/jobhive_go_server/internal/plan"
	"github.com/sakib/jobhive_go_server/internal/repository"
	"github.com/sakib/jobhive_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 月度配额的基准时区
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %s: %v", cfg.Server.Timezone, err)
	}

	// 初始化 Repository
	usageRepo := repository.NewUsageRepository(db)
	tranRepo := repository.NewTransactionRepository(db)

	// 套餐限额表，启动时构建一次后只读
	catalog := plan.Default()

	// 支付网关客户端，出站签名和回调验签共用同一把密钥
	signer := gateway.NewHMACSigner(cfg.Gateway.SecretKey)
	gw := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		StoreID:   cfg.Gateway.StoreID,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
	}, signer)

	// 事件发布与邮件通知
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)
	emailService := email.NewService(&cfg.Email)
	go runNotifier(subscriber, emailService)

	// 初始化 Service
	entitlementService := service.NewEntitlementService(usageRepo, tranRepo, catalog, loc)
	paymentService := service.NewPaymentService(tranRepo, gw, publisher, cfg)

	// 进程内续费定时任务（外部 cron 触发 HTTP 接口时关掉）
	if cfg.Renewal.EnableCron {
		cronService := cron.NewService(paymentService)
		cronService.Start()
		defer cronService.Stop()
	}

	// 初始化 Handler
	paymentHandler := handler.NewPaymentHandler(paymentService, signer)
	entitlementHandler := handler.NewEntitlementHandler(entitlementService)
	renewalHandler := handler.NewRenewalHandler(paymentService)

	// 初始化 Router
	router := api.NewRouter(
		paymentHandler,
		entitlementHandler,
		renewalHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runNotifier 消费交易事件并发送通知邮件，尽力而为
func runNotifier(subscriber *pubsub.Subscriber, emailService *email.Service) {
	ctx := context.Background()
	err := subscriber.Subscribe(ctx, func(msg *pubsub.PaymentMessage) {
		if msg.CusEmail == "" {
			return
		}

		var err error
		switch msg.Type {
		case pubsub.EventPaymentComplete:
			err = emailService.SendPaymentReceipt(msg.CusEmail, msg.TranID, msg.Plan, msg.Amount, msg.Currency)
		case pubsub.EventPaymentFailed:
			err = emailService.SendPaymentFailed(msg.CusEmail, msg.TranID)
		case pubsub.EventRenewalPending:
			err = emailService.SendRenewalNotice(msg.CusEmail, msg.TranID, msg.Plan)
		default:
			return
		}
		if err != nil {
			log.Printf("Failed to send %s email for %s: %v", msg.Type, msg.TranID, err)
		}
	})
	if err != nil {
		log.Printf("Payment event subscriber stopped: %v", err)
	}
}
