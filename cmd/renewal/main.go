package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sakib/jobhive_go_server/config"
	"github.com/sakib/jobhive_go_server/internal/database"
	"github.com/sakib/jobhive_go_server/internal/pkg/pubsub"
	"github.com/sakib/jobhive_go_server/internal/repository"
	"github.com/sakib/jobhive_go_server/internal/service"
)

var (
	dryRun  = flag.Bool("dry-run", false, "List due subscriptions without creating renewal transactions")
	timeout = flag.Int("timeout", 600, "Seconds before the batch is cancelled")
)

func main() {
	flag.Parse()

	log.Println("🔄 Starting renewal batch...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	tranRepo := repository.NewTransactionRepository(db)

	if *dryRun {
		listDue(tranRepo)
		return
	}

	// Redis 连不上就不发事件，批处理本身照跑
	var publisher *pubsub.Publisher
	if rdb, err := database.NewRedis(&cfg.Redis); err != nil {
		log.Printf("⚠️  Redis unavailable, events will be skipped: %v", err)
	} else {
		publisher = pubsub.NewPublisher(rdb)
	}

	// 续费不触网关，网关客户端留空
	paymentService := service.NewPaymentService(tranRepo, nil, publisher, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	result, err := paymentService.RenewDue(ctx)
	if err != nil {
		log.Fatalf("Renewal batch failed: %v", err)
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Renewal Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Processed: %d", result.Processed)
	for _, item := range result.Renewals {
		log.Printf("  - user %d: %s -> %s (%s, %.2f %s)",
			item.UserID, item.SourceTran, item.TranID, item.Plan,
			item.Amount, item.Currency)
	}
	log.Println("\n✅ Renewal batch completed!")
	log.Println(strings.Repeat("=", 60))
}

// listDue 只读列出到期待续费的订阅
func listDue(tranRepo *repository.TransactionRepository) {
	due, err := tranRepo.ListRenewable(time.Now())
	if err != nil {
		log.Fatalf("Failed to list due subscriptions: %v", err)
	}

	log.Printf("Found %d due subscriptions", len(due))
	for _, tran := range due {
		expired := ""
		if tran.ExpiresAt != nil {
			expired = tran.ExpiresAt.Format("2006-01-02")
		}
		log.Printf("  - user %d: %s (%s, expired %s)",
			tran.UserID, tran.TranID, tran.Plan, expired)
	}
	log.Println("\n⚠️  DRY RUN MODE - No renewal transactions were created")
	log.Println("   Run with -dry-run=false to create them")
}
