package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/config"
	"github.com/Gopher0727/Himo/internal/app"
	"github.com/Gopher0727/Himo/internal/seeder"
	logger "github.com/Gopher0727/Himo/middleware/log"
)

// seeder 向配置的存储写入演示数据
func main() {
	configPath := flag.String("config", os.Getenv("HIMO_CONFIG"), "path to config.toml")
	users := flag.Int("users", 20, "number of users to register")
	friends := flag.Int("friends", 3, "friend requests per user")
	channels := flag.Int("channels", 4, "number of channels")
	messages := flag.Int("messages", 5, "messages per chat")
	reports := flag.Int("reports", 3, "number of reports")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}
	// Demo data would trip the per-user send limit.
	cfg.RateLimit.Enabled = false

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()

	plan := seeder.Plan{
		Users:           *users,
		FriendsPerUser:  *friends,
		Channels:        *channels,
		MessagesPerChat: *messages,
		Reports:         *reports,
	}
	if err := run(cfg, appLogger, plan, *seed); err != nil {
		appLogger.Error("Seeding failed", zap.Error(err))
		appLogger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *logger.Logger, plan seeder.Plan, seed int64) error {
	ctx := context.Background()
	himo, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer himo.Close()

	_, err = seeder.New(himo.Services, seed, appLogger.Named("seeder")).Run(ctx, plan)
	return err
}
