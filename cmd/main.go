package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/config"
	"github.com/Gopher0727/Himo/internal/app"
	"github.com/Gopher0727/Himo/internal/store"
	logger "github.com/Gopher0727/Himo/middleware/log"
)

func main() {
	configPath := flag.String("config", os.Getenv("HIMO_CONFIG"), "path to config.toml (defaults are used when empty)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()

	ctx := logger.WithTraceID(context.Background(), "")

	// 打开存储并加载（首次启动时写入种子数据）
	himo, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.ErrorContext(ctx, "Failed to start", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		os.Exit(1)
	}
	defer himo.Close()

	fields := []zap.Field{zap.String("driver", cfg.Storage.Driver)}
	_ = himo.Store.View(func(c *store.Collections) error {
		for _, key := range store.Keys {
			fields = append(fields, zap.Int(key, c.Len(key)))
		}
		return nil
	})
	appLogger.InfoContext(ctx, "Himo store ready", fields...)
}
