package main

import (
	"context"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/repository"
	"github.com/ananas-next/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	productRepo := repository.NewProductRepository(models.DB)
	categoryRepo := repository.NewCategoryRepository(models.DB)
	cartRepo := repository.NewCartRepository(models.DB)
	products := service.NewProductService(productRepo, categoryRepo, cartRepo, service.NewUploadService(&cfg.Upload))

	created, err := products.SeedSample(context.Background())
	if err != nil {
		stdLog.Fatalf("Failed to seed sample products: %v", err)
	}
	stdLog.Printf("Seed completed, %d products created", created)
}
