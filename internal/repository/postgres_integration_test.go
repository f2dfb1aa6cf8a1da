//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/ananas-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.CartItem{},
		&models.Cart{},
		&models.ProductImage{},
		&models.Product{},
		&models.Category{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCatalogFilter(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{Name: "Shoes", Slug: "pg-shoes"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	rows := []models.Product{
		{CategoryID: category.ID, Name: "Urbas SC - Mule Aloe Wash", Price: models.NewMoneyFromInt(350000), DiscountPercentage: 40, Status: "Sale off", Style: "Mule", Line: "Urbas", StockQuantity: 10},
		{CategoryID: category.ID, Name: "Urbas SC - High Top Cosmic", Price: models.NewMoneyFromInt(650000), Status: "Online Only", Style: "High Top", Line: "Urbas", StockQuantity: 10, IsActive: true},
	}
	for i := range rows {
		if err := productRepo.Create(&rows[i]); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	priceMax := decimal.NewFromInt(400000)
	products, total, err := productRepo.List(ProductListFilter{
		CategoryName: "SHOES",
		Status:       "sale OFF",
		PriceMax:     &priceMax,
	})
	if err != nil {
		t.Fatalf("product list filter failed: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("product list filter want 1 got total=%d len=%d", total, len(products))
	}

	products, total, err = productRepo.List(ProductListFilter{Search: "cosmic"})
	if err != nil {
		t.Fatalf("product list search failed: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("product list search want 1 got total=%d len=%d", total, len(products))
	}

	options, err := productRepo.FilterOptions()
	if err != nil {
		t.Fatalf("filter options failed: %v", err)
	}
	if len(options.Styles) != 2 || len(options.Lines) != 1 {
		t.Fatalf("unexpected filter options: %+v", options)
	}
}

func TestPostgresOrderStockRace(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	productRepo := NewProductRepository(db)

	category := &models.Category{Name: "Shoes", Slug: "pg-race"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{CategoryID: category.ID, Name: "Race", Price: models.NewMoneyFromInt(100), StockQuantity: 1}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if err := productRepo.SetStock(product.ID, -1); err != nil {
		t.Fatalf("set negative stock failed: %v", err)
	}
	affected, err := productRepo.DecrementStockIfAvailable(product.ID, 1)
	if err != nil {
		t.Fatalf("guarded decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("guarded decrement should reject negative stock")
	}
}
