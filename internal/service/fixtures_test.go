package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ananas-next/internal/events"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db           *gorm.DB
	productRepo  *repository.GormProductRepository
	categoryRepo *repository.GormCategoryRepository
	cartRepo     *repository.GormCartRepository
	orderRepo    *repository.GormOrderRepository
	userRepo     *repository.GormUserRepository
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return &serviceFixture{
		db:           db,
		productRepo:  repository.NewProductRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		cartRepo:     repository.NewCartRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		userRepo:     repository.NewUserRepository(db),
	}
}

func (f *serviceFixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: Slugify(name)}
	if err := f.db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

type productSeed struct {
	ID       uint
	Category uint
	Name     string
	Price    string
	Discount int
	Stock    int
	Inactive bool
	Status   string
	Style    string
	Line     string
}

func (f *serviceFixture) product(t *testing.T, seed productSeed) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                 seed.ID,
		CategoryID:         seed.Category,
		Name:               seed.Name,
		Price:              models.NewMoneyFromDecimal(decimal.RequireFromString(seed.Price)),
		DiscountPercentage: seed.Discount,
		StockQuantity:      seed.Stock,
		IsActive:           !seed.Inactive,
		Status:             seed.Status,
		Style:              seed.Style,
		Line:               seed.Line,
	}
	if err := f.productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (f *serviceFixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	product, err := f.productRepo.GetByID(productID)
	if err != nil || product == nil {
		t.Fatalf("load product %d failed: %v", productID, err)
	}
	return product.StockQuantity
}

func (f *serviceFixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, env)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, 0, len(p.events))
	for _, env := range p.events {
		result = append(result, env.EventType)
	}
	return result
}
