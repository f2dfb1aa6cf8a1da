package service

import (
	"context"
	"strings"

	"github.com/ananas-next/internal/cache"
	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogFilterInput 商品筛选输入（价格为原始字符串，由服务层校验）
type CatalogFilterInput struct {
	Category string
	Status   string
	Style    string
	Line     string
	PriceMin string
	PriceMax string
	Search   string
	OrderBy  string
	Page     int
	PageSize int
}

// CatalogService 商品目录服务
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Filter 按分类名、状态、款式、产品线与价格区间筛选商品，忽略上架状态
func (s *CatalogService) Filter(input CatalogFilterInput) ([]ProductView, int64, error) {
	priceMin, priceMax, err := parsePriceRange(input.PriceMin, input.PriceMax)
	if err != nil {
		return nil, 0, err
	}
	page, pageSize := normalizePage(input.Page, input.PageSize)
	products, total, err := s.productRepo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryName: input.Category,
		Status:       input.Status,
		Style:        input.Style,
		Line:         input.Line,
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		Search:       input.Search,
		OrderBy:      input.OrderBy,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return NewProductViews(products), total, nil
}

// FilterOptions 获取全部筛选项，优先读取缓存
func (s *CatalogService) FilterOptions(ctx context.Context) (*repository.ProductFilterOptions, error) {
	var cached repository.ProductFilterOptions
	hit, err := cache.GetCatalogFilterOptions(ctx, &cached)
	if err != nil {
		logger.Warnw("catalog_filter_options_cache_read_failed", "error", err)
	}
	if hit {
		return &cached, nil
	}

	options, err := s.productRepo.FilterOptions()
	if err != nil {
		return nil, storageError(err)
	}
	normalizeFilterOptions(options)
	if err := cache.SetCatalogFilterOptions(ctx, options); err != nil {
		logger.Warnw("catalog_filter_options_cache_write_failed", "error", err)
	}
	return options, nil
}

// GetDetail 获取商品详情（图片按展示顺序）
func (s *CatalogService) GetDetail(id uint) (*ProductView, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, storageError(err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	view := NewProductView(product)
	return &view, nil
}

// ListByCategory 获取分类下已上架商品
func (s *CatalogService) ListByCategory(categoryID uint, page, pageSize int) ([]ProductView, int64, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, 0, storageError(err)
	}
	if category == nil {
		return nil, 0, ErrCategoryNotFound
	}
	page, pageSize = normalizePage(page, pageSize)
	products, total, err := s.productRepo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: category.ID,
		OnlyActive: true,
		OrderBy:    "name",
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return NewProductViews(products), total, nil
}

func parsePriceRange(rawMin, rawMax string) (*decimal.Decimal, *decimal.Decimal, error) {
	verr := &ValidationError{}
	priceMin := parsePriceBound("price_min", rawMin, verr)
	priceMax := parsePriceBound("price_max", rawMax, verr)
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}
	if priceMin != nil && priceMax != nil && priceMin.GreaterThan(*priceMax) {
		return nil, nil, ErrInvalidPriceRange
	}
	return priceMin, priceMax, nil
}

func parsePriceBound(field, raw string, verr *ValidationError) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "must be a number")
		return nil
	}
	if value.IsNegative() {
		verr.Add(field, "must not be negative")
		return nil
	}
	return &value
}

func normalizeFilterOptions(options *repository.ProductFilterOptions) {
	if options == nil {
		return
	}
	if options.Categories == nil {
		options.Categories = []string{}
	}
	if options.Statuses == nil {
		options.Statuses = []string{}
	}
	if options.Styles == nil {
		options.Styles = []string{}
	}
	if options.Lines == nil {
		options.Lines = []string{}
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}

func invalidateCatalogCache(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cache.InvalidateCatalogFilterOptions(ctx); err != nil {
		logger.Warnw("catalog_filter_options_cache_invalidate_failed", "error", err)
	}
}
