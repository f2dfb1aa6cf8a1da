package repository

import (
	"errors"
	"sort"
	"strings"

	"github.com/ananas-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	FilterOptions() (*ProductFilterOptions, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	UpdateWithVersion(product *models.Product, expectedVersion uint) (int64, error)
	Delete(id uint) error
	Exists(id uint) (bool, error)
	CountByCategory(categoryID uint) (int64, error)
	SetStock(productID uint, stock int) error
	DecrementStockIfAvailable(productID uint, quantity int) (int64, error)
	ListImages(productID uint) ([]models.ProductImage, error)
	AddImages(images []models.ProductImage) error
	DeleteImages(productID uint, imageIDs []uint) ([]models.ProductImage, error)
	DeleteAllImages(productID uint) ([]models.ProductImage, error)
	MaxImageDisplayOrder(productID uint) (int, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

// List 商品列表（分类名、状态、款式、产品线忽略大小写，价格区间按原价闭区间）
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})

	if filter.OnlyActive {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("products.category_id = ?", filter.CategoryID)
	}
	if name := strings.TrimSpace(filter.CategoryName); name != "" {
		sub := r.db.Model(&models.Category{}).Select("id").Where(caseInsensitiveEqual("name"), name)
		query = query.Where("products.category_id IN (?)", sub)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where(caseInsensitiveEqual("products.status"), status)
	}
	if style := strings.TrimSpace(filter.Style); style != "" {
		query = query.Where(caseInsensitiveEqual("products.style"), style)
	}
	if line := strings.TrimSpace(filter.Line); line != "" {
		query = query.Where(caseInsensitiveEqual("products.line"), line)
	}
	if filter.PriceMin != nil {
		query = query.Where("products.price >= ?", filter.PriceMin.RoundCeil(2))
	}
	if filter.PriceMax != nil {
		query = query.Where("products.price <= ?", filter.PriceMax.RoundFloor(2))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"products.name", "products.description"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Images", preloadImages).
		Order(resolveProductOrder(filter.OrderBy)).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func resolveProductOrder(orderBy string) string {
	switch strings.ToLower(strings.TrimSpace(orderBy)) {
	case "price_asc":
		return "products.price ASC, products.id ASC"
	case "price_desc":
		return "products.price DESC, products.id ASC"
	case "name":
		return "products.name ASC, products.id ASC"
	default:
		return "products.created_at DESC, products.id DESC"
	}
}

// FilterOptions 获取全部去重后的筛选项（与当前筛选条件无关）
func (r *GormProductRepository) FilterOptions() (*ProductFilterOptions, error) {
	options := &ProductFilterOptions{}

	if err := r.db.Model(&models.Category{}).
		Order("sort_order DESC, name ASC").
		Pluck("name", &options.Categories).Error; err != nil {
		return nil, err
	}

	columns := []struct {
		column string
		target *[]string
	}{
		{column: "status", target: &options.Statuses},
		{column: "style", target: &options.Styles},
		{column: "line", target: &options.Lines},
	}
	for _, item := range columns {
		var values []string
		if err := r.db.Model(&models.Product{}).
			Distinct(item.column).
			Where(item.column+" <> ''").
			Pluck(item.column, &values).Error; err != nil {
			return nil, err
		}
		sort.Strings(values)
		*item.target = values
	}
	return options, nil
}

// GetByID 根据 ID 获取商品（含分类与图片）
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").
		Preload("Images", preloadImages).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品（图片随关联一并写入）
func (r *GormProductRepository) Create(product *models.Product) error {
	if product.Version == 0 {
		product.Version = 1
	}
	return r.db.Omit("Category").Create(product).Error
}

// UpdateWithVersion 按版本号更新商品基础字段，返回影响行数（0 表示版本冲突或商品不存在）
func (r *GormProductRepository) UpdateWithVersion(product *models.Product, expectedVersion uint) (int64, error) {
	if product == nil || product.ID == 0 {
		return 0, errors.New("invalid product update params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]interface{}{
			"category_id":         product.CategoryID,
			"name":                product.Name,
			"description":         product.Description,
			"price":               product.Price,
			"discount_percentage": product.DiscountPercentage,
			"image_url":           product.ImageURL,
			"stock_quantity":      product.StockQuantity,
			"is_active":           product.IsActive,
			"status":              product.Status,
			"style":               product.Style,
			"line":                product.Line,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		product.Version = expectedVersion + 1
	}
	return result.RowsAffected, nil
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// Exists 判断商品是否存在
func (r *GormProductRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategory 统计分类下商品数量
func (r *GormProductRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SetStock 直接写入库存值（读改写由调用方完成，不做下限校验）
func (r *GormProductRepository) SetStock(productID uint, stock int) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", stock).Error
}

// DecrementStockIfAvailable 条件扣减库存，库存不足时影响行数为 0
func (r *GormProductRepository) DecrementStockIfAvailable(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListImages 获取商品图片
func (r *GormProductRepository) ListImages(productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	if err := preloadImages(r.db.Where("product_id = ?", productID)).Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// AddImages 批量新增商品图片
func (r *GormProductRepository) AddImages(images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.Create(&images).Error
}

// DeleteImages 删除指定图片并返回被删除的记录（不属于该商品的 ID 会被忽略）
func (r *GormProductRepository) DeleteImages(productID uint, imageIDs []uint) ([]models.ProductImage, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}
	var images []models.ProductImage
	if err := r.db.Where("product_id = ? AND id IN ?", productID, imageIDs).Find(&images).Error; err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return images, nil
	}
	ids := make([]uint, 0, len(images))
	for _, image := range images {
		ids = append(ids, image.ID)
	}
	if err := r.db.Where("id IN ?", ids).Delete(&models.ProductImage{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteAllImages 删除商品全部图片并返回被删除的记录
func (r *GormProductRepository) DeleteAllImages(productID uint) ([]models.ProductImage, error) {
	images, err := r.ListImages(productID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return images, nil
	}
	if err := r.db.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// MaxImageDisplayOrder 获取当前最大展示顺序，无图片时返回 -1
func (r *GormProductRepository) MaxImageDisplayOrder(productID uint) (int, error) {
	var maxOrder *int
	if err := r.db.Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("MAX(display_order)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return -1, nil
	}
	return *maxOrder, nil
}
