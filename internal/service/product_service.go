package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/repository"

	"gorm.io/gorm"
)

const (
	maxProductNameLength      = 200
	maxProductAttributeLength = 50
)

// ProductService 后台商品管理服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cartRepo     repository.CartRepository
	uploads      *UploadService
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, cartRepo repository.CartRepository, uploads *UploadService) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		uploads:      uploads,
	}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID         uint
	Name               string
	Description        string
	Price              string
	DiscountPercentage int
	StockQuantity      int
	IsActive           *bool
	Status             string
	Style              string
	Line               string
	// Version 客户端读取时的版本号，为 0 时使用服务端当前版本
	Version uint
}

// ProductImageChanges 商品图片变更
type ProductImageChanges struct {
	MainImage        *multipart.FileHeader
	AdditionalImages []*multipart.FileHeader
	// ImagesToDelete 待删除图片，支持图片 ID 或图片地址
	ImagesToDelete []string
}

// AdminProductListInput 后台商品列表筛选
type AdminProductListInput struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	OrderBy    string
}

// ListAdmin 后台商品列表（包含未上架商品）
func (s *ProductService) ListAdmin(input AdminProductListInput) ([]ProductView, int64, error) {
	page, pageSize := normalizePage(input.Page, input.PageSize)
	products, total, err := s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: input.CategoryID,
		Search:     input.Search,
		OrderBy:    input.OrderBy,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return NewProductViews(products), total, nil
}

// GetAdmin 后台商品详情
func (s *ProductService) GetAdmin(id uint) (*ProductView, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError(err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	view := NewProductView(product)
	return &view, nil
}

// Create 创建商品，首张上传图片作为主图
func (s *ProductService) Create(ctx context.Context, input ProductInput, images ProductImageChanges) (*ProductView, error) {
	product := &models.Product{}
	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}
	if input.IsActive == nil {
		product.IsActive = true
	}

	uploaded, err := s.saveImages(images.MainImage, images.AdditionalImages)
	if err != nil {
		return nil, err
	}
	order := 0
	if uploaded.main != "" {
		product.ImageURL = uploaded.main
		product.Images = append(product.Images, models.ProductImage{
			ImageURL:     uploaded.main,
			IsMain:       true,
			DisplayOrder: order,
		})
		order++
	}
	for _, url := range uploaded.additional {
		product.Images = append(product.Images, models.ProductImage{
			ImageURL:     url,
			DisplayOrder: order,
		})
		order++
	}

	if err := s.repo.Create(product); err != nil {
		s.discardUploads(uploaded)
		return nil, storageError(err)
	}
	invalidateCatalogCache(ctx)
	return s.GetAdmin(product.ID)
}

// Update 更新商品：替换主图、追加附图、删除指定图片，版本号不一致时返回 ErrConcurrencyConflict
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput, images ProductImageChanges) (*ProductView, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError(err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	expectedVersion := product.Version
	if input.Version != 0 {
		if input.Version != product.Version {
			return nil, ErrConcurrencyConflict
		}
		expectedVersion = input.Version
	}
	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}
	deleteIDs := resolveImageIDs(product.Images, images.ImagesToDelete)

	uploaded, err := s.saveImages(images.MainImage, images.AdditionalImages)
	if err != nil {
		return nil, err
	}

	var obsolete []string
	oldMain := product.ImageURL
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if uploaded.main != "" {
			product.ImageURL = uploaded.main
		} else if deletesMainImage(product, deleteIDs) {
			product.ImageURL = ""
		}
		affected, err := repo.UpdateWithVersion(product, expectedVersion)
		if err != nil {
			return err
		}
		if affected == 0 {
			exists, err := repo.Exists(product.ID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrProductNotFound
			}
			return ErrConcurrencyConflict
		}

		if uploaded.main != "" {
			mainIDs := make([]uint, 0, 1)
			for _, image := range product.Images {
				if image.IsMain {
					mainIDs = append(mainIDs, image.ID)
				}
			}
			removed, err := repo.DeleteImages(product.ID, mainIDs)
			if err != nil {
				return err
			}
			for _, image := range removed {
				obsolete = append(obsolete, image.ImageURL)
			}
			if oldMain != "" && !containsString(obsolete, oldMain) {
				obsolete = append(obsolete, oldMain)
			}
			if err := repo.AddImages([]models.ProductImage{{
				ProductID:    product.ID,
				ImageURL:     uploaded.main,
				IsMain:       true,
				DisplayOrder: 0,
			}}); err != nil {
				return err
			}
		}

		if len(uploaded.additional) > 0 {
			maxOrder, err := repo.MaxImageDisplayOrder(product.ID)
			if err != nil {
				return err
			}
			additions := make([]models.ProductImage, 0, len(uploaded.additional))
			for i, url := range uploaded.additional {
				additions = append(additions, models.ProductImage{
					ProductID:    product.ID,
					ImageURL:     url,
					DisplayOrder: maxOrder + 1 + i,
				})
			}
			if err := repo.AddImages(additions); err != nil {
				return err
			}
		}

		if len(deleteIDs) > 0 {
			removed, err := repo.DeleteImages(product.ID, deleteIDs)
			if err != nil {
				return err
			}
			for _, image := range removed {
				obsolete = append(obsolete, image.ImageURL)
			}
		}
		return nil
	})
	if err != nil {
		s.discardUploads(uploaded)
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrConcurrencyConflict) {
			return nil, err
		}
		logger.Errorw("product_update_failed", "product_id", id, "error", err)
		return nil, storageError(err)
	}

	s.deleteFiles(obsolete)
	invalidateCatalogCache(ctx)
	return s.GetAdmin(product.ID)
}

// Delete 删除商品及其图片记录、购物车项，提交后删除已存储文件
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return storageError(err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	var removed []models.ProductImage
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		images, err := repo.DeleteAllImages(product.ID)
		if err != nil {
			return err
		}
		removed = images
		if s.cartRepo != nil {
			if err := s.cartRepo.WithTx(tx).DeleteItemsByProduct(product.ID); err != nil {
				return err
			}
		}
		return repo.Delete(product.ID)
	})
	if err != nil {
		return storageError(err)
	}

	files := make([]string, 0, len(removed)+1)
	if product.ImageURL != "" {
		files = append(files, product.ImageURL)
	}
	for _, image := range removed {
		if !containsString(files, image.ImageURL) {
			files = append(files, image.ImageURL)
		}
	}
	s.deleteFiles(files)
	invalidateCatalogCache(ctx)
	return nil
}

// SeedSample 写入示例分类与 Urbas 系列示例鞋款，已存在的同名记录会跳过
func (s *ProductService) SeedSample(ctx context.Context) (int, error) {
	categoryIDs := make(map[string]uint, len(sampleCategories))
	for i, name := range sampleCategories {
		category, err := s.categoryRepo.GetByName(name)
		if err != nil {
			return 0, storageError(err)
		}
		if category == nil {
			category = &models.Category{
				Name:      name,
				Slug:      Slugify(name),
				SortOrder: len(sampleCategories) - i,
			}
			if err := s.categoryRepo.Create(category); err != nil {
				return 0, storageError(err)
			}
		}
		categoryIDs[name] = category.ID
	}

	shoesID := categoryIDs[sampleCategories[0]]
	created := 0
	for _, sample := range sampleProducts {
		existing, _, err := s.repo.List(repository.ProductListFilter{
			Page:       1,
			PageSize:   constants.MaxPageSize,
			CategoryID: shoesID,
			Search:     sample.Name,
		})
		if err != nil {
			return created, storageError(err)
		}
		if containsProductName(existing, sample.Name) {
			continue
		}
		product := &models.Product{
			CategoryID:         shoesID,
			Name:               sample.Name,
			Description:        sample.Name,
			Price:              models.NewMoneyFromInt(sample.Price),
			DiscountPercentage: sample.Discount,
			ImageURL:           sample.ImageURL,
			StockQuantity:      10,
			IsActive:           true,
			Status:             sample.Status,
			Style:              sample.Style,
			Line:               "Urbas",
		}
		if err := s.repo.Create(product); err != nil {
			return created, storageError(err)
		}
		created++
	}
	if created > 0 {
		invalidateCatalogCache(ctx)
	}
	return created, nil
}

func (s *ProductService) applyInput(product *models.Product, input ProductInput) error {
	verr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verr.Add("name", "required")
	case len([]rune(name)) > maxProductNameLength:
		verr.Add("name", fmt.Sprintf("must be at most %d characters", maxProductNameLength))
	}

	rawPrice := strings.TrimSpace(input.Price)
	price, err := models.ParseMoney(rawPrice)
	switch {
	case rawPrice == "":
		verr.Add("price", "required")
	case err != nil:
		verr.Add("price", "must be a number")
	case price.IsNegative():
		verr.Add("price", "must not be negative")
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		verr.Add("discount_percentage", "must be between 0 and 100")
	}
	if input.StockQuantity < 0 {
		verr.Add("stock_quantity", "must not be negative")
	}

	attributes := map[string]string{
		"status": strings.TrimSpace(input.Status),
		"style":  strings.TrimSpace(input.Style),
		"line":   strings.TrimSpace(input.Line),
	}
	for field, value := range attributes {
		if len([]rune(value)) > maxProductAttributeLength {
			verr.Add(field, fmt.Sprintf("must be at most %d characters", maxProductAttributeLength))
		}
	}

	if input.CategoryID == 0 {
		verr.Add("category_id", "required")
	} else {
		category, err := s.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return storageError(err)
		}
		if category == nil {
			verr.Add("category_id", "category does not exist")
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	product.CategoryID = input.CategoryID
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.Price = price
	product.DiscountPercentage = input.DiscountPercentage
	product.StockQuantity = input.StockQuantity
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.Status = attributes["status"]
	product.Style = attributes["style"]
	product.Line = attributes["line"]
	return nil
}

type uploadedImages struct {
	main       string
	additional []string
}

func (u uploadedImages) all() []string {
	urls := make([]string, 0, len(u.additional)+1)
	if u.main != "" {
		urls = append(urls, u.main)
	}
	return append(urls, u.additional...)
}

// saveImages 保存上传图片；未指定主图时首张附图作为主图
func (s *ProductService) saveImages(main *multipart.FileHeader, additional []*multipart.FileHeader) (uploadedImages, error) {
	var result uploadedImages
	if s.uploads == nil || (main == nil && len(additional) == 0) {
		return result, nil
	}
	files := make([]*multipart.FileHeader, 0, len(additional)+1)
	if main != nil {
		files = append(files, main)
	}
	for _, file := range additional {
		if file != nil {
			files = append(files, file)
		}
	}
	saved := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.uploads.SaveFile(file, constants.UploadSceneProducts)
		if err != nil {
			s.deleteFiles(saved)
			if errors.Is(err, ErrUploadInvalid) {
				return result, err
			}
			return result, storageError(err)
		}
		saved = append(saved, url)
	}
	if main != nil {
		result.main = saved[0]
		result.additional = saved[1:]
	} else {
		result.additional = saved
	}
	return result, nil
}

func (s *ProductService) discardUploads(uploaded uploadedImages) {
	s.deleteFiles(uploaded.all())
}

func (s *ProductService) deleteFiles(urls []string) {
	if s.uploads == nil {
		return
	}
	s.uploads.DeleteFiles(urls)
}

// resolveImageIDs 将图片 ID 或地址解析为属于该商品的图片 ID
func resolveImageIDs(images []models.ProductImage, refs []string) []uint {
	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		for _, image := range images {
			if image.ImageURL == ref || fmt.Sprintf("%d", image.ID) == ref {
				ids = append(ids, image.ID)
				break
			}
		}
	}
	return ids
}

func deletesMainImage(product *models.Product, ids []uint) bool {
	for _, image := range product.Images {
		for _, id := range ids {
			if image.ID == id && (image.IsMain || image.ImageURL == product.ImageURL) {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func containsProductName(products []models.Product, name string) bool {
	for _, product := range products {
		if product.Name == name {
			return true
		}
	}
	return false
}

var sampleCategories = []string{"Shoes", "Apparel", "Accessories"}

type sampleProduct struct {
	Name     string
	Price    int64
	Discount int
	ImageURL string
	Status   string
	Style    string
}

var sampleProducts = []sampleProduct{
	{Name: "Urbas SC - Mule Foliage", Price: 580000, ImageURL: "/images/products/foliage.jpg", Style: "Mule"},
	{Name: "Urbas SC - Mule Aloe Wash", Price: 350000, Discount: 40, ImageURL: "/images/products/aloe-wash.jpg", Status: constants.ProductStatusSaleOff, Style: "Mule"},
	{Name: "Urbas SC - Mule Dusty Blue", Price: 350000, Discount: 40, ImageURL: "/images/products/dusty-blue.jpg", Status: constants.ProductStatusSaleOff, Style: "Mule"},
	{Name: "Urbas SC - Mule Fair Orchid", Price: 580000, ImageURL: "/images/products/fair-orchid.jpg", Style: "Mule"},
	{Name: "Urbas SC - Mule Cornsilk", Price: 580000, ImageURL: "/images/products/cornsilk.jpg", Style: "Mule"},
	{Name: "Urbas SC - Mule Cosmic", Price: 580000, ImageURL: "/images/products/cosmic.jpg", Status: constants.ProductStatusOnlineOnly, Style: "Mule"},
	{Name: "Urbas SC - High Top Foliage", Price: 650000, ImageURL: "/images/products/foliage.jpg", Style: "High Top"},
	{Name: "Urbas SC - High Top Dusty Blue", Price: 350000, Discount: 46, ImageURL: "/images/products/dusty-blue.jpg", Status: constants.ProductStatusSaleOff, Style: "High Top"},
	{Name: "Urbas SC - High Top Fair Orchid", Price: 650000, ImageURL: "/images/products/fair-orchid.jpg", Style: "High Top"},
	{Name: "Urbas SC - High Top Aloe Wash", Price: 350000, Discount: 46, ImageURL: "/images/products/aloe-wash.jpg", Status: constants.ProductStatusSaleOff, Style: "High Top"},
	{Name: "Urbas SC - High Top Cornsilk", Price: 650000, ImageURL: "/images/products/cornsilk.jpg", Style: "High Top"},
	{Name: "Urbas SC - High Top Cosmic", Price: 650000, ImageURL: "/images/products/cosmic.jpg", Status: constants.ProductStatusOnlineOnly, Style: "High Top"},
}
