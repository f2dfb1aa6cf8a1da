package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/repository"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// CategoryService 分类业务服务
type CategoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryService {
	return &CategoryService{repo: repo, productRepo: productRepo}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	SortOrder   int
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	categories, err := s.repo.List()
	if err != nil {
		return nil, storageError(err)
	}
	return categories, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	name, slug, err := s.validate(input, 0)
	if err != nil {
		return nil, err
	}
	category := models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, storageError(err)
	}
	invalidateCatalogCache(ctx)
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(ctx context.Context, id uint, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError(err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	name, slug, err := s.validate(input, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(input.Description)
	category.SortOrder = input.SortOrder
	if err := s.repo.Update(category); err != nil {
		return nil, storageError(err)
	}
	invalidateCatalogCache(ctx)
	return category, nil
}

// Delete 删除分类，仍有商品引用时拒绝
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return storageError(err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.productRepo.CountByCategory(id)
	if err != nil {
		return storageError(err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return storageError(err)
	}
	invalidateCatalogCache(ctx)
	return nil
}

func (s *CategoryService) validate(input CreateCategoryInput, excludeID uint) (string, string, error) {
	name := strings.TrimSpace(input.Name)
	verr := &ValidationError{}
	if name == "" {
		verr.Add("name", "required")
	} else if len([]rune(name)) > 100 {
		verr.Add("name", "must be at most 100 characters")
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" && name != "" {
		verr.Add("slug", "required")
	}
	if err := verr.OrNil(); err != nil {
		return "", "", err
	}

	count, err := s.repo.CountByName(name, excludeID)
	if err != nil {
		return "", "", storageError(err)
	}
	if count > 0 {
		return "", "", ErrCategoryExists
	}
	count, err = s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return "", "", storageError(err)
	}
	if count > 0 {
		return "", "", ErrCategoryExists
	}
	return name, slug, nil
}

// Slugify 生成 URL 友好的标识
func Slugify(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = slugInvalidChars.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}
