package service

import "github.com/ananas-next/internal/models"

// ProductImageView 商品图片展示结构
type ProductImageView struct {
	ID           uint   `json:"id"`
	ImageURL     string `json:"image_url"`
	IsMain       bool   `json:"is_main"`
	DisplayOrder int    `json:"display_order"`
}

// ProductView 商品展示结构（含折后价）
type ProductView struct {
	ID                 uint               `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Price              models.Money       `json:"price"`
	DiscountPercentage int                `json:"discount_percentage"`
	EffectivePrice     models.Money       `json:"effective_price"`
	ImageURL           string             `json:"image_url"`
	Status             string             `json:"status"`
	Style              string             `json:"style"`
	Line               string             `json:"line"`
	CategoryID         uint               `json:"category_id"`
	Category           string             `json:"category"`
	StockQuantity      int                `json:"stock_quantity"`
	IsActive           bool               `json:"is_active"`
	Version            uint               `json:"version"`
	Images             []ProductImageView `json:"images"`
}

// NewProductView 将商品模型映射为展示结构
func NewProductView(product *models.Product) ProductView {
	if product == nil {
		return ProductView{}
	}
	images := make([]ProductImageView, 0, len(product.Images))
	for _, image := range product.Images {
		images = append(images, ProductImageView{
			ID:           image.ID,
			ImageURL:     image.ImageURL,
			IsMain:       image.IsMain,
			DisplayOrder: image.DisplayOrder,
		})
	}
	return ProductView{
		ID:                 product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Price:              product.Price,
		DiscountPercentage: product.DiscountPercentage,
		EffectivePrice:     product.EffectivePrice(),
		ImageURL:           product.MainImage(),
		Status:             product.Status,
		Style:              product.Style,
		Line:               product.Line,
		CategoryID:         product.CategoryID,
		Category:           product.Category.Name,
		StockQuantity:      product.StockQuantity,
		IsActive:           product.IsActive,
		Version:            product.Version,
		Images:             images,
	}
}

// NewProductViews 批量映射
func NewProductViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, NewProductView(&products[i]))
	}
	return views
}
