package public

import (
	handlershared "github.com/ananas-next/internal/http/handlers/shared"
	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品筛选列表
// 支持 category/status/style/line（忽略大小写）、price_min/price_max（闭区间）与 search。
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	products, total, err := h.CatalogService.Filter(service.CatalogFilterInput{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Style:    c.Query("style"),
		Line:     c.Query("line"),
		PriceMin: c.Query("price_min"),
		PriceMax: c.Query("price_max"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("order_by"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetFilterOptions 获取筛选项（分类、状态、款式、产品线的去重值）
func (h *Handler) GetFilterOptions(c *gin.Context) {
	options, err := h.CatalogService.FilterOptions(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules)
		return
	}
	response.Success(c, options)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "error.product_id_invalid")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetDetail(id)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules)
		return
	}
	response.Success(c, product)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules)
		return
	}
	response.Success(c, categories)
}

// ListCategoryProducts 分类下的上架商品
func (h *Handler) ListCategoryProducts(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "error.category_id_invalid")
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	products, total, err := h.CatalogService.ListByCategory(id, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}
