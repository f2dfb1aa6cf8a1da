package admin

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	handlershared "github.com/ananas-next/internal/http/handlers/shared"
	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/i18n"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
)

const maxProductFormMemory = 32 << 20

// ListProducts 后台商品列表（包含未上架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			categoryID = uint(parsed)
		}
	}

	products, total, err := h.ProductService.ListAdmin(service.AdminProductListInput{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     c.Query("search"),
		OrderBy:    c.Query("order_by"),
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetProduct 后台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_id_invalid")
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品（multipart 表单，可附带主图与附加图片）
func (h *Handler) CreateProduct(c *gin.Context) {
	input, images, ok := bindProductForm(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), input, images)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	requestLog(c).Infow("admin_product_created", "product_id", product.ID, "name", product.Name)
	response.Success(c, product)
}

// UpdateProduct 更新商品，支持替换主图、追加图片与删除图片
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_id_invalid")
	if !ok {
		return
	}
	input, images, ok := bindProductForm(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, input, images)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	requestLog(c).Infow("admin_product_updated", "product_id", product.ID, "version", product.Version)
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_id_invalid")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	requestLog(c).Infow("admin_product_deleted", "product_id", id)
	response.Success(c, nil)
}

// SeedSampleProducts 写入示例商品
func (h *Handler) SeedSampleProducts(c *gin.Context) {
	created, err := h.ProductService.SeedSample(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "message.sample_seeded"), gin.H{"created": created})
}

func bindProductForm(c *gin.Context) (service.ProductInput, service.ProductImageChanges, bool) {
	var input service.ProductInput
	var images service.ProductImageChanges

	if err := c.Request.ParseMultipartForm(maxProductFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return input, images, false
	}

	verr := &service.ValidationError{}
	input.CategoryID = uint(formUint(c, "category_id", verr))
	input.Name = c.PostForm("name")
	input.Description = c.PostForm("description")
	input.Price = c.PostForm("price")
	input.DiscountPercentage = formInt(c, "discount_percentage", verr)
	input.StockQuantity = formInt(c, "stock_quantity", verr)
	input.Status = c.PostForm("status")
	input.Style = c.PostForm("style")
	input.Line = c.PostForm("line")
	input.Version = uint(formUint(c, "version", verr))
	if raw := strings.TrimSpace(c.PostForm("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Add("is_active", "must be a boolean")
		} else {
			input.IsActive = &active
		}
	}
	if err := verr.OrNil(); err != nil {
		handlershared.RespondWithMappedError(c, err, nil, "error.bad_request")
		return input, images, false
	}

	if form := c.Request.MultipartForm; form != nil {
		if files := form.File["main_image"]; len(files) > 0 {
			images.MainImage = files[0]
		}
		images.AdditionalImages = collectFiles(form, "additional_images[]", "additional_images")
	}
	images.ImagesToDelete = collectValues(c, "images_to_delete[]", "images_to_delete")
	return input, images, true
}

func formInt(c *gin.Context, field string, verr *service.ValidationError) int {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(field, "must be an integer")
		return 0
	}
	return value
}

func formUint(c *gin.Context, field string, verr *service.ValidationError) uint64 {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		verr.Add(field, "must be a positive integer")
		return 0
	}
	return value
}

func collectFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	var files []*multipart.FileHeader
	for _, key := range keys {
		files = append(files, form.File[key]...)
	}
	return files
}

func collectValues(c *gin.Context, keys ...string) []string {
	var values []string
	for _, key := range keys {
		for _, value := range c.PostFormArray(key) {
			if value = strings.TrimSpace(value); value != "" {
				values = append(values, value)
			}
		}
	}
	return values
}
