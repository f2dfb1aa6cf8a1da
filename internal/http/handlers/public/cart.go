package public

import (
	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/i18n"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddToCartRequest 加入购物车请求
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartQuantityRequest 修改购物车数量请求
type UpdateCartQuantityRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// RemoveCartItemRequest 移除购物车项请求
type RemoveCartItemRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

// GetCart 获取当前用户购物车
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetOrCreate(userID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	response.Success(c, service.NewCartView(cart))
}

// GetCartCount 购物车商品总件数
func (h *Handler) GetCartCount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.CartService.Count(userID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// AddToCart 加入购物车，数量缺省为 1
func (h *Handler) AddToCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if _, err := h.CartService.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	h.respondCartUpdated(c, userID)
}

// UpdateCartQuantity 修改购物车项数量，数量小于等于 0 时移除
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CartService.UpdateQuantity(userID, req.ItemID, req.Quantity); err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	h.respondCartUpdated(c, userID)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CartService.RemoveItem(userID, req.ItemID); err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	h.respondCartUpdated(c, userID)
}

func (h *Handler) respondCartUpdated(c *gin.Context, userID uint) {
	cart, err := h.CartService.GetOrCreate(userID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules)
		return
	}
	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "message.cart_updated"), service.NewCartView(cart))
}
