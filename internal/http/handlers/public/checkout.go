package public

import (
	"errors"
	"strconv"

	handlershared "github.com/ananas-next/internal/http/handlers/shared"
	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/i18n"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
)

const cartRedirectPath = "/cart"

// CheckoutRequest 提交订单请求
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PhoneNumber     string `json:"phone_number"`
	Notes           string `json:"notes"`
}

// GetCheckout 结算页数据；购物车为空时返回跳转提示而非错误
func (h *Handler) GetCheckout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CheckoutService.Preview(userID)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			respondCartEmpty(c)
			return
		}
		respondWithMappedError(c, err, checkoutErrorRules)
		return
	}
	response.Success(c, gin.H{
		"cart_empty": false,
		"cart":       service.NewCartView(cart),
	})
}

// ProcessCheckout 将购物车转换为订单
func (h *Handler) ProcessCheckout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	orderID, err := h.CheckoutService.ProcessOrder(c.Request.Context(), userID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			respondCartEmpty(c)
			return
		}
		respondWithMappedError(c, err, checkoutErrorRules)
		return
	}

	requestLog(c).Infow("checkout_order_placed", "user_id", userID, "order_id", orderID)
	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "message.order_placed"), gin.H{
		"order_id": orderID,
		"redirect": "/checkout/confirmation?order_id=" + strconv.FormatUint(uint64(orderID), 10),
	})
}

// GetConfirmation 下单确认页，仅订单所属用户可见
func (h *Handler) GetConfirmation(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintQuery(c, "order_id", "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.GetConfirmation(userID, orderID)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules)
		return
	}
	response.Success(c, order)
}

// ListOrders 当前用户订单历史
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	orders, total, err := h.OrderService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

func respondCartEmpty(c *gin.Context) {
	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "error.cart_empty"), gin.H{
		"cart_empty": true,
		"redirect":   cartRedirectPath,
	})
}
