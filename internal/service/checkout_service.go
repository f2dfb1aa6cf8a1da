package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/events"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/queue"
	"github.com/ananas-next/internal/repository"

	"gorm.io/gorm"
)

const (
	maxShippingAddressLength = 500
	maxOrderNotesLength      = 500
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\-()\s]{6,20}$`)

// CheckoutInput 结算表单
type CheckoutInput struct {
	ShippingAddress string
	PhoneNumber     string
	Notes           string
}

// CheckoutOptions 结算行为配置
type CheckoutOptions struct {
	// GuardStock 开启后使用条件扣减，库存不足时拒绝下单；默认关闭，库存可被扣为负数
	GuardStock bool
	OrderNoTag string
	Producer   string
}

// CheckoutService 结算服务
type CheckoutService struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
	publisher   events.Publisher
	options     CheckoutOptions
	now         func() time.Time
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, queueClient *queue.Client, publisher events.Publisher, options CheckoutOptions) *CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if strings.TrimSpace(options.OrderNoTag) == "" {
		options.OrderNoTag = "AN"
	}
	return &CheckoutService{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		queueClient: queueClient,
		publisher:   publisher,
		options:     options,
		now:         time.Now,
	}
}

// Preview 结算页数据，空购物车返回 ErrCartEmpty
func (s *CheckoutService) Preview(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, storageError(err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrCartEmpty
	}
	return cart, nil
}

// ProcessOrder 将购物车转换为订单：创建订单与订单项、扣减库存、清空购物车，全部在同一事务内完成
func (s *CheckoutService) ProcessOrder(ctx context.Context, userID uint, input CheckoutInput) (uint, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return 0, storageError(err)
	}
	if cart == nil || cart.IsEmpty() {
		return 0, ErrCartEmpty
	}
	input, err = validateCheckoutInput(input)
	if err != nil {
		return 0, err
	}

	var order *models.Order
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		current, err := cartRepo.GetByUser(userID)
		if err != nil {
			return err
		}
		if current == nil || current.IsEmpty() {
			return ErrCartEmpty
		}

		now := s.now()
		order = &models.Order{
			OrderNo:         generateOrderNo(s.options.OrderNoTag, now),
			UserID:          userID,
			ShippingAddress: input.ShippingAddress,
			PhoneNumber:     input.PhoneNumber,
			Notes:           input.Notes,
			Status:          constants.OrderStatusPending,
			TotalAmount:     current.TotalAmount(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		items := make([]models.OrderItem, 0, len(current.Items))
		for _, cartItem := range current.Items {
			item := models.OrderItem{
				ProductID: cartItem.ProductID,
				UnitPrice: cartItem.UnitPrice,
				Quantity:  cartItem.Quantity,
				CreatedAt: now,
			}
			if cartItem.Product != nil {
				item.ProductName = cartItem.Product.Name
				item.ImageURL = cartItem.Product.MainImage()
			}
			items = append(items, item)
		}
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}

		for _, cartItem := range current.Items {
			if err := s.decrementStock(productRepo, cartItem.ProductID, cartItem.Quantity); err != nil {
				return err
			}
		}

		if err := cartRepo.ClearItems(current.ID); err != nil {
			return err
		}
		return cartRepo.Touch(current.ID, now)
	})
	if err != nil {
		if errors.Is(err, ErrCartEmpty) || errors.Is(err, ErrInsufficientStock) {
			return 0, err
		}
		logger.Errorw("checkout_process_failed", "user_id", userID, "error", err)
		return 0, storageError(err)
	}

	s.afterOrderPlaced(ctx, order)
	return order.ID, nil
}

// decrementStock 扣减库存
// 默认路径为读改写且不校验下限，并发结算同一商品时可能超卖（库存为负），与既有行为一致。
func (s *CheckoutService) decrementStock(productRepo repository.ProductRepository, productID uint, quantity int) error {
	if s.options.GuardStock {
		affected, err := productRepo.DecrementStockIfAvailable(productID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
		return nil
	}
	product, err := productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	return productRepo.SetStock(product.ID, product.StockQuantity-quantity)
}

func (s *CheckoutService) afterOrderPlaced(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderPlaced(queue.OrderPlacedPayload{
			OrderID: order.ID,
			OrderNo: order.OrderNo,
			UserID:  order.UserID,
		}); err != nil {
			logger.Warnw("checkout_enqueue_order_placed_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
		}
	}

	lines := make([]events.OrderItemLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, events.OrderItemLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	env, err := events.NewEnvelope(constants.EventOrderPlaced, s.options.Producer, order.OrderNo, events.OrderPlacedPayload{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.String(),
		Currency:    constants.SiteCurrencyDefault,
		Items:       lines,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, order.OrderNo, env)
	}
	if err != nil {
		logger.Warnw("checkout_publish_order_placed_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

func validateCheckoutInput(input CheckoutInput) (CheckoutInput, error) {
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.Notes = strings.TrimSpace(input.Notes)

	verr := &ValidationError{}
	switch {
	case input.ShippingAddress == "":
		verr.Add("shipping_address", "required")
	case len([]rune(input.ShippingAddress)) > maxShippingAddressLength:
		verr.Add("shipping_address", fmt.Sprintf("must be at most %d characters", maxShippingAddressLength))
	}
	switch {
	case input.PhoneNumber == "":
		verr.Add("phone_number", "required")
	case !phonePattern.MatchString(input.PhoneNumber):
		verr.Add("phone_number", "invalid phone number")
	}
	if len([]rune(input.Notes)) > maxOrderNotesLength {
		verr.Add("notes", fmt.Sprintf("must be at most %d characters", maxOrderNotesLength))
	}
	if err := verr.OrNil(); err != nil {
		return input, err
	}
	return input, nil
}

func generateOrderNo(tag string, now time.Time) string {
	return fmt.Sprintf("%s%s%s", strings.ToUpper(strings.TrimSpace(tag)), now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
