package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/repository"

	"gorm.io/gorm"
)

// CartItemView 购物车项展示结构
type CartItemView struct {
	ID          uint         `json:"id"`
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	ImageURL    string       `json:"image_url"`
	Quantity    int          `json:"quantity"`
	UnitPrice   models.Money `json:"unit_price"`
	Subtotal    models.Money `json:"subtotal"`
	InStock     bool         `json:"in_stock"`
}

// CartView 购物车展示结构
type CartView struct {
	ID            uint           `json:"id"`
	Items         []CartItemView `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	TotalAmount   models.Money   `json:"total_amount"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewCartView 将购物车聚合映射为展示结构
func NewCartView(cart *models.Cart) CartView {
	if cart == nil {
		return CartView{Items: []CartItemView{}, TotalAmount: models.NewMoneyFromInt(0)}
	}
	items := make([]CartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		view := CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			view.ProductName = item.Product.Name
			view.ImageURL = item.Product.MainImage()
			view.InStock = item.Product.StockQuantity >= item.Quantity
		}
		items = append(items, view)
	}
	return CartView{
		ID:            cart.ID,
		Items:         items,
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalAmount(),
		UpdatedAt:     cart.UpdatedAt,
	}
}

// CartService 购物车服务（用户 ID 始终显式传入）
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// GetOrCreate 获取用户购物车，不存在时创建空购物车
func (s *CartService) GetOrCreate(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	cart, err := getOrCreateCart(s.cartRepo, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return cart, nil
}

// AddItem 加入购物车：已有商品累加数量且保留原单价快照，新商品按当前折后价快照
func (s *CartService) AddItem(userID, productID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if quantity < 1 {
		verr := &ValidationError{}
		verr.Add("quantity", "must be at least 1")
		return nil, verr
	}
	if quantity > constants.CartItemMaxQuantity {
		return nil, quantityLimitError()
	}

	// 购物车行在事务外创建：并发首次创建时唯一约束冲突不会中止加购事务
	cart, err := getOrCreateCart(s.cartRepo, userID)
	if err != nil {
		return nil, storageError(err)
	}

	var result *models.CartItem
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		product, err := productRepo.GetByID(productID)
		if err != nil {
			return storageError(err)
		}
		if product == nil || !product.IsActive {
			return ErrProductNotFound
		}
		now := s.now()

		item, err := cartRepo.GetItem(cart.ID, product.ID)
		if err != nil {
			return storageError(err)
		}
		if item != nil {
			if item.Quantity > constants.CartItemMaxQuantity-quantity {
				return quantityLimitError()
			}
			item.Quantity += quantity
			if err := cartRepo.UpdateItemQuantity(item.ID, item.Quantity); err != nil {
				return storageError(err)
			}
		} else {
			item = &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  quantity,
				UnitPrice: product.EffectivePrice(),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := cartRepo.CreateItem(item); err != nil {
				return storageError(err)
			}
		}
		if err := cartRepo.Touch(cart.ID, now); err != nil {
			return storageError(err)
		}
		item.Product = product
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateQuantity 修改数量，数量小于等于 0 时删除该项
func (s *CartService) UpdateQuantity(userID, itemID uint, quantity int) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if quantity > constants.CartItemMaxQuantity {
		return quantityLimitError()
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return storageError(err)
	}
	if cart == nil {
		return ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetItemByID(cart.ID, itemID)
	if err != nil {
		return storageError(err)
	}
	if item == nil {
		return ErrCartItemNotFound
	}

	if quantity <= 0 {
		if _, err := s.cartRepo.DeleteItem(cart.ID, item.ID); err != nil {
			return storageError(err)
		}
	} else if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return storageError(err)
	}
	if err := s.cartRepo.Touch(cart.ID, s.now()); err != nil {
		return storageError(err)
	}
	return nil
}

// RemoveItem 删除购物车项，不存在时视为成功
func (s *CartService) RemoveItem(userID, itemID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return storageError(err)
	}
	if cart == nil {
		return nil
	}
	affected, err := s.cartRepo.DeleteItem(cart.ID, itemID)
	if err != nil {
		return storageError(err)
	}
	if affected > 0 {
		if err := s.cartRepo.Touch(cart.ID, s.now()); err != nil {
			return storageError(err)
		}
	}
	return nil
}

// Count 购物车商品总件数
func (s *CartService) Count(userID uint) (int, error) {
	if userID == 0 {
		return 0, nil
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return 0, storageError(err)
	}
	if cart == nil {
		return 0, nil
	}
	return cart.TotalQuantity(), nil
}

func quantityLimitError() error {
	verr := &ValidationError{}
	verr.Add("quantity", fmt.Sprintf("must not exceed %d", constants.CartItemMaxQuantity))
	return verr
}

// getOrCreateCart 读取或创建购物车；并发首次创建冲突时回读
func getOrCreateCart(repo repository.CartRepository, userID uint) (*models.Cart, error) {
	cart, err := repo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{UserID: userID}
	createErr := repo.Create(cart)
	if createErr == nil {
		cart.Items = []models.CartItem{}
		return cart, nil
	}
	existing, err := repo.GetByUser(userID)
	if err != nil {
		return nil, errors.Join(createErr, err)
	}
	if existing == nil {
		return nil, createErr
	}
	return existing, nil
}
