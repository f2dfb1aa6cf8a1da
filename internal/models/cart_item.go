package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车（每个用户一条，首次访问时创建）
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`    // 用户ID
	CreatedAt time.Time `json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                // 最后修改时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// TotalAmount 购物车总额，按加购时的价格快照累加
func (c Cart) TotalAmount() Money {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal().Decimal)
	}
	return NewMoneyFromDecimal(total)
}

// TotalQuantity 购物车商品总件数
func (c Cart) TotalQuantity() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty 是否为空购物车
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                         // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`         // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`      // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                     // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // 加购时的折后单价快照
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                      // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal 小计
func (i CartItem) Subtotal() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
