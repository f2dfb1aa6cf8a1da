package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项表，下单后不再变更
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`          // 商品名称快照
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url"`                      // 商品主图快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 成交单价
	Quantity    int       `gorm:"not null" json:"quantity"`                                // 数量
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 小计
func (i OrderItem) Subtotal() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
