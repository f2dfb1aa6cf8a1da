package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                        // 主键
	OrderNo         string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_no"`       // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id"`                               // 用户ID
	ShippingAddress string         `gorm:"type:varchar(500);not null" json:"shipping_address"`          // 收货地址
	PhoneNumber     string         `gorm:"type:varchar(32);not null" json:"phone_number"`               // 联系电话
	Notes           string         `gorm:"type:varchar(500)" json:"notes"`                              // 订单备注
	Status          string         `gorm:"type:varchar(20);index;not null" json:"status"`               // 订单状态
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 订单总额
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
