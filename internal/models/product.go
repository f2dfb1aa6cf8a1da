package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID         uint           `gorm:"not null;index" json:"category_id"`                         // 分类ID
	Name               string         `gorm:"type:varchar(200);not null" json:"name"`                    // 商品名称
	Description        string         `gorm:"type:text" json:"description"`                              // 商品描述
	Price              Money          `gorm:"type:decimal(20,2);not null;default:0;index" json:"price"`  // 原价
	DiscountPercentage int            `gorm:"not null;default:0" json:"discount_percentage"`             // 折扣百分比（0-100）
	ImageURL           string         `gorm:"type:varchar(500)" json:"image_url"`                        // 主图地址
	StockQuantity      int            `gorm:"not null;default:0" json:"stock_quantity"`                  // 库存数量
	IsActive           bool           `gorm:"not null;default:false;index" json:"is_active"`            // 是否上架
	Status             string         `gorm:"type:varchar(50);index;default:''" json:"status"`           // 销售状态（Sale off / Online Only）
	Style              string         `gorm:"type:varchar(50);index;default:''" json:"style"`            // 款式（Mule / High Top）
	Line               string         `gorm:"type:varchar(50);index;default:''" json:"line"`             // 产品线（Urbas / Vintas）
	Version            uint           `gorm:"not null;default:1" json:"version"`                         // 乐观锁版本号
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Category Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Images   []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`    // 图片列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// EffectivePrice 折后价，仅用于计算不落库
func (p Product) EffectivePrice() Money {
	percent := p.DiscountPercentage
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	remain := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return NewMoneyFromDecimal(p.Price.Decimal.Mul(remain))
}

// MainImage 返回主图，缺省时回退到 ImageURL
func (p Product) MainImage() string {
	for _, image := range p.Images {
		if image.IsMain {
			return image.ImageURL
		}
	}
	return p.ImageURL
}

// ProductImage 商品图片表
type ProductImage struct {
	ID           uint      `gorm:"primarykey" json:"id"`                         // 主键
	ProductID    uint      `gorm:"not null;index" json:"product_id"`             // 商品ID
	ImageURL     string    `gorm:"type:varchar(500);not null" json:"image_url"`  // 图片地址
	IsMain       bool      `gorm:"not null;default:false" json:"is_main"`        // 是否主图
	DisplayOrder int       `gorm:"not null;default:0;index" json:"display_order"` // 展示顺序
	CreatedAt    time.Time `json:"created_at"`                                   // 创建时间
}

// TableName 指定表名
func (ProductImage) TableName() string {
	return "product_images"
}
