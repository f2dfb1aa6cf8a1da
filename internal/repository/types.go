package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductListFilter 查询商品列表的过滤条件
// 各维度均可选，多个条件之间为 AND 关系
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	CategoryName string
	Status       string
	Style        string
	Line         string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Search       string
	OnlyActive   bool
	OrderBy      string
}

// ProductFilterOptions 商品筛选项（去重后的可选值）
type ProductFilterOptions struct {
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
	Styles     []string `json:"styles"`
	Lines      []string `json:"lines"`
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StockChange 库存变更
type StockChange struct {
	ProductID uint
	Quantity  int
}
