package cache

import (
	"context"
	"time"

	"github.com/ananas-next/internal/constants"
)

const catalogFilterOptionsTTL = constants.CacheTTLCatalogFilterOptsS * time.Second

// GetCatalogFilterOptions 读取缓存的商品筛选项
func GetCatalogFilterOptions(ctx context.Context, dest interface{}) (bool, error) {
	return GetJSON(ctx, constants.CacheKeyCatalogFilterOpts, dest)
}

// SetCatalogFilterOptions 写入商品筛选项缓存
func SetCatalogFilterOptions(ctx context.Context, value interface{}) error {
	return SetJSON(ctx, constants.CacheKeyCatalogFilterOpts, value, catalogFilterOptionsTTL)
}

// InvalidateCatalogFilterOptions 商品或分类变更后清除筛选项缓存
func InvalidateCatalogFilterOptions(ctx context.Context) error {
	return Del(ctx, constants.CacheKeyCatalogFilterOpts)
}
