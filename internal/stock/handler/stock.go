package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"retalia-system/internal/stock"
)

const (
	STOCK_CACHE_PREFIX   = "stock:"
	PRODUCTS_CACHE_KEY   = "stock:products:"
	LOCATIONS_CACHE_KEY  = "stock:locations:"
	CATALOG_CACHE_PREFIX = "stock:catalog:"
	PREVIEW_CACHE_PREFIX = "stock:preview:"
	CACHE_TTL_SHORT      = 1 * time.Minute
	CACHE_TTL_MEDIUM     = 30 * time.Minute
)

// StockHandler fronts the stock engine with the redis cache: catalog reads
// are cached per product, resolve previews per selection, and a committed
// batch invalidates the previews it made stale.
type StockHandler struct {
	service *stock.Service
	redis   *redis.Client
}

func NewStockHandler(service *stock.Service, redisClient *redis.Client) *StockHandler {
	return &StockHandler{
		service: service,
		redis:   redisClient,
	}
}

func (h *StockHandler) Products(ctx context.Context, userID int64) ([]stock.ProductRef, error) {
	cacheKey := fmt.Sprintf("%s%d", PRODUCTS_CACHE_KEY, userID)

	var cached []stock.ProductRef
	if h.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	products, err := h.service.Products(ctx, userID)
	if err != nil {
		return nil, err
	}

	h.cacheSet(ctx, cacheKey, products, CACHE_TTL_MEDIUM)
	return products, nil
}

func (h *StockHandler) Locations(ctx context.Context, userID int64) ([]stock.LocationRef, error) {
	cacheKey := fmt.Sprintf("%s%d", LOCATIONS_CACHE_KEY, userID)

	var cached []stock.LocationRef
	if h.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	locations, err := h.service.Locations(ctx, userID)
	if err != nil {
		return nil, err
	}

	h.cacheSet(ctx, cacheKey, locations, CACHE_TTL_MEDIUM)
	return locations, nil
}

func (h *StockHandler) Catalog(ctx context.Context, userID, productID int64) ([]stock.Attribute, error) {
	cacheKey := fmt.Sprintf("%s%d:%d", CATALOG_CACHE_PREFIX, userID, productID)

	var cached []stock.Attribute
	if h.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	attrs, err := h.service.Catalog(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	h.cacheSet(ctx, cacheKey, attrs, CACHE_TTL_MEDIUM)
	return attrs, nil
}

func (h *StockHandler) Preview(ctx context.Context, in stock.PreviewInput) (stock.PreviewResult, error) {
	cacheKey := previewKey(in.UserID, in.ProductID, in.LocationID, in.OptionIDs)

	var cached stock.PreviewResult
	if h.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	result, err := h.service.Preview(ctx, in)
	if err != nil {
		return stock.PreviewResult{}, err
	}

	h.cacheSet(ctx, cacheKey, result, CACHE_TTL_SHORT)
	return result, nil
}

// SubmitBatch delegates to the engine and then drops the preview key for
// each submitted row's selection. Previews at other locations go stale
// too, but the short TTL bounds that window.
func (h *StockHandler) SubmitBatch(ctx context.Context, in stock.BatchInput) (stock.BatchReport, error) {
	report, err := h.service.SubmitBatch(ctx, in)
	if err != nil {
		return report, err
	}

	if h.redis != nil {
		for _, row := range in.Rows {
			_ = h.redis.Del(ctx, previewKey(in.UserID, in.ProductID, in.LocationID, row.OptionIDs)).Err()
		}
	}

	return report, nil
}

func previewKey(userID, productID, locationID int64, optionIDs []int64) string {
	return fmt.Sprintf("%s%d:%d:%d:%s", PREVIEW_CACHE_PREFIX, userID, productID, locationID, stock.OptionSetHash(optionIDs))
}

func (h *StockHandler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if h.redis == nil {
		return false
	}
	raw, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (h *StockHandler) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if h.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = h.redis.Set(ctx, key, raw, ttl).Err()
}
