package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FoodFactsClient defines the interface for interacting with the Open Food Facts API
type FoodFactsClient interface {
	GetProduct(ctx context.Context, barcode string) (*Product, error)
	SearchProducts(ctx context.Context, term string, pageSize int) (*SearchResponse, error)
}
