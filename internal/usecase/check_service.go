package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
)

// Placeholders used when the product record leaves a field empty
const (
	DefaultProductName = "Food Item"
	DefaultIngredients = "Ingredients not available"
)

// DefaultSearchPageSize is how many category search results are scanned for an alternative
const DefaultSearchPageSize = 20

// CheckServiceConfig holds configuration for the check service
type CheckServiceConfig struct {
	SearchPageSize int
	// IsolateAlternativeErrors keeps the report when the category search
	// fails, instead of failing the whole check.
	IsolateAlternativeErrors bool
	CacheTTL                 time.Duration
}

// CheckService builds a nutrition report for a barcode
type CheckService struct {
	client                   domain.FoodFactsClient
	cache                    domain.CacheRepository
	searchPageSize           int
	isolateAlternativeErrors bool
	cacheTTL                 time.Duration
}

// NewCheckService creates a check service. cache may be nil to disable product caching.
func NewCheckService(
	client domain.FoodFactsClient,
	cache domain.CacheRepository,
	config CheckServiceConfig,
) *CheckService {
	pageSize := config.SearchPageSize
	if pageSize <= 0 {
		pageSize = DefaultSearchPageSize
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &CheckService{
		client:                   client,
		cache:                    cache,
		searchPageSize:           pageSize,
		isolateAlternativeErrors: config.IsolateAlternativeErrors,
		cacheTTL:                 cacheTTL,
	}
}

// Check looks up a barcode and returns its nutrition report.
// Flow: fetch product -> heuristics -> category search for an alternative -> report.
// The category search always runs after the product fetch, never alongside it.
func (s *CheckService) Check(ctx context.Context, barcode string) (*domain.Report, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	product, err := s.getProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	nutrients := openfoodfacts.ExtractNutrients(product.Nutriments)

	analysis := ClassifyIngredients(product.IngredientsText)
	count := CountIngredients(product.IngredientsText)
	level := ClassifyProcessing(count, analysis)
	natural, artificial := ArtificialShare(analysis)

	report := &domain.Report{
		ProductName:        valueOr(product.ProductName, DefaultProductName),
		Barcode:            barcode,
		Nutrients:          nutrients,
		Score:              Score(nutrients),
		NovaGroup:          level,
		IngredientCount:    count,
		NaturalPercent:     natural,
		ArtificialPercent:  artificial,
		HealthRisks:        HealthRisks(nutrients, level, analysis),
		AlternativeBrand:   NoAlternativeMessage,
		Ingredients:        valueOr(product.IngredientsText, DefaultIngredients),
		IngredientAnalysis: analysis,
	}

	alt, err := s.findAlternative(ctx, barcode, product.Categories, nutrients)
	if err != nil {
		if !s.isolateAlternativeErrors {
			return nil, err
		}
		log.Printf("[Check] Alternative search failed for %q, returning report without it: %v", barcode, err)
	}
	if alt != nil {
		report.Alternative = alt
		report.AlternativeBrand = alt.Label()
	}

	return report, nil
}

// findAlternative searches the product's first category for a healthier product.
// No search is made when the category is empty.
func (s *CheckService) findAlternative(
	ctx context.Context,
	barcode, categories string,
	nutrients domain.Nutrients,
) (*domain.Alternative, error) {
	term := SearchTerm(categories)
	if term == "" {
		return nil, nil
	}

	results, err := s.client.SearchProducts(ctx, term, s.searchPageSize)
	if err != nil {
		return nil, fmt.Errorf("alternative search for %q: %w", term, err)
	}

	return FindAlternative(productsSeq(results), barcode, nutrients), nil
}

// getProduct fetches a product, consulting the cache first when one is configured
func (s *CheckService) getProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	if s.cache == nil {
		return s.client.GetProduct(ctx, barcode)
	}

	key := productCacheKey(barcode)
	if cached, err := s.getFromCache(ctx, key); err == nil {
		return cached, nil
	}

	product, err := s.client.GetProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, product, s.cacheTTL); err != nil {
		log.Printf("[Check] Failed to cache product %q: %v", barcode, err)
	}

	return product, nil
}

// getFromCache decodes a cached product. Values are stored JSON-encoded.
func (s *CheckService) getFromCache(ctx context.Context, key string) (*domain.Product, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	raw, ok := value.(json.RawMessage)
	if !ok {
		return nil, domain.ErrCacheMiss
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, errors.Join(domain.ErrCacheMiss, err)
	}
	return &product, nil
}

// productCacheKey format: "product:{barcode}"
func productCacheKey(barcode string) string {
	return "product:" + barcode
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
