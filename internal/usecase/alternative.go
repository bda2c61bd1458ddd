package usecase

import (
	"iter"
	"slices"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
)

// NoAlternativeMessage is reported when no healthier product is found
const NoAlternativeMessage = "No healthier brand found"

// SearchTerm derives the category search term: the first comma-separated
// segment of the categories text, lowercased and otherwise untouched.
// Empty means no search.
func SearchTerm(categories string) string {
	first, _, _ := strings.Cut(categories, ",")
	return strings.ToLower(first)
}

// FindAlternative scans candidates in order and returns the first one that is
// healthier than the scanned product, or nil. It stops at the first match.
//
// A candidate qualifies when it has nutriment data, a different code, a brand,
// known sugar and saturated fat, strictly less sugar than the scanned product,
// and less saturated fat unless the scanned product's is unknown.
func FindAlternative(candidates iter.Seq[domain.Product], barcode string, scanned domain.Nutrients) *domain.Alternative {
	if scanned.Sugar == nil {
		return nil
	}

	for p := range candidates {
		if p.Nutriments == nil || p.Code == barcode {
			continue
		}
		brand := strings.TrimSpace(p.Brands)
		if brand == "" {
			continue
		}

		n := openfoodfacts.ExtractNutrients(p.Nutriments)
		if n.Sugar == nil || n.SaturatedFat == nil {
			continue
		}

		if *n.Sugar < *scanned.Sugar &&
			(scanned.SaturatedFat == nil || *n.SaturatedFat < *scanned.SaturatedFat) {
			return &domain.Alternative{
				Code:         p.Code,
				Brand:        brand,
				ProductName:  p.ProductName,
				Sugar:        n.Sugar,
				SaturatedFat: n.SaturatedFat,
			}
		}
	}

	return nil
}

// productsSeq adapts a search result to a lazy candidate sequence
func productsSeq(resp *domain.SearchResponse) iter.Seq[domain.Product] {
	if resp == nil {
		return func(func(domain.Product) bool) {}
	}
	return slices.Values(resp.Products)
}
