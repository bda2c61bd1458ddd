package usecase

import (
	"slices"
	"testing"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(code, brand, name string, sugar, fat any) domain.Product {
	nutriments := map[string]any{}
	if sugar != nil {
		nutriments["sugars_100g"] = sugar
	}
	if fat != nil {
		nutriments["saturated-fat_100g"] = fat
	}
	return domain.Product{Code: code, Brands: brand, ProductName: name, Nutriments: nutriments}
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		categories string
		want       string
	}{
		{"", ""},
		{"Beverages", "beverages"},
		{"Spreads, Sweet spreads, Hazelnut spreads", "spreads"},
		{" Snacks ,Chips", " snacks "},
		{"  ,Snacks", "  "},
		{",Snacks", ""},
	}

	for _, tt := range tests {
		t.Run(tt.categories, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchTerm(tt.categories))
		})
	}
}

func TestFindAlternative(t *testing.T) {
	scanned := domain.Nutrients{Sugar: f(20), SaturatedFat: f(5)}

	t.Run("first match wins over a better later one", func(t *testing.T) {
		products := []domain.Product{
			candidate("2", "Brand A", "Slightly better", 19.0, 4.0),
			candidate("3", "Brand B", "Much better", 1.0, 0.5),
		}

		alt := FindAlternative(slices.Values(products), "1", scanned)

		require.NotNil(t, alt)
		assert.Equal(t, "2", alt.Code)
		assert.Equal(t, "Brand A - Slightly better", alt.Label())
	})

	t.Run("skips ineligible candidates", func(t *testing.T) {
		products := []domain.Product{
			{Code: "2", Brands: "No Nutriments", ProductName: "x"},
			candidate("1", "Same Barcode", "x", 1.0, 1.0),
			candidate("4", "", "No brand", 1.0, 1.0),
			candidate("5", "Unknown Sugar", "x", nil, 1.0),
			candidate("6", "Unknown Fat", "x", 1.0, nil),
			candidate("7", "Equal Sugar", "x", 20.0, 1.0),
			candidate("8", "Higher Fat", "x", 1.0, 6.0),
			candidate("9", "Good", "Choice", "3.5", "1"),
		}

		alt := FindAlternative(slices.Values(products), "1", scanned)

		require.NotNil(t, alt)
		assert.Equal(t, "9", alt.Code)
		assert.Equal(t, 3.5, *alt.Sugar)
		assert.Equal(t, 1.0, *alt.SaturatedFat)
	})

	t.Run("unknown scanned fat only needs lower sugar", func(t *testing.T) {
		products := []domain.Product{candidate("2", "Brand", "Name", 5.0, 50.0)}

		alt := FindAlternative(slices.Values(products), "1", domain.Nutrients{Sugar: f(10)})

		require.NotNil(t, alt)
		assert.Equal(t, "2", alt.Code)
	})

	t.Run("unknown scanned sugar never matches", func(t *testing.T) {
		products := []domain.Product{candidate("2", "Brand", "Name", 0.0, 0.0)}

		alt := FindAlternative(slices.Values(products), "1", domain.Nutrients{SaturatedFat: f(10)})

		assert.Nil(t, alt)
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, FindAlternative(slices.Values([]domain.Product{}), "1", scanned))
		assert.Nil(t, FindAlternative(productsSeq(nil), "1", scanned))
	})

	t.Run("stops pulling after the first match", func(t *testing.T) {
		pulled := 0
		seq := func(yield func(domain.Product) bool) {
			for _, p := range []domain.Product{
				candidate("2", "A", "a", 1.0, 1.0),
				candidate("3", "B", "b", 1.0, 1.0),
				candidate("4", "C", "c", 1.0, 1.0),
			} {
				pulled++
				if !yield(p) {
					return
				}
			}
		}

		alt := FindAlternative(seq, "1", scanned)

		require.NotNil(t, alt)
		assert.Equal(t, 1, pulled)
	})
}
