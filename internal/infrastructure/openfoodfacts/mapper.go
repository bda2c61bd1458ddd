package openfoodfacts

import (
	"math"
	"strconv"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// Nutriment keys per 100g. OFF documents the hyphenated spelling; the
// underscore variants show up in older exports and are accepted as fallbacks.
var (
	keysSugar        = []string{"sugars_100g"}
	keysSaturatedFat = []string{"saturated-fat_100g", "saturated_fat_100g"}
	keysFiber        = []string{"fiber_100g"}
	keysEnergy       = []string{"energy-kcal_100g", "energy_kcal_100g"}
	keysSalt         = []string{"salt_100g"}
)

// ExtractNutrients pulls the per-100g figures out of an OFF nutriments map.
// Missing or unparseable values stay nil.
func ExtractNutrients(nutriments map[string]any) domain.Nutrients {
	return domain.Nutrients{
		Sugar:        FindNutriment(nutriments, keysSugar...),
		SaturatedFat: FindNutriment(nutriments, keysSaturatedFat...),
		Fiber:        FindNutriment(nutriments, keysFiber...),
		Energy:       FindNutriment(nutriments, keysEnergy...),
		Salt:         FindNutriment(nutriments, keysSalt...),
	}
}

// FindNutriment returns the value of the first key present, or nil
func FindNutriment(nutriments map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := extractFloat(nutriments, key); ok {
			return &v
		}
	}
	return nil
}

// extractFloat coerces a nutriments value to float64. OFF serves most values
// as JSON numbers but some as numeric strings.
func extractFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
