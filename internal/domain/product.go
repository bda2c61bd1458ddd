package domain

// Product represents a product record from the Open Food Facts API
type Product struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	Categories      string         `json:"categories"`
	IngredientsText string         `json:"ingredients_text"`
	Nutriments      map[string]any `json:"nutriments"`
}

// ProductResponse represents the response of the product-by-barcode endpoint.
// A nil Product means the barcode is unknown.
type ProductResponse struct {
	Code          string   `json:"code"`
	Status        int      `json:"status"`
	StatusVerbose string   `json:"status_verbose"`
	Product       *Product `json:"product"`
}

// SearchResponse represents the response of the free-text search endpoint
type SearchResponse struct {
	Count    int       `json:"count"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Products []Product `json:"products"`
}

// Nutrients holds the per-100g figures used by the heuristics.
// A nil field means the product carries no data for it, which is not the same as 0.
type Nutrients struct {
	Sugar        *float64 `json:"sugar"`
	SaturatedFat *float64 `json:"fat"`
	Fiber        *float64 `json:"fiber"`
	Energy       *float64 `json:"energy"` // kcal
	Salt         *float64 `json:"salt"`
}
