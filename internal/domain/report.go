package domain

import "fmt"

// ProcessingLevel is a coarse NOVA-like processing classification from 1 to 4
type ProcessingLevel int

const (
	ProcessingUnprocessed ProcessingLevel = iota + 1
	ProcessingCulinary
	ProcessingProcessed
	ProcessingUltraProcessed
)

// String renders the level the way clients display it, e.g. "NOVA 4"
func (l ProcessingLevel) String() string {
	return fmt.Sprintf("NOVA %d", int(l))
}

// MarshalText encodes the level as its display string
func (l ProcessingLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// IngredientAnalysis holds the keywords matched in an ingredients list.
// Slices are never nil so they encode as [] rather than null.
type IngredientAnalysis struct {
	Harmful []string `json:"harmful"`
	Caution []string `json:"caution"`
	Safe    []string `json:"safe"`
}

// Alternative is a product from the same category judged healthier than the scanned one
type Alternative struct {
	Code         string   `json:"code"`
	Brand        string   `json:"brand"`
	ProductName  string   `json:"productName"`
	Sugar        *float64 `json:"sugar"`
	SaturatedFat *float64 `json:"fat"`
}

// Label returns the "<brand> - <name>" form shown to users
func (a *Alternative) Label() string {
	return fmt.Sprintf("%s - %s", a.Brand, a.ProductName)
}

// Report is the nutrition summary returned for a scanned barcode
type Report struct {
	ProductName string `json:"productName"`
	Barcode     string `json:"barcode"`
	Nutrients
	Score              int                `json:"score"`
	NovaGroup          ProcessingLevel    `json:"novaGroup"`
	IngredientCount    int                `json:"ingredientCount"`
	NaturalPercent     int                `json:"naturalPercent"`
	ArtificialPercent  int                `json:"artificialPercent"`
	HealthRisks        []string           `json:"healthRisks"`
	AlternativeBrand   string             `json:"alternativeBrand"`
	Alternative        *Alternative       `json:"alternative,omitempty"`
	Ingredients        string             `json:"ingredients"`
	IngredientAnalysis IngredientAnalysis `json:"ingredientAnalysis"`
}
