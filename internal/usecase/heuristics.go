package usecase

import (
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// Keyword lists are matched as case-insensitive substrings, in this order.
var (
	harmfulKeywords = []string{"aspartame", "msg", "hfcs", "high fructose", "e150d"}
	cautionKeywords = []string{"preservative", "emulsifier", "stabilizer", "artificial", "sweetener"}
)

// SafeIngredientsMessage is reported when no keyword matches
const SafeIngredientsMessage = "No high-risk additives detected"

// Score thresholds and penalties, per 100g
const (
	scoreMax            = 100
	sugarPenaltyAbove   = 8.0
	sugarPenalty        = 40
	fatPenaltyAbove     = 5.0
	fatPenalty          = 30
	fiberPenaltyBelow   = 2.0
	fiberPenalty        = 20
	diabetesRiskSugar   = 15.0
	heartRiskSatFat     = 10.0
	artificialShareCap  = 80
	harmfulShareWeight  = 20
	cautionShareWeight  = 10
	culinaryCountAbove  = 5
	processedCountAbove = 10
	ultraCountAbove     = 15
)

// Health risk notes, in the order they are checked
const (
	RiskDiabetes       = "High diabetes risk"
	RiskHeartDisease   = "Heart disease risk"
	RiskUltraProcessed = "Ultra processed - obesity risk"
	RiskAdditives      = "Contains chemical additives"
)

// ClassifyIngredients matches the fixed keyword lists against an ingredients text.
// Every match is collected in list order, not text order.
func ClassifyIngredients(text string) domain.IngredientAnalysis {
	lower := strings.ToLower(text)

	analysis := domain.IngredientAnalysis{
		Harmful: matchKeywords(lower, harmfulKeywords),
		Caution: matchKeywords(lower, cautionKeywords),
		Safe:    []string{},
	}

	if len(analysis.Harmful) == 0 && len(analysis.Caution) == 0 {
		analysis.Safe = append(analysis.Safe, SafeIngredientsMessage)
	}

	return analysis
}

func matchKeywords(lower string, keywords []string) []string {
	matched := []string{}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Score starts at 100 and subtracts fixed penalties for high sugar, high
// saturated fat and low fiber. Unknown values never trigger a penalty.
func Score(n domain.Nutrients) int {
	score := scoreMax
	if above(n.Sugar, sugarPenaltyAbove) {
		score -= sugarPenalty
	}
	if above(n.SaturatedFat, fatPenaltyAbove) {
		score -= fatPenalty
	}
	if below(n.Fiber, fiberPenaltyBelow) {
		score -= fiberPenalty
	}
	return max(0, score)
}

// CountIngredients counts comma-separated fragments of the raw text.
// Fragments are not trimmed and empty ones count, so a trailing comma adds
// one and an empty text counts as one.
func CountIngredients(text string) int {
	return len(strings.Split(strings.ToLower(text), ","))
}

// ClassifyProcessing escalates from NOVA 1 by ingredient count and keyword
// severity. Conditions are checked from mild to severe and the last one met wins.
func ClassifyProcessing(count int, analysis domain.IngredientAnalysis) domain.ProcessingLevel {
	level := domain.ProcessingUnprocessed
	if count > culinaryCountAbove {
		level = domain.ProcessingCulinary
	}
	if count > processedCountAbove || len(analysis.Caution) > 0 {
		level = domain.ProcessingProcessed
	}
	if count > ultraCountAbove || len(analysis.Harmful) > 0 {
		level = domain.ProcessingUltraProcessed
	}
	return level
}

// ArtificialShare estimates natural and artificial percentages from keyword matches.
// The artificial share is capped at 80.
func ArtificialShare(analysis domain.IngredientAnalysis) (natural, artificial int) {
	artificial = min(artificialShareCap,
		len(analysis.Harmful)*harmfulShareWeight+len(analysis.Caution)*cautionShareWeight)
	return 100 - artificial, artificial
}

// HealthRisks lists advisory notes. Several may apply at once.
func HealthRisks(n domain.Nutrients, level domain.ProcessingLevel, analysis domain.IngredientAnalysis) []string {
	risks := []string{}
	if above(n.Sugar, diabetesRiskSugar) {
		risks = append(risks, RiskDiabetes)
	}
	if above(n.SaturatedFat, heartRiskSatFat) {
		risks = append(risks, RiskHeartDisease)
	}
	if level == domain.ProcessingUltraProcessed {
		risks = append(risks, RiskUltraProcessed)
	}
	if len(analysis.Harmful) > 0 {
		risks = append(risks, RiskAdditives)
	}
	return risks
}

// above reports v > limit; an unknown value is never above.
func above(v *float64, limit float64) bool {
	return v != nil && *v > limit
}

// below reports v < limit; an unknown value is never below.
func below(v *float64, limit float64) bool {
	return v != nil && *v < limit
}
