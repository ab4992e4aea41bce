package driven

import "github.com/custodia-labs/reportlens/internal/core/domain"

// ReferenceStore provides the static condition/nutrient tables.
// Tables are loaded once; a missing file degrades to an empty table.
type ReferenceStore interface {
	// Conditions returns per-condition guidance records.
	Conditions() map[string]domain.GuidanceRecord

	// Nutrients returns nutrient metadata keyed by nutrient key.
	Nutrients() map[string]domain.NutrientInfo

	// ConditionNutrients returns condition→nutrient recommendations.
	ConditionNutrients() map[string]domain.ConditionNutrients
}
