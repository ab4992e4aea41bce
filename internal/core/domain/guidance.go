package domain

// GuidanceRecord is a per-condition guidance entry from the reference
// data store.
type GuidanceRecord struct {
	Overview         string   `json:"overview"`
	RecommendedFoods []string `json:"recommended_foods"`
	FoodsToLimit     []string `json:"foods_to_limit"`
	Lifestyle        []string `json:"lifestyle"`
}

// NutrientAdvice is a rule-derived nutrient recommendation, optionally
// enriched with ranked foods from the food-composition service.
type NutrientAdvice struct {
	Key           string       `json:"key"`
	Priority      float64      `json:"priority"`
	WhyNeeded     string       `json:"why_needed"`
	Foods         []string     `json:"foods"`
	AbsorptionTip string       `json:"absorption_tip"`
	AvoidWith     string       `json:"avoid_with"`
	TopFoods      []FoodAmount `json:"top_foods"`
}

// MappedGuidance is the rule-based guidance assembled from the static
// reference tables for the reconciled condition set.
type MappedGuidance struct {
	MatchedGuidance   map[string]GuidanceRecord `json:"matched_guidance"`
	GeneralGuidance   GuidanceRecord            `json:"general_guidance"`
	Nutrients         []NutrientAdvice          `json:"nutrients"`
	SafetyNotes       []string                  `json:"safety_notes"`
	UnknownConditions []string                  `json:"unknown_conditions"`
}
