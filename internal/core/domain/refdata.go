package domain

// NutrientInfo is the static metadata for one nutrient from the
// reference data store.
type NutrientInfo struct {
	WhyNeeded     string   `json:"why_needed"`
	Foods         []string `json:"foods"`
	AbsorptionTip string   `json:"absorption_tip"`
	AvoidWith     string   `json:"avoid_with"`
}

// NutrientRef links a condition to a recommended nutrient with a
// relative priority in [0,1].
type NutrientRef struct {
	Key      string  `json:"key"`
	Priority float64 `json:"priority"`
}

// ConditionNutrients lists the nutrients recommended for a condition.
type ConditionNutrients struct {
	Nutrients []NutrientRef `json:"nutrients"`
}
