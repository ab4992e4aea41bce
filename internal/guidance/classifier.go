// Package guidance assembles the live nutrition guidance payload:
// category classification, topical query construction, bounded-time
// trusted-source fetches, nutrient mention extraction and food ranking
// against the food-composition service.
package guidance

import (
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// Guidance categories, ordered by priority. The category only selects
// a query template; it encodes no dietary rules itself.
const (
	CategoryInjuryBone      = "injury_bone"
	CategoryKidney          = "kidney"
	CategoryMetabolic       = "metabolic_diabetes"
	CategoryBloodAnemia     = "blood_anemia"
	CategoryCardioBP        = "cardio_bp"
	CategoryInfectionImmune = "infection_immune"
	CategoryGI              = "gi"
	CategoryGeneral         = "general"
)

// categoryPriority picks the strongest category when several match.
var categoryPriority = []string{
	CategoryInjuryBone,
	CategoryKidney,
	CategoryMetabolic,
	CategoryBloodAnemia,
	CategoryCardioBP,
	CategoryInfectionImmune,
	CategoryGI,
	CategoryGeneral,
}

// categoryCues maps a category to substrings searched in the concept's
// name. First matching category in this order wins per concept.
var categoryCues = []struct {
	category string
	cues     []string
}{
	{CategoryInjuryBone, []string{"injury", "fracture", "wound", "trauma", "bone", "musculoskeletal"}},
	{CategoryMetabolic, []string{"diabetes", "hyperglyc", "metabolic", "endocrine"}},
	{CategoryBloodAnemia, []string{"anemia", "hemoglobin", "blood", "hematologic", "haematologic"}},
	{CategoryCardioBP, []string{"hypertension", "blood pressure", "cardio", "vascular"}},
	{CategoryKidney, []string{"kidney", "renal", "ckd", "neph"}},
	{CategoryGI, []string{"gastr", "ulcer", "reflux", "stomach", "gastro"}},
	{CategoryInfectionImmune, []string{"infection", "viral", "bacterial", "sinusitis", "immune"}},
}

// classify assigns a category to a lowercased concept name or
// condition string. Synonyms are deliberately excluded: a hypertension
// concept routinely carries a "high blood pressure" synonym whose
// "blood" substring would misroute it to the anemia category.
func classify(text string) string {
	for _, row := range categoryCues {
		for _, cue := range row.cues {
			if strings.Contains(text, cue) {
				return row.category
			}
		}
	}
	return CategoryGeneral
}

// PickCategory classifies each terminology concept by name (or, absent
// any, each condition string) and returns the highest-priority category
// that matched, defaulting to general.
func PickCategory(conditions []string, concepts []domain.TerminologyConcept) string {
	cats := make(map[string]struct{})

	for _, c := range concepts {
		cats[classify(strings.ToLower(c.Name))] = struct{}{}
	}
	if len(cats) == 0 {
		for _, cond := range conditions {
			cats[classify(strings.ToLower(cond))] = struct{}{}
		}
	}

	for _, p := range categoryPriority {
		if _, ok := cats[p]; ok {
			return p
		}
	}
	return CategoryGeneral
}

// BuildQuery combines the base condition terms with the category's
// topic phrase to form the trusted-source search query.
func BuildQuery(category string, baseTerms []string) string {
	base := "health"
	if len(baseTerms) > 0 {
		base = strings.Join(baseTerms, " ")
	}

	switch category {
	case CategoryInjuryBone:
		return base + " fracture bone healing diet nutrition"
	case CategoryMetabolic:
		return base + " diabetes diet nutrition carbs fiber glycemic"
	case CategoryBloodAnemia:
		return base + " anemia diet nutrition iron folate b12"
	case CategoryCardioBP:
		return base + " hypertension diet nutrition low sodium potassium dash"
	case CategoryKidney:
		return base + " kidney disease diet nutrition sodium potassium phosphorus"
	case CategoryGI:
		return base + " gastritis diet nutrition foods to eat avoid"
	case CategoryInfectionImmune:
		return base + " infection immune support diet nutrition protein vitamin"
	default:
		return base + " diet nutrition vitamins minerals food"
	}
}
