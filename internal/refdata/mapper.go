package refdata

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/guidance"
	"github.com/custodia-labs/reportlens/internal/logger"
	"github.com/custodia-labs/reportlens/internal/reconcile"
)

const (
	// enrichFoodCap bounds per-nutrient food-composition lookups.
	enrichFoodCap = 8

	// topFoodsKeep is the enriched food list cap.
	topFoodsKeep = 5

	// defaultPriority is assumed when a mapping omits one.
	defaultPriority = 0.6
)

// defaultGuidance is returned alongside matched records so the response
// always carries actionable content.
var defaultGuidance = domain.GuidanceRecord{
	Overview: "General diet and lifestyle guidance. For personalized nutrition advice, consult a clinician/dietitian.",
	RecommendedFoods: []string{
		"Vegetables (leafy greens)",
		"Fruits (whole fruits)",
		"Whole grains",
		"Legumes (dal/beans)",
		"Nuts and seeds (moderation)",
		"Adequate water (unless fluid restriction advised)",
	},
	FoodsToLimit: []string{
		"Sugary drinks",
		"Ultra-processed snacks",
		"Excess fried foods",
		"Very high salt foods",
	},
	Lifestyle: []string{
		"Daily activity (as tolerated)",
		"7-9 hours sleep",
		"Stress management",
		"Follow-up if symptoms worsen",
	},
}

// Mapper produces rule-based guidance from the reference tables,
// optionally enriched with ranked foods from the food-composition
// service.
type Mapper struct {
	store driven.ReferenceStore
	foods driven.FoodDataClient
}

// NewMapper creates a guidance mapper. foods may be nil; enrichment is
// then skipped.
func NewMapper(store driven.ReferenceStore, foods driven.FoodDataClient) *Mapper {
	return &Mapper{store: store, foods: foods}
}

// matchKey best-effort resolves a detected condition onto a table key:
// exact normalised match, then the alias table, then substring match
// (e.g. "mild sinusitis" onto "sinusitis").
func matchKey(input string, tableKeys []string) string {
	k := reconcile.ResolveKey(input)
	for _, base := range tableKeys {
		if k == base {
			return base
		}
	}
	for _, base := range tableKeys {
		if strings.Contains(k, base) {
			return base
		}
	}
	return ""
}

// Map assembles guidance for the reconciled condition set.
func (m *Mapper) Map(ctx context.Context, conditions []string) domain.MappedGuidance {
	table := m.store.Conditions()
	tableKeys := make([]string, 0, len(table))
	for k := range table {
		tableKeys = append(tableKeys, k)
	}
	sort.Strings(tableKeys)

	matched := map[string]domain.GuidanceRecord{}
	var matchedKeys, unknown []string
	seen := map[string]struct{}{}

	for _, c := range conditions {
		key := matchKey(c, tableKeys)
		if key == "" {
			unknown = append(unknown, c)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matched[key] = table[key]
		matchedKeys = append(matchedKeys, key)
	}

	nutrients := m.nutrientsFor(matchedKeys)
	if m.foods != nil && m.foods.Available() {
		for i := range nutrients {
			nutrients[i].TopFoods = m.enrich(ctx, nutrients[i].Key, nutrients[i].Foods)
		}
	}

	if unknown == nil {
		unknown = []string{}
	}
	return domain.MappedGuidance{
		MatchedGuidance:   matched,
		GeneralGuidance:   defaultGuidance,
		Nutrients:         nutrients,
		SafetyNotes:       safetyNotes(conditions),
		UnknownConditions: unknown,
	}
}

// nutrientsFor collects nutrient recommendations for the matched
// condition keys, deduplicating by key and keeping the highest
// priority, sorted descending.
func (m *Mapper) nutrientsFor(matchedKeys []string) []domain.NutrientAdvice {
	nutrientDB := m.store.Nutrients()
	if len(nutrientDB) == 0 {
		return []domain.NutrientAdvice{}
	}
	mappings := m.store.ConditionNutrients()

	best := map[string]domain.NutrientAdvice{}
	for _, key := range matchedKeys {
		mapping, ok := mappings[key]
		if !ok {
			continue
		}
		for _, ref := range mapping.Nutrients {
			info, ok := nutrientDB[ref.Key]
			if !ok {
				continue
			}

			priority := ref.Priority
			if priority == 0 {
				priority = defaultPriority
			}
			if prev, dup := best[ref.Key]; dup && prev.Priority >= priority {
				continue
			}
			best[ref.Key] = domain.NutrientAdvice{
				Key:           ref.Key,
				Priority:      priority,
				WhyNeeded:     info.WhyNeeded,
				Foods:         info.Foods,
				AbsorptionTip: info.AbsorptionTip,
				AvoidWith:     info.AvoidWith,
				TopFoods:      []domain.FoodAmount{},
			}
		}
	}

	out := make([]domain.NutrientAdvice, 0, len(best))
	for _, adv := range best {
		out = append(out, adv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// enrich ranks the recommended foods for a nutrient via the
// food-composition service. Per-food failures are dropped silently.
func (m *Mapper) enrich(ctx context.Context, nutrientKey string, foodNames []string) []domain.FoodAmount {
	fdcName := guidance.FDCNameForKey(nutrientKey)

	limited := foodNames
	if len(limited) > enrichFoodCap {
		limited = limited[:enrichFoodCap]
	}

	results := []domain.FoodAmount{}
	for _, food := range limited {
		id, err := m.foods.BestMatchID(ctx, food)
		if err != nil || id == 0 {
			if err != nil {
				logger.Debug("guidance enrich: search miss %q: %v", food, err)
			}
			continue
		}

		amt, err := m.foods.NutrientAmount(ctx, id, fdcName)
		if err != nil || amt == nil {
			if err != nil {
				logger.Debug("guidance enrich: detail miss %q: %v", food, err)
			}
			continue
		}

		results = append(results, domain.FoodAmount{Food: food, FDCID: id, Amount: amt.Value, Unit: amt.Unit})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Amount > results[j].Amount
	})
	if len(results) > topFoodsKeep {
		results = results[:topFoodsKeep]
	}
	return results
}

// safetyNotes flags condition groups that need clinician sign-off
// before dietary changes.
func safetyNotes(conditions []string) []string {
	joined := strings.ToLower(strings.Join(conditions, " "))
	notes := []string{}

	if strings.Contains(joined, "ckd") || strings.Contains(joined, "kidney") || strings.Contains(joined, "renal") {
		notes = append(notes, "Kidney-related issue detected: avoid major potassium/protein changes without medical advice.")
	}
	if strings.Contains(joined, "warfarin") {
		notes = append(notes, "If you are on warfarin/blood thinners, keep vitamin K intake consistent and follow clinician advice.")
	}
	if strings.Contains(joined, "diabetes") || strings.Contains(joined, "hyperglycemia") {
		notes = append(notes, "Blood sugar-related issue detected: avoid sugary drinks and refined carbohydrates.")
	}
	return notes
}
