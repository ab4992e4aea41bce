package refdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// stubStore serves fixed tables.
type stubStore struct {
	conditions map[string]domain.GuidanceRecord
	nutrients  map[string]domain.NutrientInfo
	mappings   map[string]domain.ConditionNutrients
}

func (s *stubStore) Conditions() map[string]domain.GuidanceRecord           { return s.conditions }
func (s *stubStore) Nutrients() map[string]domain.NutrientInfo              { return s.nutrients }
func (s *stubStore) ConditionNutrients() map[string]domain.ConditionNutrients { return s.mappings }

// stubFoods scripts food-composition lookups.
type stubFoods struct {
	available bool
	ids       map[string]int64
	amounts   map[int64]float64
}

func (s *stubFoods) Available() bool { return s.available }

func (s *stubFoods) BestMatchID(_ context.Context, q string) (int64, error) {
	return s.ids[q], nil
}

func (s *stubFoods) NutrientAmount(_ context.Context, id int64, _ string) (*driven.NutrientAmount, error) {
	amt, ok := s.amounts[id]
	if !ok {
		return nil, nil
	}
	return &driven.NutrientAmount{Value: amt, Unit: "mg"}, nil
}

func testStore() *stubStore {
	return &stubStore{
		conditions: map[string]domain.GuidanceRecord{
			"anemia":       {Overview: "anemia guidance"},
			"hypertension": {Overview: "bp guidance"},
			"sinusitis":    {Overview: "sinus guidance"},
		},
		nutrients: map[string]domain.NutrientInfo{
			"iron":      {WhyNeeded: "hemoglobin", Foods: []string{"spinach", "lentils"}},
			"vitamin_c": {WhyNeeded: "absorption", Foods: []string{"amla"}},
		},
		mappings: map[string]domain.ConditionNutrients{
			"anemia": {Nutrients: []domain.NutrientRef{
				{Key: "iron", Priority: 0.95},
				{Key: "vitamin_c", Priority: 0.6},
				{Key: "unknown_nutrient", Priority: 0.9},
			}},
			"sinusitis": {Nutrients: []domain.NutrientRef{
				{Key: "vitamin_c", Priority: 0.75},
			}},
		},
	}
}

func TestMapper_Map(t *testing.T) {
	m := NewMapper(testStore(), nil)

	got := m.Map(context.Background(), []string{"anemia", "something unusual"})

	require.Contains(t, got.MatchedGuidance, "anemia")
	assert.Equal(t, "anemia guidance", got.MatchedGuidance["anemia"].Overview)
	assert.Equal(t, []string{"something unusual"}, got.UnknownConditions)
	assert.NotEmpty(t, got.GeneralGuidance.RecommendedFoods)

	// Nutrients sorted by priority, unknown nutrient keys dropped.
	require.Len(t, got.Nutrients, 2)
	assert.Equal(t, "iron", got.Nutrients[0].Key)
	assert.Equal(t, "vitamin_c", got.Nutrients[1].Key)
}

func TestMapper_Map_AliasAndSubstringMatch(t *testing.T) {
	m := NewMapper(testStore(), nil)

	got := m.Map(context.Background(), []string{"high blood pressure", "mild sinusitis"})

	assert.Contains(t, got.MatchedGuidance, "hypertension", "alias resolves onto the table key")
	assert.Contains(t, got.MatchedGuidance, "sinusitis", "substring match resolves onto the table key")
	assert.Empty(t, got.UnknownConditions)
}

func TestMapper_Map_DuplicateConditionsCollapse(t *testing.T) {
	m := NewMapper(testStore(), nil)

	got := m.Map(context.Background(), []string{"anemia", "anaemia", "low hemoglobin"})
	assert.Len(t, got.MatchedGuidance, 1)
}

// The same nutrient recommended by two conditions keeps the higher
// priority.
func TestMapper_Map_NutrientDedupeKeepsHighestPriority(t *testing.T) {
	m := NewMapper(testStore(), nil)

	got := m.Map(context.Background(), []string{"anemia", "sinusitis"})

	var vitC *domain.NutrientAdvice
	for i := range got.Nutrients {
		if got.Nutrients[i].Key == "vitamin_c" {
			vitC = &got.Nutrients[i]
		}
	}
	require.NotNil(t, vitC)
	assert.Equal(t, 0.75, vitC.Priority)
}

func TestMapper_Map_EnrichesTopFoods(t *testing.T) {
	foods := &stubFoods{
		available: true,
		ids:       map[string]int64{"spinach": 1, "lentils": 2},
		amounts:   map[int64]float64{1: 2.7, 2: 3.3},
	}
	m := NewMapper(testStore(), foods)

	got := m.Map(context.Background(), []string{"anemia"})

	require.NotEmpty(t, got.Nutrients)
	iron := got.Nutrients[0]
	require.Equal(t, "iron", iron.Key)
	require.Len(t, iron.TopFoods, 2)
	assert.Equal(t, "lentils", iron.TopFoods[0].Food, "ranked descending by amount")
}

func TestMapper_Map_NoEnrichmentWithoutCredential(t *testing.T) {
	m := NewMapper(testStore(), &stubFoods{available: false})

	got := m.Map(context.Background(), []string{"anemia"})
	require.NotEmpty(t, got.Nutrients)
	assert.Empty(t, got.Nutrients[0].TopFoods)
}

func TestSafetyNotes(t *testing.T) {
	assert.Empty(t, safetyNotes([]string{"sinusitis"}))

	notes := safetyNotes([]string{"chronic kidney disease", "diabetes"})
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0], "Kidney")
	assert.Contains(t, notes[1], "Blood sugar")
}
