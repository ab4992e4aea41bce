// Package refdata loads the static condition/nutrient reference tables
// and maps reconciled conditions onto rule-based guidance. Tables are
// read once at startup; a missing or malformed file degrades to an
// empty table rather than failing.
package refdata

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ReferenceStore = (*Store)(nil)

// Table file names inside the data directory.
const (
	conditionsFile         = "conditions.json"
	nutrientsFile          = "nutrients.json"
	conditionNutrientsFile = "condition_nutrients.json"
)

// Store holds the loaded reference tables.
type Store struct {
	conditions         map[string]domain.GuidanceRecord
	nutrients          map[string]domain.NutrientInfo
	conditionNutrients map[string]domain.ConditionNutrients
}

// NewStore loads the three tables from dataDir.
func NewStore(dataDir string) *Store {
	s := &Store{
		conditions:         map[string]domain.GuidanceRecord{},
		nutrients:          map[string]domain.NutrientInfo{},
		conditionNutrients: map[string]domain.ConditionNutrients{},
	}
	loadTable(filepath.Join(dataDir, conditionsFile), &s.conditions)
	loadTable(filepath.Join(dataDir, nutrientsFile), &s.nutrients)
	loadTable(filepath.Join(dataDir, conditionNutrientsFile), &s.conditionNutrients)
	return s
}

// loadTable reads a JSON table into out, leaving out untouched on any
// failure so the caller keeps its empty table.
func loadTable[T any](path string, out *T) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reference table %s unreadable: %v", filepath.Base(path), err)
		}
		return
	}

	var parsed T
	if err := json.Unmarshal(data, &parsed); err != nil {
		logger.Warn("reference table %s malformed: %v", filepath.Base(path), err)
		return
	}
	*out = parsed
}

// Conditions returns per-condition guidance records.
func (s *Store) Conditions() map[string]domain.GuidanceRecord {
	return s.conditions
}

// Nutrients returns nutrient metadata keyed by nutrient key.
func (s *Store) Nutrients() map[string]domain.NutrientInfo {
	return s.nutrients
}

// ConditionNutrients returns condition→nutrient recommendations.
func (s *Store) ConditionNutrients() map[string]domain.ConditionNutrients {
	return s.conditionNutrients
}
