package driven

import "context"

// NutrientAmount is a food's measured amount of one nutrient.
type NutrientAmount struct {
	Value float64
	Unit  string
}

// FoodDataClient resolves food names and nutrient amounts against the
// external food-composition service.
type FoodDataClient interface {
	// Available reports whether the service credential is configured.
	Available() bool

	// BestMatchID resolves a food name to its best-match record id.
	// Returns 0 with a nil error when no match exists.
	BestMatchID(ctx context.Context, food string) (int64, error)

	// NutrientAmount fetches the detail record for id and extracts the
	// amount for the service's nutrient name. Returns nil with a nil
	// error when the record carries no numeric amount for that nutrient.
	NutrientAmount(ctx context.Context, id int64, nutrientName string) (*NutrientAmount, error)
}
