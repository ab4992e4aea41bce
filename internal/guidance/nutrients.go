package guidance

import "regexp"

// Nutrient is one entry of the fixed detection vocabulary. FDCName is
// the food-composition service's exact nutrient name.
type Nutrient struct {
	Key     string
	Label   string
	FDCName string
	re      *regexp.Regexp
}

// nutrientVocabulary is scanned against fetched source text. This is
// detection only; it encodes no dietary rules.
var nutrientVocabulary = []Nutrient{
	{"calcium", "Calcium", "Calcium, Ca", regexp.MustCompile(`(?i)\bcalcium\b`)},
	{"vitamin_d", "Vitamin D", "Vitamin D (D2 + D3)", regexp.MustCompile(`(?i)\bvitamin\s*d\b`)},
	{"protein", "Protein", "Protein", regexp.MustCompile(`(?i)\bprotein\b`)},
	{"vitamin_c", "Vitamin C", "Vitamin C, total ascorbic acid", regexp.MustCompile(`(?i)\bvitamin\s*c\b`)},
	{"zinc", "Zinc", "Zinc, Zn", regexp.MustCompile(`(?i)\bzinc\b`)},
	{"iron", "Iron", "Iron, Fe", regexp.MustCompile(`(?i)\biron\b`)},
	{"folate", "Folate", "Folate, total", regexp.MustCompile(`(?i)\bfolate\b`)},
	{"vitamin_b12", "Vitamin B12", "Vitamin B-12", regexp.MustCompile(`(?i)\bvitamin\s*b12\b|\bb\s*12\b`)},
}

// genericFoods are candidate foods ranked per detected nutrient. The
// list is deliberately condition-agnostic.
var genericFoods = []string{
	"milk", "yogurt", "cheese", "ragi", "tofu", "sesame seeds",
	"egg", "salmon", "lentils", "spinach", "broccoli", "orange",
	"guava", "pumpkin seeds", "almonds", "chickpeas", "chicken", "beans",
}

// ExtractNutrients returns the nutrients mentioned in text, in
// vocabulary order, deduplicated by key.
func ExtractNutrients(text string) []Nutrient {
	seen := make(map[string]struct{})
	var found []Nutrient

	for _, n := range nutrientVocabulary {
		if !n.re.MatchString(text) {
			continue
		}
		if _, dup := seen[n.Key]; dup {
			continue
		}
		seen[n.Key] = struct{}{}
		found = append(found, n)
	}
	return found
}

// FDCNameForKey maps a nutrient key to the food-composition service's
// nutrient name, falling back to the key itself for unknown keys.
func FDCNameForKey(key string) string {
	for _, n := range nutrientVocabulary {
		if n.Key == key {
			return n.FDCName
		}
	}
	return key
}
