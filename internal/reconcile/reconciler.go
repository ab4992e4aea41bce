// Package reconcile merges keyword-detected condition labels with
// terminology-derived concepts into one canonical condition set, and
// attaches the best available definition per condition.
package reconcile

import (
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// minConceptConfidence gates which terminology concepts may contribute
// conditions to the canonical set.
const minConceptConfidence = 0.55

// conditionForms maps a canonical condition key to accepted surface
// forms. Only keys present in the reference data tables appear here.
type conditionForms struct {
	key   string
	forms []string
}

var conditionVocabulary = []conditionForms{
	{"anemia", []string{"anemia", "iron deficiency anemia", "anaemia"}},
	{"diabetes", []string{"diabetes", "diabetes mellitus", "type 2 diabetes mellitus", "type ii diabetes"}},
	{"hypertension", []string{"hypertension", "high blood pressure", "essential hypertension"}},
	{"gastritis", []string{"gastritis", "acute gastritis", "chronic gastritis"}},
	{"dehydration", []string{"dehydration", "dehydrated"}},
	{"sinusitis", []string{"sinusitis", "maxillary sinusitis", "rhinosinusitis"}},
}

// aliases fold duplicate surface forms onto canonical keys, so
// "high blood pressure", "htn" and "hypertension" reconcile to one key.
var aliases = map[string]string{
	"high blood pressure":     "hypertension",
	"elevated blood pressure": "hypertension",
	"htn":                     "hypertension",
	"high blood sugar":        "diabetes",
	"hyperglycemia":           "diabetes",
	"dm":                      "diabetes",
	"low hemoglobin":          "anemia",
	"iron deficiency anemia":  "anemia",
	"anaemia":                 "anemia",
	"sinus infection":         "sinusitis",
	"dehydrated":              "dehydration",
}

// ResolveKey canonicalises a condition surface form: normalise, then
// fold through the alias table.
func ResolveKey(s string) string {
	k := domain.NormalizeConditionKey(s)
	if canonical, ok := aliases[k]; ok {
		return canonical
	}
	return k
}

// matchesAny reports whether the normalised text contains any of the
// accepted surface forms.
func matchesAny(text string, forms []string) bool {
	t := domain.NormalizeConditionKey(text)
	for _, f := range forms {
		if strings.Contains(t, domain.NormalizeConditionKey(f)) {
			return true
		}
	}
	return false
}

// conceptMatches reports whether a concept's name, matched text or any
// synonym contains one of the accepted forms.
func conceptMatches(c domain.TerminologyConcept, forms []string) bool {
	if matchesAny(c.Name, forms) || matchesAny(c.MatchedText, forms) {
		return true
	}
	for _, s := range c.Synonyms {
		if matchesAny(s, forms) {
			return true
		}
	}
	return false
}

// FromConcepts returns condition keys supported by eligible concepts
// (confidence at or above the gate), in vocabulary order.
func FromConcepts(concepts []domain.TerminologyConcept) []string {
	var found []string
	for _, row := range conditionVocabulary {
		for _, c := range concepts {
			if c.Confidence < minConceptConfidence {
				continue
			}
			if conceptMatches(c, row.forms) {
				found = append(found, row.key)
				break
			}
		}
	}
	return found
}

// Reconcile unions keyword-detected labels with terminology-derived
// keys. Every entry is canonicalised; duplicates collapse; insertion
// order is keyword labels first, then terminology keys.
func Reconcile(keywordLabels []string, concepts []domain.TerminologyConcept) []string {
	seen := make(map[string]struct{})
	out := []string{}

	add := func(raw string) {
		key := ResolveKey(raw)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}

	for _, label := range keywordLabels {
		add(label)
	}
	for _, key := range FromConcepts(concepts) {
		add(key)
	}
	return out
}

// BestDefinition returns the definition of the highest-confidence
// concept matching the condition key, or "" when the tagger was not
// run or nothing matched. No confidence gate applies here: a
// low-confidence definition still beats no definition.
func BestDefinition(concepts []domain.TerminologyConcept, conditionKey string) string {
	var row *conditionForms
	for i := range conditionVocabulary {
		if conditionVocabulary[i].key == conditionKey {
			row = &conditionVocabulary[i]
			break
		}
	}
	if row == nil {
		return ""
	}

	best := ""
	bestConf := -1.0
	for _, c := range concepts {
		if !conceptMatches(c, row.forms) {
			continue
		}
		if c.Confidence > bestConf {
			bestConf = c.Confidence
			best = c.Definition
		}
	}
	return best
}
