package domain

import (
	"regexp"
	"strings"
	"time"
)

// Sections maps a normalised heading name to its collected body text.
// A document always carries at least the implicit "full_text" section
// holding lines that appear before the first recognised heading.
type Sections map[string]string

// FullTextSection is the implicit section for unattributed lines.
const FullTextSection = "full_text"

// TerminologyConcept is a clinical entity resolved through the external
// terminology service. Confidence is a heuristic score in [0,1], not a
// probability.
type TerminologyConcept struct {
	// CUI is the concept unique identifier assigned by the service.
	CUI string `json:"cui"`

	// Name is the preferred name of the concept.
	Name string `json:"name"`

	// MatchedText is the candidate phrase that resolved to this concept.
	MatchedText string `json:"matched_text"`

	// Confidence scores how likely the match reflects the document.
	Confidence float64 `json:"confidence"`

	// Synonyms are alternate surface forms from the source vocabularies.
	Synonyms []string `json:"synonyms"`

	// Definition is the first non-empty definition text, if any.
	Definition string `json:"definition"`
}

// FoodAmount is one food's measured amount of a nutrient, resolved
// against the food-composition service.
type FoodAmount struct {
	Food   string  `json:"food"`
	FDCID  int64   `json:"fdcId"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NutrientPacket pairs a detected nutrient with its top food sources,
// ranked descending by amount. TopFoods holds at most five entries.
type NutrientPacket struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	UnitHint string       `json:"unit_hint"`
	TopFoods []FoodAmount `json:"top_foods"`
}

// SourceLink references a trusted informational page used for guidance.
type SourceLink struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// GuidancePayload is the assembled live nutrition guidance for a report.
// It is always well-formed; degraded external calls leave empty
// collections and an explanatory note rather than errors.
type GuidancePayload struct {
	Message        string                  `json:"message,omitempty"`
	Category       string                  `json:"category,omitempty"`
	Query          string                  `json:"query,omitempty"`
	Sources        []SourceLink            `json:"sources"`
	NutrientsFound []string                `json:"nutrients_found"`
	FoodsByKey     map[string][]FoodAmount `json:"foods_ranked_by_nutrient"`
	Nutrients      []NutrientPacket        `json:"nutrients"`
	Note           string                  `json:"note,omitempty"`
}

// EmptyGuidance returns a well-formed payload with no content.
func EmptyGuidance(note string) GuidancePayload {
	return GuidancePayload{
		Sources:        []SourceLink{},
		NutrientsFound: []string{},
		FoodsByKey:     map[string][]FoodAmount{},
		Nutrients:      []NutrientPacket{},
		Note:           note,
	}
}

// DiseaseExplanation is the per-condition explanatory block attached to
// the response, filled from terminology definitions when available.
type DiseaseExplanation struct {
	Meaning        string   `json:"meaning"`
	WhyItMatters   string   `json:"why_it_matters"`
	CommonSymptoms []string `json:"common_symptoms"`
	WhenToSeekHelp []string `json:"when_to_seek_help"`
	Synonyms       []string `json:"synonyms,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
}

// AnalysisReport is the full response payload for one analysed document.
type AnalysisReport struct {
	ID                  string                        `json:"id"`
	Filename            string                        `json:"filename"`
	StoredPath          string                        `json:"stored_path"`
	TextLength          int                           `json:"text_length"`
	ReportType          string                        `json:"report_type"`
	Sections            Sections                      `json:"sections"`
	SimplifiedSections  Sections                      `json:"simplified_sections"`
	Concepts            []TerminologyConcept          `json:"umls_mentions"`
	DetectedConditions  []string                      `json:"detected_conditions"`
	RadiologyFindings   []string                      `json:"radiology_findings"`
	DiseaseExplanations map[string]DiseaseExplanation `json:"disease_explanations"`
	Guidance            MappedGuidance                `json:"guidance"`
	LiveNutrition       GuidancePayload               `json:"live_nutrition"`
	TextPreview         string                        `json:"extracted_text_preview"`
	Disclaimer          string                        `json:"disclaimer"`
	AnalysedAt          time.Time                     `json:"analysed_at"`
}

// Disclaimer is attached to every response.
const Disclaimer = "Educational only. Not medical advice. Consult a qualified doctor."

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// NormalizeConditionKey canonicalises a condition surface form: lowercase,
// alphanumeric/space/hyphen only, single-spaced, trimmed. Duplicate
// surface forms must normalise to the same key before alias resolution.
func NormalizeConditionKey(s string) string {
	k := strings.ToLower(strings.TrimSpace(s))
	k = nonKeyChars.ReplaceAllString(k, "")
	k = multiSpace.ReplaceAllString(k, " ")
	return strings.TrimSpace(k)
}
