package report

import (
	"regexp"
	"strings"
)

// signal maps a detection label to its trigger keywords. Tables are
// ordered slices so detection output order is stable.
type signal struct {
	label    string
	keywords []string
}

// conditionSignals covers lab-report and radiology-friendly conditions.
var conditionSignals = []signal{
	{"anemia", []string{"anemia", "hemoglobin", "hb"}},
	{"diabetes", []string{"diabetes", "glucose", "blood sugar", "hba1c"}},
	{"hypertension", []string{"hypertension", "high blood pressure", "bp"}},
	{"thyroid", []string{"thyroid", "tsh", "t3", "t4"}},
	{"cholesterol", []string{"cholesterol", "ldl", "hdl", "triglycerides"}},
	{"gastritis", []string{"gastritis", "acid reflux", "epigastric"}},
	{"dehydration", []string{"dehydration", "dehydrated"}},
	{"sinusitis", []string{"sinusitis", "mucosal thickening", "maxillary sinus"}},
	{"stroke", []string{"infarct", "cva", "stroke"}},
	{"hemorrhage", []string{"hemorrhage", "intracranial bleed", "intracranial hemorrhage", "bleed"}},
	{"tumor", []string{"mass lesion", "space occupying", "space-occupying", "sol", "neoplasm", "malignancy", "metastasis"}},
}

// radiologySignals covers imaging findings.
var radiologySignals = []signal{
	{"fracture", []string{"fracture", "break", "cortical disruption"}},
	{"stone", []string{"stone", "calculus"}},
	{"cyst", []string{"cyst"}},
	{"mass/lesion", []string{"lesion", "nodule", "mass lesion", "space occupying", "space-occupying", "s.o.l", "sol"}},
	{"inflammation", []string{"inflammation", "edema", "swelling", "mucosal thickening", "sinusitis"}},
	{"infection", []string{"infection", "abscess"}},
	{"tumor suspicion", []string{"neoplasm", "malignancy", "metastasis"}},
}

// negationWindow is how many characters before a keyword are scanned
// for a negation cue.
const negationWindow = 40

// negationCues precede a keyword occurrence that should not count.
// The trailing spaces are part of the cue.
var negationCues = []string{
	"no ",
	"without ",
	"negative for ",
	"not ",
	"absence of ",
	"free of ",
	"rule out ",
	"ruled out ",
}

// isNegated reports whether the FIRST occurrence of keyword in text is
// preceded by a negation cue within the window. Later, non-negated
// occurrences of the same keyword are not considered; a document that
// both negates and asserts the same keyword reads as negated.
func isNegated(text, keyword string) bool {
	idx := strings.Index(text, keyword)
	if idx == -1 {
		return false
	}

	start := idx - negationWindow
	if start < 0 {
		start = 0
	}
	window := text[start:idx]

	for _, cue := range negationCues {
		if strings.Contains(window, cue) {
			return true
		}
	}
	return false
}

// detect scans lowercased text against a signal table. A label is
// detected when at least one of its keywords occurs non-negated.
func detect(text string, table []signal) []string {
	var detected []string

	for _, sig := range table {
		for _, k := range sig.keywords {
			if !strings.Contains(text, k) {
				continue
			}
			if isNegated(text, k) {
				continue
			}
			detected = append(detected, sig.label)
			break
		}
	}
	return detected
}

// DetectConditions returns the condition labels mentioned non-negated
// in the text. Output order follows the signal table; no duplicates.
func DetectConditions(text string) []string {
	return detect(strings.ToLower(text), conditionSignals)
}

var massEffect = regexp.MustCompile(`\bmass effect\b`)

// DetectRadiologyFindings returns imaging finding labels. The literal
// phrase "mass effect" is removed before matching so it cannot trip the
// mass/lesion label.
func DetectRadiologyFindings(text string) []string {
	safe := massEffect.ReplaceAllString(strings.ToLower(text), "")
	return detect(safe, radiologySignals)
}
