package report

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// replacement is one ordered phrase-substitution rule.
type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// simplifications rewrite clinical phrasing for lay readers. Rules are
// applied in order; earlier multi-word rules must run before the
// single-word rules they contain.
var simplifications = []replacement{
	{regexp.MustCompile(`(?i)mild mucosal thickening`), "mild swelling of the sinus lining"},
	{regexp.MustCompile(`(?i)bilateral`), "on both sides"},
	{regexp.MustCompile(`(?i)maxillary sinuses`), "sinuses near the nose"},
	{regexp.MustCompile(`(?i)no acute intracranial abnormality`), "no serious problem inside the brain was found"},
	{regexp.MustCompile(`(?i)no mass effect or midline shift`), "no pressure or displacement of brain structures"},
	{regexp.MustCompile(`(?i)ventricles are normal in size and configuration`), "fluid spaces in the brain appear normal"},
	{regexp.MustCompile(`(?i)no evidence of`), "there is no sign of"},
	{regexp.MustCompile(`(?i)hemorrhage`), "bleeding"},
	{regexp.MustCompile(`(?i)infarct`), "stroke-related damage"},
}

var (
	simplifierSpaces = regexp.MustCompile(`\s+`)
	duplicatePeriods = regexp.MustCompile(`\.\s*\.`)
)

// SimplifyText applies the substitution rules in order, then normalises
// whitespace and collapses duplicate periods.
func SimplifyText(text string) string {
	for _, rule := range simplifications {
		text = rule.pattern.ReplaceAllString(text, rule.with)
	}
	text = simplifierSpaces.ReplaceAllString(text, " ")
	text = duplicatePeriods.ReplaceAllString(text, ".")
	return strings.TrimSpace(text)
}

// SimplifySections rewrites every non-empty section body. Empty values
// pass through unchanged.
func SimplifySections(sections domain.Sections) domain.Sections {
	out := make(domain.Sections, len(sections))
	for name, body := range sections {
		if body == "" {
			out[name] = body
			continue
		}
		out[name] = SimplifyText(body)
	}
	return out
}
