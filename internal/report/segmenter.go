// Package report implements the lexical stages of the pipeline:
// structural segmentation, lay-reader simplification, keyword signal
// detection and report type classification. All matching is
// substring/pattern based over the raw text; there is no semantic model.
package report

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// headings is the fixed vocabulary of recognised section headings,
// common across MRI/CT reports and discharge summaries.
var headings = map[string]struct{}{
	"summary":                  {},
	"admission date":           {},
	"discharge date":           {},
	"final diagnosis":          {},
	"diagnosis":                {},
	"clinical history":         {},
	"history":                  {},
	"indication":               {},
	"technique":                {},
	"findings":                 {},
	"impression":               {},
	"conclusion":               {},
	"opinion":                  {},
	"hospital course":          {},
	"medications on discharge": {},
	"medications":              {},
	"advice on discharge":      {},
	"advice":                   {},
	"follow up":                {},
	"follow-up":                {},
}

var (
	trailingPunct  = regexp.MustCompile(`[:\-]+$`)
	headingSpacing = regexp.MustCompile(`\s+`)
)

// normalizeHeading lowercases a line, strips trailing colons/dashes and
// collapses whitespace, producing the section name form.
func normalizeHeading(line string) string {
	h := strings.ToLower(line)
	h = trailingPunct.ReplaceAllString(h, "")
	h = headingSpacing.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}

// isHeading reports whether a trimmed line is a recognised heading such
// as "FINDINGS:" or "Clinical History -".
func isHeading(line string) bool {
	n := normalizeHeading(line)
	if n == "" {
		return false
	}
	_, ok := headings[n]
	return ok
}

// ExtractSections splits raw text into named sections. Lines before the
// first recognised heading collect under the implicit "full_text"
// section. Heading lines switch the current section and are not added
// to any body. The function is pure: the same text always yields the
// same section map.
func ExtractSections(text string) domain.Sections {
	text = strings.ReplaceAll(text, "\r", "")

	bodies := map[string][]string{domain.FullTextSection: {}}
	current := domain.FullTextSection

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if isHeading(line) {
			current = normalizeHeading(line)
			if _, ok := bodies[current]; !ok {
				bodies[current] = []string{}
			}
			continue
		}
		if line != "" {
			bodies[current] = append(bodies[current], line)
		}
	}

	out := make(domain.Sections, len(bodies))
	for name, lines := range bodies {
		out[name] = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return out
}
