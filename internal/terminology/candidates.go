package terminology

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// diagnosticSections are the section names mined for candidate phrases.
// These give the best recall for resolvable clinical terms.
var diagnosticSections = []string{
	"final diagnosis",
	"diagnosis",
	"impression",
	"summary",
	"findings",
}

// badStarts mark normal/negative boilerplate that is pointless to
// resolve against the terminology service.
var badStarts = []string{
	"no acute",
	"no evidence",
	"negative for",
	"normal",
	"unremarkable",
	"within normal",
	"not seen",
	"absent",
	"nil",
}

const (
	minCandidateLen   = 3
	maxCandidateLen   = 60
	maxCandidateWords = 6

	// maxCandidates bounds external call volume per document.
	maxCandidates = 25
)

var (
	candidateSplit  = regexp.MustCompile(`[;,.\n]`)
	candidateSpaces = regexp.MustCompile(`\s+`)
	numericOnly     = regexp.MustCompile(`^[\d\W]+$`)
)

// normalizeCandidate cleans a split fragment and reports whether it is
// worth sending to the terminology service. Long sentences, boilerplate
// and date-like fragments are rejected.
func normalizeCandidate(s string) (string, bool) {
	x := strings.TrimSpace(candidateSpaces.ReplaceAllString(s, " "))
	if x == "" {
		return "", false
	}
	if len(x) < minCandidateLen || len(x) > maxCandidateLen {
		return "", false
	}
	if len(strings.Split(x, " ")) > maxCandidateWords {
		return "", false
	}

	low := strings.ToLower(x)
	for _, b := range badStarts {
		if strings.HasPrefix(low, b) {
			return "", false
		}
	}
	if numericOnly.MatchString(x) {
		return "", false
	}
	return x, true
}

// CandidatesFromSections extracts deduplicated short phrases from the
// diagnostic sections, splitting on sentence-ish delimiters. Insertion
// order is preserved so the call cap trims the tail, not random entries.
func CandidatesFromSections(sections domain.Sections) []string {
	seen := make(map[string]struct{})
	var candidates []string

	for _, name := range diagnosticSections {
		body := sections[name]
		if body == "" {
			continue
		}
		body = strings.ReplaceAll(body, "\n", " ")

		for _, part := range candidateSplit.Split(body, -1) {
			c, ok := normalizeCandidate(part)
			if !ok {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}
	}

	return candidates
}
