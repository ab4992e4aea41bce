package terminology

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/logger"
)

const (
	// atomLimit is how many synonym atoms are fetched per concept.
	atomLimit = 25

	// synonymKeep is how many unique synonyms survive per concept.
	synonymKeep = 12

	// Confidence scoring weights. The result is a heuristic in [0,1],
	// not a probability.
	confidenceBase       = 0.35
	confidenceExact      = 0.25
	confidenceDiagnostic = 0.25
	confidenceRepeated   = 0.10
	confidenceLongMatch  = 0.05
)

// Tagger extracts candidate phrases from diagnostic sections and
// resolves them into confidence-scored terminology concepts.
type Tagger struct {
	client driven.TerminologyClient
}

// NewTagger creates a tagger over the given client.
func NewTagger(client driven.TerminologyClient) *Tagger {
	return &Tagger{client: client}
}

// Tag resolves up to maxCandidates phrases and returns deduplicated
// concepts sorted by descending confidence. A missing credential yields
// an empty set with no external calls. Individual resolution failures
// are absorbed; they are expected, not errors.
func (t *Tagger) Tag(ctx context.Context, rawText string, sections domain.Sections) []domain.TerminologyConcept {
	if t.client == nil || !t.client.Available() {
		return []domain.TerminologyConcept{}
	}

	candidates := CandidatesFromSections(sections)
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	logger.Debug("terminology: %d candidates", len(candidates))

	textLower := strings.ToLower(rawText)
	byCUI := make(map[string]domain.TerminologyConcept)

	for _, term := range candidates {
		concept, ok := t.resolve(ctx, term, textLower)
		if !ok {
			continue
		}
		if prev, dup := byCUI[concept.CUI]; !dup || concept.Confidence > prev.Confidence {
			byCUI[concept.CUI] = concept
		}
	}

	out := make([]domain.TerminologyConcept, 0, len(byCUI))
	for _, c := range byCUI {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// resolve looks one candidate up: exact search first, then the looser
// words mode, taking the first hit with a CUI-like identifier. The
// concept is then enriched with synonyms and a definition.
func (t *Tagger) resolve(ctx context.Context, term, textLower string) (domain.TerminologyConcept, bool) {
	mode := driven.SearchExact
	hits := t.safeSearch(ctx, term, mode)
	if len(hits) == 0 {
		mode = driven.SearchWords
		hits = t.safeSearch(ctx, term, mode)
	}

	var best *driven.ConceptHit
	for i := range hits {
		if strings.HasPrefix(hits[i].UI, "C") {
			best = &hits[i]
			break
		}
	}
	if best == nil {
		return domain.TerminologyConcept{}, false
	}

	name := best.Name
	if name == "" {
		name = term
	}

	synonyms := t.safeAtoms(ctx, best.UI)
	definition := t.safeDefinition(ctx, best.UI)

	occurrences := 0
	if term != "" {
		occurrences = strings.Count(textLower, strings.ToLower(term))
	}

	return domain.TerminologyConcept{
		CUI:         best.UI,
		Name:        name,
		MatchedText: term,
		Confidence:  scoreConfidence(term, mode, occurrences),
		Synonyms:    synonyms,
		Definition:  definition,
	}, true
}

// safeSearch absorbs transport failures as empty results.
func (t *Tagger) safeSearch(ctx context.Context, term string, mode driven.SearchMode) []driven.ConceptHit {
	hits, err := t.client.Search(ctx, term, mode)
	if err != nil {
		logger.Warn("terminology search skipped: %v", err)
		return nil
	}
	return hits
}

// safeAtoms fetches synonym atoms, keeping the first synonymKeep unique
// names. Failures yield no synonyms.
func (t *Tagger) safeAtoms(ctx context.Context, cui string) []string {
	atoms, err := t.client.Atoms(ctx, cui, atomLimit)
	if err != nil {
		logger.Warn("terminology atoms skipped for %s: %v", cui, err)
		return nil
	}

	seen := make(map[string]struct{}, len(atoms))
	var unique []string
	for _, a := range atoms {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		unique = append(unique, a)
		if len(unique) == synonymKeep {
			break
		}
	}
	return unique
}

// safeDefinition returns the first non-empty definition text.
func (t *Tagger) safeDefinition(ctx context.Context, cui string) string {
	defs, err := t.client.Definitions(ctx, cui)
	if err != nil {
		logger.Warn("terminology definitions skipped for %s: %v", cui, err)
		return ""
	}
	for _, d := range defs {
		if d.Value != "" {
			return d.Value
		}
	}
	return ""
}

// scoreConfidence computes the heuristic match score. Candidates always
// come from diagnosis/impression-type sections, so that bonus always
// applies here.
func scoreConfidence(matchedText string, mode driven.SearchMode, occurrences int) float64 {
	score := confidenceBase

	if mode == driven.SearchExact {
		score += confidenceExact
	}
	score += confidenceDiagnostic
	if occurrences >= 2 {
		score += confidenceRepeated
	}
	if len(matchedText) > 3 {
		score += confidenceLongMatch
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
