package driven

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// ConceptTagger resolves phrases from diagnostic sections into
// confidence-scored terminology concepts. Implementations return an
// empty set when the terminology credential is missing.
type ConceptTagger interface {
	Tag(ctx context.Context, rawText string, sections domain.Sections) []domain.TerminologyConcept
}

// GuidanceOrchestrator assembles the live nutrition guidance payload.
// The payload is always well-formed; external failures degrade to
// empty collections and a note.
type GuidanceOrchestrator interface {
	Guide(ctx context.Context, conditions []string, concepts []domain.TerminologyConcept) domain.GuidancePayload
}

// GuidanceMapper produces rule-based guidance from the static
// reference tables.
type GuidanceMapper interface {
	Map(ctx context.Context, conditions []string) domain.MappedGuidance
}
