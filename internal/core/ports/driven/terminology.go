package driven

import "context"

// SearchMode selects the terminology search strategy.
type SearchMode string

const (
	// SearchExact matches the full candidate phrase.
	SearchExact SearchMode = "exact"

	// SearchWords is the looser per-word fallback mode.
	SearchWords SearchMode = "words"
)

// ConceptHit is one search result from the terminology service.
type ConceptHit struct {
	// UI is the concept identifier. CUI-like identifiers start with "C".
	UI string

	// Name is the concept's preferred name.
	Name string

	// RootSource is the vocabulary the hit came from.
	RootSource string
}

// ConceptDefinition is one definition attached to a concept.
type ConceptDefinition struct {
	Value      string
	RootSource string
}

// TerminologyClient resolves phrases against the external medical
// terminology service. Implementations must absorb 404/401/403/429/5xx
// responses as empty results; only transport-level failures surface.
type TerminologyClient interface {
	// Available reports whether the service credential is configured.
	Available() bool

	// Search looks a term up in the given mode.
	Search(ctx context.Context, term string, mode SearchMode) ([]ConceptHit, error)

	// Atoms returns up to limit synonym atom names for a concept.
	Atoms(ctx context.Context, cui string, limit int) ([]string, error)

	// Definitions returns definitions for a concept, in the service's
	// vocabulary preference order.
	Definitions(ctx context.Context, cui string) ([]ConceptDefinition, error)
}
