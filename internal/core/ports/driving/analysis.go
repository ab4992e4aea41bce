// Package driving defines the inbound ports of the analysis core.
package driving

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// AnalysisService runs the document-to-guidance pipeline for one upload.
type AnalysisService interface {
	// Analyze extracts, segments, detects, tags, reconciles and
	// assembles guidance for the file at path. Only primary extraction
	// failures are returned as errors; every enrichment stage degrades
	// to an empty substructure instead.
	Analyze(ctx context.Context, path, ext, originalName string) (*domain.AnalysisReport, error)
}
