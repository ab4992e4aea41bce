// Package services wires the pipeline stages into the analysis
// service: extraction, segmentation, simplification, signal detection,
// terminology tagging, reconciliation and guidance assembly.
package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/logger"
	"github.com/custodia-labs/reportlens/internal/reconcile"
	"github.com/custodia-labs/reportlens/internal/report"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

const (
	// taggerBudget bounds the whole terminology tagging stage.
	taggerBudget = 10 * time.Second

	// guidanceBudget bounds the whole live guidance stage.
	guidanceBudget = 12 * time.Second

	// previewLen is the extracted-text preview length.
	previewLen = 800
)

// AnalysisService runs the document-to-guidance pipeline. Only primary
// extraction may fail a request; every enrichment stage degrades to an
// empty substructure on failure or timeout.
type AnalysisService struct {
	extractor    driven.TextExtractor
	tagger       driven.ConceptTagger
	orchestrator driven.GuidanceOrchestrator
	mapper       driven.GuidanceMapper
}

// NewAnalysisService creates the pipeline service. tagger,
// orchestrator and mapper may be nil; the matching stages are skipped.
func NewAnalysisService(
	extractor driven.TextExtractor,
	tagger driven.ConceptTagger,
	orchestrator driven.GuidanceOrchestrator,
	mapper driven.GuidanceMapper,
) *AnalysisService {
	return &AnalysisService{
		extractor:    extractor,
		tagger:       tagger,
		orchestrator: orchestrator,
		mapper:       mapper,
	}
}

// Analyze processes one uploaded document end to end.
func (s *AnalysisService) Analyze(ctx context.Context, path, ext, originalName string) (*domain.AnalysisReport, error) {
	logger.Section("Analysis")
	logger.Debug("file=%s ext=%s", originalName, ext)

	text, err := s.extractor.Extract(ctx, path, ext)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted %d chars", len(text))

	reportType := report.DetectReportType(text)
	sections := report.ExtractSections(text)
	simplified := report.SimplifySections(sections)

	concepts := s.tagConcepts(ctx, text, sections)

	radiology := report.DetectRadiologyFindings(text)
	keywordLabels := report.DetectConditions(text)
	conditions := reconcile.Reconcile(keywordLabels, concepts)
	logger.Info("detected %d conditions, %d radiology findings, %d concepts",
		len(conditions), len(radiology), len(concepts))

	explanations := buildExplanations(conditions, concepts)

	guidance := domain.MappedGuidance{
		MatchedGuidance:   map[string]domain.GuidanceRecord{},
		Nutrients:         []domain.NutrientAdvice{},
		SafetyNotes:       []string{},
		UnknownConditions: []string{},
	}
	if s.mapper != nil {
		guidance = s.mapper.Map(ctx, conditions)
	}

	live := s.liveGuidance(ctx, conditions, concepts)

	if radiology == nil {
		radiology = []string{}
	}

	return &domain.AnalysisReport{
		ID:                  uuid.New().String(),
		Filename:            originalName,
		StoredPath:          path,
		TextLength:          len(text),
		ReportType:          reportType,
		Sections:            sections,
		SimplifiedSections:  simplified,
		Concepts:            concepts,
		DetectedConditions:  conditions,
		RadiologyFindings:   radiology,
		DiseaseExplanations: explanations,
		Guidance:            guidance,
		LiveNutrition:       live,
		TextPreview:         preview(text),
		Disclaimer:          domain.Disclaimer,
		AnalysedAt:          time.Now().UTC(),
	}, nil
}

// tagConcepts runs the terminology stage under its budget. A timeout
// yields no concepts, not an error.
func (s *AnalysisService) tagConcepts(ctx context.Context, text string, sections domain.Sections) []domain.TerminologyConcept {
	if s.tagger == nil {
		return []domain.TerminologyConcept{}
	}
	return withTimeout(ctx, taggerBudget, []domain.TerminologyConcept{},
		func(ctx context.Context) []domain.TerminologyConcept {
			return s.tagger.Tag(ctx, text, sections)
		})
}

// liveGuidance runs the orchestrator under its budget.
func (s *AnalysisService) liveGuidance(ctx context.Context, conditions []string, concepts []domain.TerminologyConcept) domain.GuidancePayload {
	if s.orchestrator == nil {
		return domain.EmptyGuidance("live guidance not configured")
	}
	return withTimeout(ctx, guidanceBudget,
		domain.EmptyGuidance("live nutrition timed out for this request"),
		func(ctx context.Context) domain.GuidancePayload {
			return s.orchestrator.Guide(ctx, conditions, concepts)
		})
}

// buildExplanations attaches the best terminology definition to each
// canonical condition, then folds per-concept synonyms and confidence
// under the concept's normalised name.
func buildExplanations(conditions []string, concepts []domain.TerminologyConcept) map[string]domain.DiseaseExplanation {
	out := make(map[string]domain.DiseaseExplanation, len(conditions))

	for _, c := range conditions {
		out[c] = domain.DiseaseExplanation{
			Meaning:        reconcile.BestDefinition(concepts, c),
			CommonSymptoms: []string{},
			WhenToSeekHelp: []string{},
		}
	}

	for _, concept := range concepts {
		key := domain.NormalizeConditionKey(concept.Name)
		if key == "" {
			continue
		}

		entry := out[key]
		entry.Synonyms = concept.Synonyms
		entry.Confidence = concept.Confidence
		if entry.Meaning == "" {
			entry.Meaning = concept.Definition
		}
		if entry.CommonSymptoms == nil {
			entry.CommonSymptoms = []string{}
		}
		if entry.WhenToSeekHelp == nil {
			entry.WhenToSeekHelp = []string{}
		}
		out[key] = entry
	}

	return out
}

// preview truncates the extracted text for the response, backing off
// to a rune boundary so the cut never leaves a partial UTF-8 sequence.
func preview(text string) string {
	if len(text) <= previewLen {
		return text
	}

	cut := previewLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
