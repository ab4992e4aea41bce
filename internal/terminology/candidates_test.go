package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

func TestCandidatesFromSections(t *testing.T) {
	sections := domain.Sections{
		"impression": "Acute sinusitis, mild mucosal thickening. No acute intracranial abnormality.",
		"findings":   "Bilateral maxillary sinus disease; 12/03/2024",
		"full_text":  "this body is never mined",
	}

	got := CandidatesFromSections(sections)
	assert.Equal(t, []string{
		"Acute sinusitis",
		"mild mucosal thickening",
		"Bilateral maxillary sinus disease",
	}, got)
}

func TestCandidatesFromSections_Dedupe(t *testing.T) {
	sections := domain.Sections{
		"diagnosis":  "anemia, anemia",
		"impression": "anemia",
	}
	assert.Equal(t, []string{"anemia"}, CandidatesFromSections(sections))
}

func TestCandidatesFromSections_SectionOrder(t *testing.T) {
	sections := domain.Sections{
		"findings":        "late candidate",
		"final diagnosis": "early candidate",
	}
	assert.Equal(t, []string{"early candidate", "late candidate"}, CandidatesFromSections(sections))
}

func TestNormalizeCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain term", "acute sinusitis", "acute sinusitis", true},
		{"whitespace collapsed", "  acute   sinusitis ", "acute sinusitis", true},
		{"too short", "hb", "", false},
		{"too many words", "one two three four five six seven", "", false},
		{"boilerplate", "no evidence of fracture", "", false},
		{"normal boilerplate", "Normal study", "", false},
		{"date fragment", "12/03/2024", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeCandidate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
