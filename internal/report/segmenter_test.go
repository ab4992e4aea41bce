package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

const sampleMRIReport = `MRI BRAIN PLAIN

CLINICAL HISTORY:
Headache for two weeks.

FINDINGS:
Mild mucosal thickening in bilateral maxillary sinuses.
Ventricles are normal in size and configuration.

IMPRESSION:
No acute intracranial abnormality.
`

func TestExtractSections(t *testing.T) {
	sections := ExtractSections(sampleMRIReport)

	require.Contains(t, sections, domain.FullTextSection)
	assert.Equal(t, "MRI BRAIN PLAIN", sections[domain.FullTextSection])

	require.Contains(t, sections, "findings")
	assert.Contains(t, sections["findings"], "Mild mucosal thickening")
	assert.Contains(t, sections["findings"], "Ventricles are normal")

	require.Contains(t, sections, "impression")
	assert.Equal(t, "No acute intracranial abnormality.", sections["impression"])

	require.Contains(t, sections, "clinical history")
	assert.Equal(t, "Headache for two weeks.", sections["clinical history"])
}

func TestExtractSections_HeadingVariants(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		section string
	}{
		{"upper with colon", "FINDINGS:", "findings"},
		{"mixed with dash", "Clinical History -", "clinical history"},
		{"plain lower", "impression", "impression"},
		{"extra spaces", "FINAL   DIAGNOSIS:", "final diagnosis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := ExtractSections(tt.line + "\nbody line\n")
			require.Contains(t, sections, tt.section)
			assert.Equal(t, "body line", sections[tt.section])
		})
	}
}

func TestExtractSections_NoHeadings(t *testing.T) {
	sections := ExtractSections("just a plain note\nwith two lines")
	assert.Len(t, sections, 1)
	assert.Equal(t, "just a plain note\nwith two lines", sections[domain.FullTextSection])
}

func TestExtractSections_Deterministic(t *testing.T) {
	first := ExtractSections(sampleMRIReport)
	second := ExtractSections(sampleMRIReport)
	assert.Equal(t, first, second)
}

func TestExtractSections_CarriageReturns(t *testing.T) {
	sections := ExtractSections("FINDINGS:\r\nClear lungs.\r\n")
	assert.Equal(t, "Clear lungs.", sections["findings"])
}

func TestNormalizeHeading(t *testing.T) {
	assert.Equal(t, "findings", normalizeHeading("FINDINGS:"))
	assert.Equal(t, "follow up", normalizeHeading("Follow  Up -"))
	assert.Equal(t, "impression", normalizeHeading("impression:-"))
}
