package report

import "strings"

// Report type identifiers.
const (
	TypeDischargeSummary = "discharge_summary"
	TypeMRI              = "mri_report"
	TypeCT               = "ct_report"
	TypeUltrasound       = "ultrasound_report"
	TypeXRay             = "xray_report"
	TypeRadiology        = "radiology_report"
	TypeUnknown          = "unknown"
)

// DetectReportType classifies the document by modality and structure
// cues. Discharge cues win over modality cues because discharge
// summaries often embed imaging excerpts.
func DetectReportType(text string) string {
	t := strings.ToLower(text)

	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		return false
	}

	isMRI := has("mri", "magnetic resonance")
	isCT := has("ct", "computed tomography")
	isUSG := has("ultrasound", "sonography", "usg")
	isXRay := has("x-ray", "xray", "radiograph")

	hasFindings := has("findings", "impression", "conclusion")
	hasDischarge := has("discharge summary", "hospital course", "medications on discharge", "advice on discharge")

	switch {
	case hasDischarge:
		return TypeDischargeSummary
	case isMRI && hasFindings:
		return TypeMRI
	case isCT && hasFindings:
		return TypeCT
	case isUSG && hasFindings:
		return TypeUltrasound
	case isXRay && hasFindings:
		return TypeXRay
	case hasFindings:
		return TypeRadiology
	default:
		return TypeUnknown
	}
}
