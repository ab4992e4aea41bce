package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectReportType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "mri with findings",
			text: "MRI BRAIN\nFINDINGS: normal study",
			want: TypeMRI,
		},
		{
			name: "ct with impression",
			text: "CT head plain\nIMPRESSION: no bleed",
			want: TypeCT,
		},
		{
			name: "ultrasound",
			text: "USG abdomen\nFINDINGS: liver normal",
			want: TypeUltrasound,
		},
		{
			name: "xray",
			text: "Chest X-ray\nFINDINGS: clear lungs",
			want: TypeXRay,
		},
		{
			name: "discharge wins over modality",
			text: "DISCHARGE SUMMARY\nHospital course uneventful.\nCT head during stay: normal. FINDINGS attached.",
			want: TypeDischargeSummary,
		},
		{
			name: "findings without modality",
			text: "FINDINGS: something\nIMPRESSION: something",
			want: TypeRadiology,
		},
		{
			name: "plain note",
			text: "patient seen in opd, advised rest",
			want: TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectReportType(tt.text))
		})
	}
}
