package reportsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/promotion"
)

func TestPDFGenerator_WritePromotionReport(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	tests := []struct {
		name string
		ev   promotion.Evaluation
	}{
		{
			name: "promoted",
			ev: promotion.Evaluation{
				StudentName:     "Ama Mensah",
				AcademicYear:    "2024/2025",
				Department:      academic.DepartmentJHS,
				CurrentGrade:    7,
				Status:          academic.StatusConditionalPromoted,
				PromotedToGrade: null.IntFrom(8),
				Decision: promotion.Decision{
					Reason:                 "one failing core subject: Mathematics",
					FailingCoreSubjects:    []string{"Mathematics"},
					FailingNonCoreSubjects: []string{},
					Recommendations:        []string{"Remedial classes in Mathematics."},
				},
				Summary: promotion.YearlySummary{
					Subjects: []promotion.SubjectYearlyAverage{
						{Subject: "English", Semester1Average: 80, Semester2Average: 80, YearlyAverage: 80, PassFail: promotion.ResultPass},
						{Subject: "Mathematics", Semester1Average: 60, Semester2Average: 64, YearlyAverage: 62, PassFail: promotion.ResultFail},
						{Subject: "Français", PassFail: promotion.ResultNoGrade},
					},
					OverallAverage: 71,
				},
			},
		},
		{
			name: "graduated without grades",
			ev: promotion.Evaluation{
				StudentName:  "Kofi Boateng",
				AcademicYear: "2024/2025",
				Department:   academic.DepartmentScience,
				CurrentGrade: 12,
				Status:       academic.StatusGraduated,
				Graduated:    true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewPDFGenerator("Darasa Academy").WritePromotionReport(&buf, tt.ev))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.Greater(t, buf.Len(), 500)
		})
	}
}
