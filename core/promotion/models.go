package promotion

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/academic"
)

// subject results
const (
	ResultPass    = "Pass"
	ResultFail    = "Fail"
	ResultNoGrade = "No Grade"
)

// SubjectYearlyAverage is a subject's result over both semesters of an academic year.
type SubjectYearlyAverage struct {
	Subject          string  `json:"subject"`
	Semester1Average float64 `json:"semester1_average"`
	Semester2Average float64 `json:"semester2_average"`
	YearlyAverage    float64 `json:"yearly_average"`
	PassFail         string  `json:"pass_fail"`
}

// Graded reports whether the subject has a score in at least one semester.
func (s SubjectYearlyAverage) Graded() bool {
	return s.YearlyAverage > 0
}

// YearlySummary is the aggregation of a student's grade records for one academic year.
type YearlySummary struct {
	Subjects        []SubjectYearlyAverage `json:"subjects"`
	OverallAverage  float64                `json:"overall_average"`
	Semester1Exists bool                   `json:"semester1_exists"`
	Semester2Exists bool                   `json:"semester2_exists"`
}

// Complete reports whether both semesters have been recorded.
func (ys YearlySummary) Complete() bool {
	return ys.Semester1Exists && ys.Semester2Exists
}

// GradedSubjects returns the subjects with a nonzero yearly average.
func (ys YearlySummary) GradedSubjects() []SubjectYearlyAverage {
	graded := make([]SubjectYearlyAverage, 0, len(ys.Subjects))
	for _, s := range ys.Subjects {
		if s.Graded() {
			graded = append(graded, s)
		}
	}
	return graded
}

// Decision is the verdict of the promotion rules for one student's year.
type Decision struct {
	Status                 academic.PromotionStatus `json:"status"`
	Reason                 string                   `json:"reason"`
	Rule                   string                   `json:"rule"` // name of the rule that decided
	TotalSubjects          int                      `json:"total_subjects"`
	FailingCoreSubjects    []string                 `json:"failing_core_subjects"`
	FailingNonCoreSubjects []string                 `json:"failing_non_core_subjects"`
	CanPromote             bool                     `json:"can_promote"`
	Recommendations        []string                 `json:"recommendations"`
}

// Record is the append-only audit entry written for every executed promotion.
type Record struct {
	ID            string                   `json:"id" db:"id"`
	StudentID     string                   `json:"student_id" db:"student_id"`
	AcademicYear  string                   `json:"academic_year" db:"academic_year"`
	PreviousGrade int                      `json:"previous_grade" db:"previous_grade"`
	NewGrade      null.Int                 `json:"new_grade" db:"new_grade"`
	Status        academic.PromotionStatus `json:"status" db:"status"`
	PromotedBy    string                   `json:"promoted_by" db:"promoted_by"`
	Notes         string                   `json:"notes" db:"notes"`
	CreatedAt     time.Time                `json:"created_at" db:"created_at"` // UTC
}

type QueryFilter struct {
	StudentID    string
	AcademicYear string
}

// Evaluation is the outcome of evaluating a student's year: what Promote applied
// or, for a preview, what it would apply.
type Evaluation struct {
	StudentID       string                   `json:"student_id"`
	StudentName     string                   `json:"student_name"`
	AcademicYear    string                   `json:"academic_year"`
	Department      academic.Department      `json:"department"`
	CurrentGrade    int                      `json:"current_grade"`
	Status          academic.PromotionStatus `json:"status"`
	PromotedToGrade null.Int                 `json:"promoted_to_grade"`
	Graduated       bool                     `json:"graduated"`
	Decision        Decision                 `json:"decision"`
	Summary         YearlySummary            `json:"summary"`
	CoreSubjects    []string                 `json:"core_subjects"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Record          *Record                  `json:"record,omitempty"`
}

// batch outcome categories
const (
	OutcomePromoted    = "promoted"
	OutcomeConditional = "conditional"
	OutcomeNotPromoted = "not_promoted"
	OutcomeGraduated   = "graduated"
	OutcomeError       = "error"
)

// BatchItem is the result of promoting one student of a batch.
type BatchItem struct {
	StudentID string                   `json:"student_id"`
	Success   bool                     `json:"success"`
	Message   string                   `json:"message"`
	Status    academic.PromotionStatus `json:"status,omitempty"`
}

// BatchCounts counts a batch's items per outcome.
type BatchCounts struct {
	Promoted    int `json:"promoted"`
	Conditional int `json:"conditional"`
	NotPromoted int `json:"not_promoted"`
	Graduated   int `json:"graduated"`
	Errors      int `json:"errors"`
}

// BatchResult lists a batch's items in input order.
type BatchResult struct {
	AcademicYear string      `json:"academic_year"`
	Total        int         `json:"total"`
	Counts       BatchCounts `json:"counts"`
	Items        []BatchItem `json:"items"`
}

// Outcome maps a final promotion status to its batch category.
func Outcome(status academic.PromotionStatus) string {
	switch status {
	case academic.StatusPromoted:
		return OutcomePromoted
	case academic.StatusConditionalPromoted:
		return OutcomeConditional
	case academic.StatusGraduated:
		return OutcomeGraduated
	default:
		return OutcomeNotPromoted
	}
}
