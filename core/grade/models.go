package grade

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
)

// SubjectScore holds one subject's scores for a semester.
// SemesterAverage is null while the subject has no scores.
type SubjectScore struct {
	Subject         string       `json:"subject"`
	Scores          []float64    `json:"scores"`
	SemesterAverage null.Float64 `json:"semester_average"`
}

// Record is a student's grade sheet for one semester of an academic year.
// There is at most one Record per (StudentID, AcademicYear, Semester).
type Record struct {
	ID           string         `json:"id"`
	StudentID    string         `json:"student_id"`
	AcademicYear string         `json:"academic_year"`
	Semester     int            `json:"semester"`
	Subjects     []SubjectScore `json:"subjects"`
	RecordedBy   string         `json:"recorded_by"`
	CreatedAt    time.Time      `json:"created_at"` // UTC
	UpdatedAt    time.Time      `json:"updated_at"` // UTC
}

// NewSubjectScore contains the scores entered for one subject.
type NewSubjectScore struct {
	Subject string    `json:"subject" validate:"required,notblank"`
	Scores  []float64 `json:"scores" validate:"dive,gte=0,lte=100"`
}

// NewRecord contains information needed to save a semester's grades.
type NewRecord struct {
	AcademicYear string            `json:"academic_year" validate:"required,academicyear"`
	Semester     int               `json:"semester" validate:"required,semester"`
	Subjects     []NewSubjectScore `json:"subjects" validate:"required,min=1,dive"`
}

// Validate checks nr and that every subject is taught in dept, at most once.
func (nr *NewRecord) Validate(validate *validator.Validate, dept academic.Department) error {
	nr.AcademicYear = core.CleanString(nr.AcademicYear)
	for i := range nr.Subjects {
		nr.Subjects[i].Subject = academic.CanonicalSubject(nr.Subjects[i].Subject)
	}
	if err := validate.Struct(nr); err != nil {
		return err
	}

	var fldErrs []core.FieldError
	seen := make(map[string]bool, len(nr.Subjects))
	for i, sub := range nr.Subjects {
		field := fmt.Sprintf("subjects[%d].subject", i)
		switch {
		case !academic.IsDepartmentSubject(dept, sub.Subject):
			fldErrs = append(fldErrs, core.FieldError{
				Field: field,
				Error: fmt.Sprintf("%s is not taught in the %s department", sub.Subject, dept),
			})
		case seen[sub.Subject]:
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: sub.Subject + " is listed more than once"})
		}
		seen[sub.Subject] = true
	}
	if fldErrs != nil {
		return core.NewValidationError(errInvalidSubjects, fldErrs...)
	}
	return nil
}

// SemesterAverage is the mean of scores rounded to 2 decimals, or null without scores.
func SemesterAverage(scores []float64) null.Float64 {
	if len(scores) == 0 {
		return null.Float64{}
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return null.Float64From(core.Round2(sum / float64(len(scores))))
}

type QueryFilter struct {
	StudentID    string
	AcademicYear string
	Semester     int // 0 matches both semesters
}
