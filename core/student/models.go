package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
)

// Student is the part of a student's record the promotion engine reads and writes.
type Student struct {
	ID              string                   `json:"id" db:"id"`
	FirstName       string                   `json:"first_name" db:"first_name"`
	LastName        string                   `json:"last_name" db:"last_name"`
	GuardianEmail   string                   `json:"guardian_email,omitempty" db:"guardian_email"`
	GradeLevel      int                      `json:"grade_level" db:"grade_level"`
	Department      academic.Department      `json:"department" db:"department"`
	PromotionStatus academic.PromotionStatus `json:"promotion_status" db:"promotion_status"`
	PromotedToGrade null.Int                 `json:"promoted_to_grade" db:"promoted_to_grade"`
	Graduated       bool                     `json:"graduated" db:"graduated"`
	GraduationDate  null.Time                `json:"graduation_date" db:"graduation_date"` // UTC
	CreatedAt       time.Time                `json:"created_at" db:"created_at"`           // UTC
	UpdatedAt       time.Time                `json:"updated_at" db:"updated_at"`           // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required,notblank"`
	LastName      string `json:"last_name" validate:"required,notblank"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	GradeLevel    int    `json:"grade_level" validate:"required,gradelevel"`
	Department    string `json:"department" validate:"required,department"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	if dept, ok := academic.ParseDepartment(ns.Department); ok {
		ns.Department = string(dept)
	}
	return validate.Struct(ns)
}

// EnrollmentStatus is the manual status change admins may apply outside of promotions.
type EnrollmentStatus struct {
	Status academic.PromotionStatus `json:"status" validate:"required"`
}

func (es EnrollmentStatus) Validate(validate *validator.Validate) error {
	if err := validate.Struct(es); err != nil {
		return err
	}
	if es.Status != academic.StatusAskedNotToEnroll && es.Status != academic.StatusNotPromoted {
		return core.NewValidationError(errInvalidEnrollmentStatus, core.FieldError{
			Field: "status",
			Error: errInvalidEnrollmentStatus.Error(),
		})
	}
	return nil
}

type QueryFilter struct {
	Search          string `query:"search"`
	GradeLevel      int    `query:"grade_level"`
	Department      string `query:"department"`
	PromotionStatus string `query:"promotion_status"`
	Graduated       *bool  `query:"graduated"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if dept, ok := academic.ParseDepartment(qf.Department); ok {
		qf.Department = string(dept)
	}
}

// OrderingFields are the json field names students may be ordered by.
var OrderingFields = map[string]string{
	"first_name":  "first_name",
	"last_name":   "last_name",
	"grade_level": "grade_level",
	"created_at":  "created_at",
}
