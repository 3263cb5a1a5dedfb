package academic

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	academicYearTag  = "academicyear"
	academicYearText = "academic year must be formatted as YYYY/YYYY, e.g. 2024/2025"

	departmentTag  = "department"
	departmentText = "department must be one of JHS, Science or Arts"

	semesterTag  = "semester"
	semesterText = "semester must be 1 or 2"

	gradeLevelTag  = "gradelevel"
	gradeLevelText = "grade level must be between 1 and 12"
)

// InitValidators registers the academic validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(academicYearTag, func(fl validator.FieldLevel) bool {
		return IsValidAcademicYear(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, academicYearTag, academicYearText)

	_ = validate.RegisterValidation(departmentTag, func(fl validator.FieldLevel) bool {
		_, ok := ParseDepartment(fl.Field().String())
		return ok
	})
	core.RegisterCustomTranslation(validate, translator, departmentTag, departmentText)

	_ = validate.RegisterValidation(semesterTag, func(fl validator.FieldLevel) bool {
		return IsValidSemester(int(fl.Field().Int()))
	})
	core.RegisterCustomTranslation(validate, translator, semesterTag, semesterText)

	_ = validate.RegisterValidation(gradeLevelTag, func(fl validator.FieldLevel) bool {
		return IsValidGradeLevel(int(fl.Field().Int()))
	})
	core.RegisterCustomTranslation(validate, translator, gradeLevelTag, gradeLevelText)
}
