// Package academic holds the school-wide enumerations every other package agrees on:
// departments and their subjects, promotion statuses, grade levels, semesters
// and academic years.
package academic

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// PassMark is the lowest yearly average that passes a subject.
	PassMark = 70.0
	// MinSubjects is the number of graded subjects a student needs to be evaluated for promotion.
	MinSubjects = 8

	MinGradeLevel = 1
	// TerminalGrade is the last grade level; promoting from it graduates the student.
	TerminalGrade = 12

	Semester1 = 1
	Semester2 = 2
)

type Department string

const (
	DepartmentJHS     Department = "JHS"
	DepartmentScience Department = "Science"
	DepartmentArts    Department = "Arts"
)

var Departments = []Department{DepartmentJHS, DepartmentScience, DepartmentArts}

// ParseDepartment matches s against the known departments, ignoring case.
func ParseDepartment(s string) (Department, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Departments {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

func (d Department) IsValid() bool {
	_, ok := coreSubjects[d]
	return ok
}

type PromotionStatus string

const (
	StatusNotPromoted         PromotionStatus = "Not Promoted"
	StatusPromoted            PromotionStatus = "Promoted"
	StatusConditionalPromoted PromotionStatus = "Conditional Promotion"
	StatusAskedNotToEnroll    PromotionStatus = "Asked Not to Enroll"
	StatusGraduated           PromotionStatus = "Graduated"
)

var PromotionStatuses = []PromotionStatus{
	StatusNotPromoted,
	StatusPromoted,
	StatusConditionalPromoted,
	StatusAskedNotToEnroll,
	StatusGraduated,
}

func (s PromotionStatus) IsValid() bool {
	for _, status := range PromotionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidGradeLevel(level int) bool {
	return level >= MinGradeLevel && level <= TerminalGrade
}

func IsValidSemester(semester int) bool {
	return semester == Semester1 || semester == Semester2
}

var academicYearRegex = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// IsValidAcademicYear checks the "YYYY/YYYY" format where the second year follows the first.
func IsValidAcademicYear(year string) bool {
	m := academicYearRegex.FindStringSubmatch(year)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
