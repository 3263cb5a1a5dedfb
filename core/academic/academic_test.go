package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreSubjects(t *testing.T) {
	tests := []struct {
		dept    Department
		wantLen int
	}{
		{dept: DepartmentJHS, wantLen: 4},
		{dept: DepartmentScience, wantLen: 7},
		{dept: DepartmentArts, wantLen: 7},
		{dept: Department("Commerce"), wantLen: 0},
		{dept: Department(""), wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.dept), func(t *testing.T) {
			got := CoreSubjects(tt.dept)
			if got == nil {
				t.Fatal("CoreSubjects() returned nil")
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(CoreSubjects()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestCoreSubjects_returnsCopy(t *testing.T) {
	got := CoreSubjects(DepartmentJHS)
	got[0] = "Drawing"
	assert.Equal(t, "English", CoreSubjects(DepartmentJHS)[0])
}

func TestIsCoreSubject(t *testing.T) {
	tests := []struct {
		name    string
		dept    Department
		subject string
		want    bool
	}{
		{name: "exact", dept: DepartmentJHS, subject: "Science", want: true},
		{name: "alias", dept: DepartmentJHS, subject: "General Science", want: true},
		{name: "alias any case", dept: DepartmentJHS, subject: "  general   SCIENCE ", want: true},
		{name: "case insensitive", dept: DepartmentArts, subject: "mathematics", want: true},
		{name: "elective", dept: DepartmentJHS, subject: "French", want: false},
		{name: "other department's core", dept: DepartmentArts, subject: "Physics", want: false},
		{name: "alias only applies to science", dept: DepartmentScience, subject: "General Science", want: false},
		{name: "unknown department", dept: Department("Commerce"), subject: "English", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCoreSubject(tt.dept, tt.subject); got != tt.want {
				t.Errorf("IsCoreSubject(%q, %q) = %v, want %v", tt.dept, tt.subject, got, tt.want)
			}
		})
	}
}

func TestCanonicalSubject(t *testing.T) {
	assert.Equal(t, "Science", CanonicalSubject("General Science"))
	assert.Equal(t, "Social Studies", CanonicalSubject("social  studies"))
	assert.Equal(t, "Woodwork", CanonicalSubject(" Woodwork "))
	assert.True(t, SameSubject("General Science", "science"))
	assert.False(t, SameSubject("Science", "Social Studies"))
}

func TestParseDepartment(t *testing.T) {
	for _, in := range []string{"jhs", "JHS", " science ", "ARTS"} {
		if _, ok := ParseDepartment(in); !ok {
			t.Errorf("ParseDepartment(%q) failed", in)
		}
	}
	if _, ok := ParseDepartment("commerce"); ok {
		t.Error("ParseDepartment(commerce) should fail")
	}
}

func TestIsValidAcademicYear(t *testing.T) {
	tests := []struct {
		year string
		want bool
	}{
		{year: "2024/2025", want: true},
		{year: "1999/2000", want: true},
		{year: "2024/2026", want: false},
		{year: "2025/2024", want: false},
		{year: "2024-2025", want: false},
		{year: "24/25", want: false},
		{year: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			if got := IsValidAcademicYear(tt.year); got != tt.want {
				t.Errorf("IsValidAcademicYear(%q) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

func TestIsDepartmentSubject(t *testing.T) {
	assert.True(t, IsDepartmentSubject(DepartmentJHS, "General Science"))
	assert.True(t, IsDepartmentSubject(DepartmentScience, "French"))
	assert.False(t, IsDepartmentSubject(DepartmentJHS, "Physics"))
	assert.False(t, IsDepartmentSubject(Department("Commerce"), "English"))
}
