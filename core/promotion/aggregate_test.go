package promotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
)

func TestYearlyAverage(t *testing.T) {
	tests := []struct {
		name   string
		s1, s2 float64
		want   float64
	}{
		{"both semesters", 80, 80, 80},
		{"mean is rounded", 70.25, 80.5, 75.38},
		{"semester 1 missing", 0, 80, 80},
		{"semester 2 missing", 65, 0, 65},
		{"never graded", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearlyAverage(tt.s1, tt.s2))
		})
	}
}

func score(subject string, avg null.Float64) grade.SubjectScore {
	return grade.SubjectScore{Subject: subject, SemesterAverage: avg}
}

func TestAggregate(t *testing.T) {
	recs := []grade.Record{
		// semester 2 listed first on purpose
		{Semester: academic.Semester2, Subjects: []grade.SubjectScore{
			score("Mathematics", null.Float64From(80)),
			score("English", null.Float64From(60)),
			score("science", null.Float64From(90)),
			score("Drama", null.Float64From(72)),
		}},
		{Semester: academic.Semester1, Subjects: []grade.SubjectScore{
			score("English", null.Float64From(80)),
			score("Mathematics", null.Float64{}),
			score("General Science", null.Float64From(70)),
			score("French", null.Float64{}),
		}},
	}

	summary := Aggregate(recs)
	assert.True(t, summary.Complete())

	want := []SubjectYearlyAverage{
		{Subject: "English", Semester1Average: 80, Semester2Average: 60, YearlyAverage: 70, PassFail: ResultPass},
		{Subject: "Mathematics", Semester2Average: 80, YearlyAverage: 80, PassFail: ResultPass},
		{Subject: "Science", Semester1Average: 70, Semester2Average: 90, YearlyAverage: 80, PassFail: ResultPass},
		{Subject: "French", PassFail: ResultNoGrade},
		{Subject: "Drama", Semester2Average: 72, YearlyAverage: 72, PassFail: ResultPass},
	}
	assert.Equal(t, want, summary.Subjects)
	assert.Equal(t, 75.5, summary.OverallAverage) // (70+80+80+72)/4
	assert.Len(t, summary.GradedSubjects(), 4)
}

func TestAggregate_singleSemester(t *testing.T) {
	summary := Aggregate([]grade.Record{
		{Semester: academic.Semester1, Subjects: []grade.SubjectScore{score("English", null.Float64From(65))}},
	})
	assert.True(t, summary.Semester1Exists)
	assert.False(t, summary.Semester2Exists)
	assert.False(t, summary.Complete())
	assert.Equal(t, []SubjectYearlyAverage{
		{Subject: "English", Semester1Average: 65, YearlyAverage: 65, PassFail: ResultFail},
	}, summary.Subjects)
	assert.Equal(t, 65.0, summary.OverallAverage)
}

func TestAggregate_empty(t *testing.T) {
	summary := Aggregate(nil)
	assert.NotNil(t, summary.Subjects)
	assert.Empty(t, summary.Subjects)
	assert.Zero(t, summary.OverallAverage)
	assert.False(t, summary.Semester1Exists)
}

func TestAggregate_negativeAverageCountsAsMissing(t *testing.T) {
	summary := Aggregate([]grade.Record{
		{Semester: academic.Semester1, Subjects: []grade.SubjectScore{score("English", null.Float64From(-5))}},
		{Semester: academic.Semester2, Subjects: []grade.SubjectScore{score("English", null.Float64From(75))}},
	})
	assert.Equal(t, 75.0, summary.Subjects[0].YearlyAverage)
}
