package promotion

import (
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
)

// Aggregate merges the semester records of one academic year into yearly subject averages.
// Subjects are matched by canonical name and listed in order of first appearance,
// semester 1 first. A missing or null semester average counts as 0; a subject graded
// in one semester only takes that semester's average, and a subject with no grade in
// either semester gets a yearly average of 0.
func Aggregate(recs []grade.Record) YearlySummary {
	type semesters struct {
		name   string
		s1, s2 float64
	}

	var (
		summary YearlySummary
		order   []string
		index   = make(map[string]*semesters)
	)

	add := func(semester int, sub grade.SubjectScore) {
		name := academic.CanonicalSubject(sub.Subject)
		key := strings.ToLower(name)
		entry, ok := index[key]
		if !ok {
			entry = &semesters{name: name}
			index[key] = entry
			order = append(order, key)
		}
		avg := sub.SemesterAverage.Float64 // zero if null
		if !sub.SemesterAverage.Valid || avg < 0 {
			avg = 0
		}
		switch semester {
		case academic.Semester1:
			if entry.s1 == 0 {
				entry.s1 = avg
			}
		case academic.Semester2:
			if entry.s2 == 0 {
				entry.s2 = avg
			}
		}
	}

	// semester 1 subjects come first whatever the records order
	for _, semester := range []int{academic.Semester1, academic.Semester2} {
		for _, rec := range recs {
			if rec.Semester != semester {
				continue
			}
			if semester == academic.Semester1 {
				summary.Semester1Exists = true
			} else {
				summary.Semester2Exists = true
			}
			for _, sub := range rec.Subjects {
				add(semester, sub)
			}
		}
	}

	summary.Subjects = make([]SubjectYearlyAverage, 0, len(order))
	var (
		total  float64
		graded int
	)
	for _, key := range order {
		entry := index[key]
		yearly := YearlyAverage(entry.s1, entry.s2)
		result := ResultNoGrade
		if yearly > 0 {
			total += yearly
			graded++
			result = ResultPass
			if yearly < academic.PassMark {
				result = ResultFail
			}
		}
		summary.Subjects = append(summary.Subjects, SubjectYearlyAverage{
			Subject:          entry.name,
			Semester1Average: entry.s1,
			Semester2Average: entry.s2,
			YearlyAverage:    yearly,
			PassFail:         result,
		})
	}
	if graded > 0 {
		summary.OverallAverage = core.Round2(total / float64(graded))
	}
	return summary
}

// YearlyAverage combines two semester averages: the mean when both are nonzero,
// the nonzero one when only one is, 0 otherwise.
func YearlyAverage(s1, s2 float64) float64 {
	switch {
	case s1 > 0 && s2 > 0:
		return core.Round2((s1 + s2) / 2)
	case s1 > 0:
		return s1
	case s2 > 0:
		return s2
	default:
		return 0
	}
}
