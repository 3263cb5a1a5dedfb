package promotion

import (
	"fmt"
	"strings"

	"github.com/trezcool/darasa/core/academic"
)

// facts are the inputs every promotion rule looks at.
type facts struct {
	total          int
	failingCore    []string
	failingNonCore []string
}

type rule struct {
	name    string
	applies func(f facts) bool
	decide  func(f facts) Decision
}

// rules are evaluated top to bottom; the first one that applies decides.
// Core subjects gate promotion, non-core subjects never block it.
var rules = []rule{
	{
		name:    "insufficient subject count",
		applies: func(f facts) bool { return f.total < academic.MinSubjects },
		decide: func(f facts) Decision {
			return Decision{
				Status: academic.StatusNotPromoted,
				Reason: fmt.Sprintf(
					"insufficient subject count: %d graded subject(s), at least %d required",
					f.total, academic.MinSubjects,
				),
				Recommendations: []string{
					fmt.Sprintf("Record grades for at least %d subjects before evaluating promotion.", academic.MinSubjects),
					"Check with subject teachers for missing semester grades.",
				},
			}
		},
	},
	{
		name:    "two or more failing core subjects",
		applies: func(f facts) bool { return len(f.failingCore) >= 2 },
		decide: func(f facts) Decision {
			recs := []string{
				"Repeat the current grade with a remediation plan for: " + join(f.failingCore) + ".",
				"Arrange tutoring sessions for every failing core subject.",
				"Meet with the student's guardian to agree on a study schedule.",
			}
			if len(f.failingNonCore) > 0 {
				recs = append(recs, "Also review progress in: "+join(f.failingNonCore)+".")
			}
			return Decision{
				Status:          academic.StatusNotPromoted,
				Reason:          fmt.Sprintf("failed %d core subjects: %s", len(f.failingCore), join(f.failingCore)),
				Recommendations: recs,
			}
		},
	},
	{
		name:    "one failing core subject",
		applies: func(f facts) bool { return len(f.failingCore) == 1 },
		decide: func(f facts) Decision {
			reason := "conditionally promoted with one failing core subject: " + f.failingCore[0]
			recs := []string{
				"Attend remedial classes in " + f.failingCore[0] + " during the next academic year.",
				"Review " + f.failingCore[0] + " progress at the end of the first semester.",
			}
			if len(f.failingNonCore) > 0 {
				reason += "; also failing non-core subjects: " + join(f.failingNonCore)
				recs = append(recs, "Seek extra support in: "+join(f.failingNonCore)+".")
			}
			return Decision{
				Status:          academic.StatusConditionalPromoted,
				Reason:          reason,
				CanPromote:      true,
				Recommendations: recs,
			}
		},
	},
	{
		name:    "no failing core subject",
		applies: func(f facts) bool { return len(f.failingCore) == 0 },
		decide: func(f facts) Decision {
			reason := "passed all core subjects"
			var recs []string
			if len(f.failingNonCore) > 0 {
				reason += "; failing non-core subjects (advisory only): " + join(f.failingNonCore)
				recs = append(recs, "Consider extra practice in: "+join(f.failingNonCore)+".")
			} else {
				recs = append(recs, "Keep up the good work.")
			}
			return Decision{
				Status:          academic.StatusPromoted,
				Reason:          reason,
				CanPromote:      true,
				Recommendations: recs,
			}
		},
	},
}

// Decide applies the promotion rules to the yearly averages of a student in dept.
// Only subjects with a nonzero yearly average are considered; a subject fails when its
// yearly average is below academic.PassMark. An unknown department has no core subjects.
func Decide(subjects []SubjectYearlyAverage, dept academic.Department) Decision {
	f := facts{
		failingCore:    []string{},
		failingNonCore: []string{},
	}
	for _, s := range subjects {
		if !s.Graded() {
			continue
		}
		f.total++
		if s.YearlyAverage >= academic.PassMark {
			continue
		}
		if academic.IsCoreSubject(dept, s.Subject) {
			f.failingCore = append(f.failingCore, s.Subject)
		} else {
			f.failingNonCore = append(f.failingNonCore, s.Subject)
		}
	}

	for _, r := range rules {
		if !r.applies(f) {
			continue
		}
		d := r.decide(f)
		d.Rule = r.name
		d.TotalSubjects = f.total
		d.FailingCoreSubjects = f.failingCore
		d.FailingNonCoreSubjects = f.failingNonCore
		if d.Recommendations == nil {
			d.Recommendations = []string{}
		}
		return d
	}
	panic("promotion: no rule applies") // the last rule matches every remaining case
}

func join(subjects []string) string {
	return strings.Join(subjects, ", ")
}
