package grade

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

var errInvalidSubjects = errors.New("invalid subjects")

type (
	Repository interface {
		// UpsertGradeRecord inserts rec, or replaces the record already saved for the same
		// (StudentID, AcademicYear, Semester), keeping its ID and CreatedAt.
		UpsertGradeRecord(ctx context.Context, rec Record) (Record, error)
		// QueryGradeRecords returns the matching records ordered by academic year then semester.
		QueryGradeRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	Service interface {
		Save(ctx context.Context, actorID, studentID string, nr NewRecord) (Record, error)
		Query(ctx context.Context, studentID, academicYear string) ([]Record, error)
	}

	service struct {
		repo     Repository
		students student.Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students student.Repository, validate *validator.Validate) Service {
	return &service{repo: repo, students: students, validate: validate}
}

// Save validates nr against the student's department and stores it, computing every
// subject's semester average.
func (svc *service) Save(ctx context.Context, actorID, studentID string, nr NewRecord) (Record, error) {
	st, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Record{}, errors.Wrap(err, "finding student")
	}
	if err = nr.Validate(svc.validate, st.Department); err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		StudentID:    st.ID,
		AcademicYear: nr.AcademicYear,
		Semester:     nr.Semester,
		Subjects:     make([]SubjectScore, 0, len(nr.Subjects)),
		RecordedBy:   actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, sub := range nr.Subjects {
		scores := sub.Scores
		if scores == nil {
			scores = []float64{}
		}
		rec.Subjects = append(rec.Subjects, SubjectScore{
			Subject:         sub.Subject,
			Scores:          scores,
			SemesterAverage: SemesterAverage(scores),
		})
	}

	rec, err = svc.repo.UpsertGradeRecord(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "saving grade record")
	}
	return rec, nil
}

func (svc *service) Query(ctx context.Context, studentID, academicYear string) ([]Record, error) {
	recs, err := svc.repo.QueryGradeRecords(ctx, QueryFilter{StudentID: studentID, AcademicYear: academicYear})
	if err != nil {
		return nil, errors.Wrap(err, "querying grade records")
	}
	return recs, nil
}
