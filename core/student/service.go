package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
)

var (
	// errors
	ErrNotFound                = core.NewNotFoundError("student not found")
	errInvalidEnrollmentStatus = errors.New("only \"Asked Not to Enroll\" or \"Not Promoted\" may be set manually")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		SetEnrollmentStatus(ctx context.Context, id string, es EnrollmentStatus) (Student, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	dept, _ := academic.ParseDepartment(ns.Department)
	now := time.Now().UTC()
	st := Student{
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		GuardianEmail:   ns.GuardianEmail,
		GradeLevel:      ns.GradeLevel,
		Department:      dept,
		PromotionStatus: academic.StatusNotPromoted,
		PromotedToGrade: null.Int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// SetEnrollmentStatus applies the manual "Asked Not to Enroll" decision, or lifts it.
func (svc *service) SetEnrollmentStatus(ctx context.Context, id string, es EnrollmentStatus) (Student, error) {
	st, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, errors.Wrap(err, "finding student")
	}
	if st.Graduated {
		return Student{}, core.NewPreconditionError("student has already graduated")
	}
	st.PromotionStatus = es.Status
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}
