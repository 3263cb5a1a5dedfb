package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

var (
	defaultStudentOrdering = []core.DBOrdering{
		{Field: "last_name", Ascending: true},
		{Field: "first_name", Ascending: true},
	}

	studentComparators = map[string]comparator[student.Student]{
		"first_name":  func(a, b student.Student) int { return compareStrings(a.FirstName, b.FirstName) },
		"last_name":   func(a, b student.Student) int { return compareStrings(a.LastName, b.LastName) },
		"grade_level": func(a, b student.Student) int { return compareInts(a.GradeLevel, b.GradeLevel) },
		"created_at":  func(a, b student.Student) int { return compareTimes(a.CreatedAt, b.CreatedAt) },
	}
)

type studentRepository struct {
	db *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	st.ID = uuid.New().String()
	repo.db.put(ctx, st.ID, st)
	return st, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.rows[id]; ok {
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, st := range repo.db.all() {
		if filter == nil || matchStudent(st, filter) {
			students = append(students, st)
		}
	}
	if len(ordering) == 0 {
		ordering = defaultStudentOrdering
	}
	sortRows(students, ordering, studentComparators)
	return students, nil
}

func matchStudent(st student.Student, filter *student.QueryFilter) bool {
	if filter.Search != "" && !(containsFold(st.FirstName, filter.Search) || containsFold(st.LastName, filter.Search)) {
		return false
	}
	if filter.GradeLevel != 0 && st.GradeLevel != filter.GradeLevel {
		return false
	}
	if filter.Department != "" && string(st.Department) != filter.Department {
		return false
	}
	if filter.PromotionStatus != "" && string(st.PromotionStatus) != filter.PromotionStatus {
		return false
	}
	if filter.Graduated != nil && st.Graduated != *filter.Graduated {
		return false
	}
	return true
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.rows[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	st.CreatedAt = orig.CreatedAt
	repo.db.put(ctx, st.ID, st)
	return st, nil
}
