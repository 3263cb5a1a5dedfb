package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

const studentColumns = `id, first_name, last_name, guardian_email, grade_level, department,
	promotion_status, promoted_to_grade, graduated, graduation_date, created_at, updated_at`

var studentOrderingColumns = map[string]string{
	"first_name":  "first_name",
	"last_name":   "last_name",
	"grade_level": "grade_level",
	"created_at":  "created_at",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	st.CreatedAt = st.CreatedAt.UTC()
	st.UpdatedAt = st.UpdatedAt.UTC()
	q := `INSERT INTO student (` + studentColumns + `) VALUES (
		:id, :first_name, :last_name, :guardian_email, :grade_level, :department,
		:promotion_status, :promoted_to_grade, :graduated, :graduation_date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), q, st); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var st student.Student
	q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
	if err := sqlx.GetContext(ctx, executor(ctx, repo.db), &st, q, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return st, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("first_name ILIKE ? OR last_name ILIKE ?", val, val)
		}
		if filter.GradeLevel != 0 {
			w.add("grade_level = ?", filter.GradeLevel)
		}
		if filter.Department != "" {
			w.add("department = ?", filter.Department)
		}
		if filter.PromotionStatus != "" {
			w.add("promotion_status = ?", filter.PromotionStatus)
		}
		if filter.Graduated != nil {
			w.add("graduated = ?", *filter.Graduated)
		}
	}

	exec := executor(ctx, repo.db)
	q := `SELECT ` + studentColumns + ` FROM student` + w.String() +
		orderBy(ordering, studentOrderingColumns, "last_name ASC, first_name ASC")

	students := make([]student.Student, 0)
	if err := sqlx.SelectContext(ctx, exec, &students, exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.UpdatedAt = st.UpdatedAt.UTC()
	q := `UPDATE student SET
		first_name = :first_name, last_name = :last_name, guardian_email = :guardian_email,
		grade_level = :grade_level, department = :department, promotion_status = :promotion_status,
		promoted_to_grade = :promoted_to_grade, graduated = :graduated,
		graduation_date = :graduation_date, updated_at = :updated_at
		WHERE id = :id
		RETURNING created_at`
	exec := executor(ctx, repo.db)
	query, args, err := exec.BindNamed(q, st)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "binding student")
	}
	if err = sqlx.GetContext(ctx, exec, &st.CreatedAt, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return st, nil
}
