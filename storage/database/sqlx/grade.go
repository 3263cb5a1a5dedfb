package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/grade"
)

const gradeColumns = `id, student_id, academic_year, semester, subjects, recorded_by, created_at, updated_at`

type gradeRow struct {
	ID           string         `db:"id"`
	StudentID    string         `db:"student_id"`
	AcademicYear string         `db:"academic_year"`
	Semester     int            `db:"semester"`
	Subjects     types.JSONText `db:"subjects"`
	RecordedBy   string         `db:"recorded_by"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toGradeRow(rec grade.Record) (gradeRow, error) {
	subjects := rec.Subjects
	if subjects == nil {
		subjects = []grade.SubjectScore{}
	}
	raw, err := json.Marshal(subjects)
	if err != nil {
		return gradeRow{}, err
	}
	return gradeRow{
		ID:           rec.ID,
		StudentID:    rec.StudentID,
		AcademicYear: rec.AcademicYear,
		Semester:     rec.Semester,
		Subjects:     types.JSONText(raw),
		RecordedBy:   rec.RecordedBy,
		CreatedAt:    rec.CreatedAt.UTC(),
		UpdatedAt:    rec.UpdatedAt.UTC(),
	}, nil
}

func (r gradeRow) toRecord() (grade.Record, error) {
	rec := grade.Record{
		ID:           r.ID,
		StudentID:    r.StudentID,
		AcademicYear: r.AcademicYear,
		Semester:     r.Semester,
		RecordedBy:   r.RecordedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := r.Subjects.Unmarshal(&rec.Subjects); err != nil {
		return grade.Record{}, err
	}
	return rec, nil
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) UpsertGradeRecord(ctx context.Context, rec grade.Record) (grade.Record, error) {
	rec.ID = uuid.New().String()
	row, err := toGradeRow(rec)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "encoding subjects")
	}

	q := `INSERT INTO grade_record (` + gradeColumns + `) VALUES (
		:id, :student_id, :academic_year, :semester, :subjects, :recorded_by, :created_at, :updated_at)
		ON CONFLICT ON CONSTRAINT grade_record_student_year_semester_key DO UPDATE SET
			subjects = EXCLUDED.subjects,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	exec := executor(ctx, repo.db)
	query, args, err := exec.BindNamed(q, row)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "binding grade record")
	}
	if err = exec.QueryRowxContext(ctx, query, args...).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return grade.Record{}, errors.Wrap(err, "upserting grade record")
	}
	return rec, nil
}

func (repo *gradeRepository) QueryGradeRecords(ctx context.Context, filter grade.QueryFilter) ([]grade.Record, error) {
	var w where
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return []grade.Record{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = ?", filter.AcademicYear)
	}
	if filter.Semester != 0 {
		w.add("semester = ?", filter.Semester)
	}

	exec := executor(ctx, repo.db)
	q := `SELECT ` + gradeColumns + ` FROM grade_record` + w.String() + ` ORDER BY academic_year, semester`

	var rows []gradeRow
	if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting grade records")
	}
	recs := make([]grade.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toRecord()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding subjects of grade record %s", r.ID)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
