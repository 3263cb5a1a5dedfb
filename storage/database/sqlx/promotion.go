package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/promotion"
)

const promotionColumns = `id, student_id, academic_year, previous_grade, new_grade, status, promoted_by, notes, created_at`

type promotionRepository struct {
	db *sqlx.DB
}

var _ promotion.Repository = (*promotionRepository)(nil)

func NewPromotionRepository(db *sqlx.DB) promotion.Repository {
	return &promotionRepository{db: db}
}

func (repo *promotionRepository) CreatePromotionRecord(ctx context.Context, rec promotion.Record) (promotion.Record, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = rec.CreatedAt.UTC()
	q := `INSERT INTO promotion_record (` + promotionColumns + `) VALUES (
		:id, :student_id, :academic_year, :previous_grade, :new_grade, :status, :promoted_by, :notes, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), q, rec); err != nil {
		return promotion.Record{}, errors.Wrap(err, "inserting promotion record")
	}
	return rec, nil
}

func (repo *promotionRepository) QueryPromotionRecords(ctx context.Context, filter promotion.QueryFilter) ([]promotion.Record, error) {
	var w where
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return []promotion.Record{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = ?", filter.AcademicYear)
	}

	exec := executor(ctx, repo.db)
	q := `SELECT ` + promotionColumns + ` FROM promotion_record` + w.String() + ` ORDER BY created_at DESC, id`

	recs := make([]promotion.Record, 0)
	if err := sqlx.SelectContext(ctx, exec, &recs, exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting promotion records")
	}
	return recs, nil
}
