package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/promotion"
)

type promotionRepository struct {
	db *table[promotion.Record]
}

var _ promotion.Repository = (*promotionRepository)(nil)

func NewPromotionRepository(db *DB) promotion.Repository {
	return &promotionRepository{db: db.promotion}
}

func (repo *promotionRepository) CreatePromotionRecord(ctx context.Context, rec promotion.Record) (promotion.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.put(ctx, rec.ID, rec)
	return rec, nil
}

func (repo *promotionRepository) QueryPromotionRecords(_ context.Context, filter promotion.QueryFilter) ([]promotion.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	all := repo.db.all()
	recs := make([]promotion.Record, 0)
	// newest first: walk the insertion order backwards
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.AcademicYear != "" && rec.AcademicYear != filter.AcademicYear {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
