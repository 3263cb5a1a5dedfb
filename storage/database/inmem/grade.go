package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/grade"
)

type gradeRepository struct {
	db *table[grade.Record]
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func copyGradeRecord(rec grade.Record) grade.Record {
	subjects := make([]grade.SubjectScore, len(rec.Subjects))
	for i, sub := range rec.Subjects {
		sub.Scores = append([]float64{}, sub.Scores...)
		subjects[i] = sub
	}
	rec.Subjects = subjects
	return rec
}

func (repo *gradeRepository) UpsertGradeRecord(ctx context.Context, rec grade.Record) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.all() {
		if existing.StudentID == rec.StudentID &&
			existing.AcademicYear == rec.AcademicYear &&
			existing.Semester == rec.Semester {
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			break
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.put(ctx, rec.ID, copyGradeRecord(rec))
	return rec, nil
}

func (repo *gradeRepository) QueryGradeRecords(_ context.Context, filter grade.QueryFilter) ([]grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]grade.Record, 0)
	for _, rec := range repo.db.all() {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.AcademicYear != "" && rec.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Semester != 0 && rec.Semester != filter.Semester {
			continue
		}
		recs = append(recs, copyGradeRecord(rec))
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].AcademicYear != recs[j].AcademicYear {
			return recs[i].AcademicYear < recs[j].AcademicYear
		}
		return recs[i].Semester < recs[j].Semester
	})
	return recs, nil
}
