package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/grade"
)

type subjectDoc struct {
	Subject         string    `bson:"subject"`
	Scores          []float64 `bson:"scores"`
	SemesterAverage *float64  `bson:"semester_average"`
}

type gradeDoc struct {
	ID           string       `bson:"_id"`
	StudentID    string       `bson:"student_id"`
	AcademicYear string       `bson:"academic_year"`
	Semester     int          `bson:"semester"`
	Subjects     []subjectDoc `bson:"subjects"`
	RecordedBy   string       `bson:"recorded_by"`
	CreatedAt    time.Time    `bson:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at"`
}

func toSubjectDocs(subjects []grade.SubjectScore) []subjectDoc {
	docs := make([]subjectDoc, 0, len(subjects))
	for _, s := range subjects {
		scores := s.Scores
		if scores == nil {
			scores = []float64{}
		}
		docs = append(docs, subjectDoc{Subject: s.Subject, Scores: scores, SemesterAverage: float64Ptr(s.SemesterAverage)})
	}
	return docs
}

func (d gradeDoc) toRecord() grade.Record {
	subjects := make([]grade.SubjectScore, 0, len(d.Subjects))
	for _, s := range d.Subjects {
		subjects = append(subjects, grade.SubjectScore{
			Subject:         s.Subject,
			Scores:          s.Scores,
			SemesterAverage: null.Float64FromPtr(s.SemesterAverage),
		})
	}
	return grade.Record{
		ID:           d.ID,
		StudentID:    d.StudentID,
		AcademicYear: d.AcademicYear,
		Semester:     d.Semester,
		Subjects:     subjects,
		RecordedBy:   d.RecordedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type gradeRepository struct {
	coll *mongo.Collection
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{coll: db.collection(gradesCollection)}
}

func (repo *gradeRepository) UpsertGradeRecord(ctx context.Context, rec grade.Record) (grade.Record, error) {
	key := bson.M{
		"student_id":    rec.StudentID,
		"academic_year": rec.AcademicYear,
		"semester":      rec.Semester,
	}
	update := bson.M{
		"$set": bson.M{
			"subjects":    toSubjectDocs(rec.Subjects),
			"recorded_by": rec.RecordedBy,
			"updated_at":  rec.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"created_at": rec.CreatedAt.UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc gradeDoc
	if err := repo.coll.FindOneAndUpdate(ctx, key, update, opts).Decode(&doc); err != nil {
		return grade.Record{}, errors.Wrap(err, "upserting grade record")
	}
	return doc.toRecord(), nil
}

func (repo *gradeRepository) QueryGradeRecords(ctx context.Context, filter grade.QueryFilter) ([]grade.Record, error) {
	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.AcademicYear != "" {
		query["academic_year"] = filter.AcademicYear
	}
	if filter.Semester != 0 {
		query["semester"] = filter.Semester
	}

	opts := options.Find().SetSort(bson.D{{Key: "academic_year", Value: 1}, {Key: "semester", Value: 1}})
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding grade records")
	}
	var docs []gradeDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding grade records")
	}
	recs := make([]grade.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.toRecord())
	}
	return recs, nil
}
