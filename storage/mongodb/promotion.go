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

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/promotion"
)

type promotionDoc struct {
	ID            string    `bson:"_id"`
	StudentID     string    `bson:"student_id"`
	AcademicYear  string    `bson:"academic_year"`
	PreviousGrade int       `bson:"previous_grade"`
	NewGrade      *int      `bson:"new_grade"`
	Status        string    `bson:"status"`
	PromotedBy    string    `bson:"promoted_by"`
	Notes         string    `bson:"notes"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d promotionDoc) toRecord() promotion.Record {
	return promotion.Record{
		ID:            d.ID,
		StudentID:     d.StudentID,
		AcademicYear:  d.AcademicYear,
		PreviousGrade: d.PreviousGrade,
		NewGrade:      null.IntFromPtr(d.NewGrade),
		Status:        academic.PromotionStatus(d.Status),
		PromotedBy:    d.PromotedBy,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
	}
}

type promotionRepository struct {
	coll *mongo.Collection
}

var _ promotion.Repository = (*promotionRepository)(nil)

func NewPromotionRepository(db *DB) promotion.Repository {
	return &promotionRepository{coll: db.collection(promotionsCollection)}
}

func (repo *promotionRepository) CreatePromotionRecord(ctx context.Context, rec promotion.Record) (promotion.Record, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = rec.CreatedAt.UTC()
	doc := promotionDoc{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		AcademicYear:  rec.AcademicYear,
		PreviousGrade: rec.PreviousGrade,
		NewGrade:      intPtr(rec.NewGrade),
		Status:        string(rec.Status),
		PromotedBy:    rec.PromotedBy,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return promotion.Record{}, errors.Wrap(err, "inserting promotion record")
	}
	return rec, nil
}

func (repo *promotionRepository) QueryPromotionRecords(ctx context.Context, filter promotion.QueryFilter) ([]promotion.Record, error) {
	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.AcademicYear != "" {
		query["academic_year"] = filter.AcademicYear
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding promotion records")
	}
	var docs []promotionDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding promotion records")
	}
	recs := make([]promotion.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.toRecord())
	}
	return recs, nil
}
