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

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/student"
)

var studentSortFields = map[string]string{
	"first_name":  "first_name",
	"last_name":   "last_name",
	"grade_level": "grade_level",
	"created_at":  "created_at",
}

type studentDoc struct {
	ID              string     `bson:"_id"`
	FirstName       string     `bson:"first_name"`
	LastName        string     `bson:"last_name"`
	GuardianEmail   string     `bson:"guardian_email"`
	GradeLevel      int        `bson:"grade_level"`
	Department      string     `bson:"department"`
	PromotionStatus string     `bson:"promotion_status"`
	PromotedToGrade *int       `bson:"promoted_to_grade"`
	Graduated       bool       `bson:"graduated"`
	GraduationDate  *time.Time `bson:"graduation_date"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

func toStudentDoc(st student.Student) studentDoc {
	return studentDoc{
		ID:              st.ID,
		FirstName:       st.FirstName,
		LastName:        st.LastName,
		GuardianEmail:   st.GuardianEmail,
		GradeLevel:      st.GradeLevel,
		Department:      string(st.Department),
		PromotionStatus: string(st.PromotionStatus),
		PromotedToGrade: intPtr(st.PromotedToGrade),
		Graduated:       st.Graduated,
		GraduationDate:  timePtr(st.GraduationDate),
		CreatedAt:       st.CreatedAt.UTC(),
		UpdatedAt:       st.UpdatedAt.UTC(),
	}
}

func (d studentDoc) toStudent() student.Student {
	return student.Student{
		ID:              d.ID,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		GuardianEmail:   d.GuardianEmail,
		GradeLevel:      d.GradeLevel,
		Department:      academic.Department(d.Department),
		PromotionStatus: academic.PromotionStatus(d.PromotionStatus),
		PromotedToGrade: null.IntFromPtr(d.PromotedToGrade),
		Graduated:       d.Graduated,
		GraduationDate:  null.TimeFromPtr(d.GraduationDate),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type studentRepository struct {
	coll *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{coll: db.collection(studentsCollection)}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, toStudentDoc(st)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var doc studentDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student")
	}
	return doc.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Search != "" {
			re := containsFold(filter.Search)
			query["$or"] = bson.A{bson.M{"first_name": re}, bson.M{"last_name": re}}
		}
		if filter.GradeLevel != 0 {
			query["grade_level"] = filter.GradeLevel
		}
		if filter.Department != "" {
			query["department"] = filter.Department
		}
		if filter.PromotionStatus != "" {
			query["promotion_status"] = filter.PromotionStatus
		}
		if filter.Graduated != nil {
			query["graduated"] = *filter.Graduated
		}
	}

	fallback := bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}
	opts := options.Find().SetSort(sortBy(ordering, studentSortFields, fallback))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	var docs []studentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	students := make([]student.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	doc := toStudentDoc(st)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"first_name":        doc.FirstName,
		"last_name":         doc.LastName,
		"guardian_email":    doc.GuardianEmail,
		"grade_level":       doc.GradeLevel,
		"department":        doc.Department,
		"promotion_status":  doc.PromotionStatus,
		"promoted_to_grade": doc.PromotedToGrade,
		"graduated":         doc.Graduated,
		"graduation_date":   doc.GraduationDate,
		"updated_at":        doc.UpdatedAt,
	}}

	var updated studentDoc
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": st.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated.toStudent(), nil
}
