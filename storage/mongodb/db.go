// Package mongodb stores the application data in MongoDB collections.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/darasa/core"
)

// collections
const (
	usersCollection      = "users"
	studentsCollection   = "students"
	gradesCollection     = "grade_records"
	promotionsCollection = "promotion_records"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.Transactor = (*DB)(nil)

// Open connects to conf.Mongo.URI and checks the primary is reachable.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(conf.Mongo.URI).
		SetAppName(conf.AppName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return &DB{client: client, db: client.Database(conf.Mongo.Database)}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	nonEmpty := func(field string) bson.M {
		return bson.M{field: bson.M{"$gt": ""}}
	}
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("username_unique").SetUnique(true).SetPartialFilterExpression(nonEmpty("username")),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true).SetPartialFilterExpression(nonEmpty("email")),
			},
		},
		studentsCollection: {
			{Keys: bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}},
		},
		gradesCollection: {
			{
				Keys: bson.D{
					{Key: "student_id", Value: 1},
					{Key: "academic_year", Value: 1},
					{Key: "semester", Value: 1},
				},
				Options: options.Index().SetName("student_year_semester_unique").SetUnique(true),
			},
		},
		promotionsCollection: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// RunInTx runs fn in a multi-document transaction; this requires a replica set.
// Nested calls join the running transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := db.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
