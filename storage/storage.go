// Package storage opens the repositories of the configured storage backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
	"github.com/trezcool/darasa/storage/mongodb"
)

// Stores groups the repositories of one backend with the Transactor spanning them.
type Stores struct {
	Backend    string
	Transactor core.Transactor
	Users      user.Repository
	Students   student.Repository
	Grades     grade.Repository
	Promotions promotion.Repository
	SQLDB      *sql.DB // postgres only

	close func(ctx context.Context) error
}

// Open connects to the backend selected by conf.Storage. With migrate, the postgres
// database is created and migrated, and the mongo indexes are ensured.
func Open(ctx context.Context, conf *core.Config, migrate bool) (*Stores, error) {
	switch conf.Storage {
	case core.StorageMemory:
		return openMemory(), nil
	case core.StoragePostgres:
		return openPostgres(conf, migrate)
	case core.StorageMongo:
		return openMongo(ctx, conf, migrate)
	}
	return nil, fmt.Errorf("unknown storage backend %q", conf.Storage)
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func openMemory() *Stores {
	db := inmemdb.Open()
	return &Stores{
		Backend:    core.StorageMemory,
		Transactor: db,
		Users:      inmemdb.NewUserRepository(db),
		Students:   inmemdb.NewStudentRepository(db),
		Grades:     inmemdb.NewGradeRepository(db),
		Promotions: inmemdb.NewPromotionRepository(db),
	}
}

func openPostgres(conf *core.Config, migrate bool) (*Stores, error) {
	if migrate {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if migrate {
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "migrating database")
		}
	}

	return &Stores{
		Backend:    core.StoragePostgres,
		Transactor: sqlxrepos.NewTransactor(db),
		Users:      sqlxrepos.NewUserRepository(db),
		Students:   sqlxrepos.NewStudentRepository(db),
		Grades:     sqlxrepos.NewGradeRepository(db),
		Promotions: sqlxrepos.NewPromotionRepository(db),
		SQLDB:      db.DB,
		close:      func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, conf *core.Config, migrate bool) (*Stores, error) {
	db, err := mongodb.Open(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening mongo database")
	}
	if migrate {
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, errors.Wrap(err, "ensuring mongo indexes")
		}
	}

	return &Stores{
		Backend:    core.StorageMongo,
		Transactor: db,
		Users:      mongodb.NewUserRepository(db),
		Students:   mongodb.NewStudentRepository(db),
		Grades:     mongodb.NewGradeRepository(db),
		Promotions: mongodb.NewPromotionRepository(db),
		close:      db.Close,
	}, nil
}
