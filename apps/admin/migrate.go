package main

import (
	"database/sql"
	"errors"

	"github.com/trezcool/darasa/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoSQLDatabase = errors.New("migrations require the postgres storage backend")
)

func (cli *commandLine) migrate(args []string) error {
	var db *sql.DB
	if cli.stores != nil {
		db = cli.stores.SQLDB
	}
	if db == nil {
		return errNoSQLDatabase
	}
	return gooseRunFunc(db, args[0], args[1:]...)
}
