package main

import (
	"database/sql"

	"github.com/trezcool/shule/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

type migrator interface {
	Migrate(command string, args ...string) error
}

type dbMigrator struct {
	db *sql.DB
}

func (m dbMigrator) Migrate(command string, args ...string) error {
	return gooseRunFunc(m.db, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	return cli.migrator.Migrate(args[0], args[1:]...)
}
