// Package store opens the SQLite database holding CMS accounts and contact
// form submissions.
package store

import (
	"embed"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open connects to the SQLite database at name and applies all pending
// migrations. Use ":memory:" for a throwaway database.
func Open(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", name+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to db %q", name)
	}

	// one writer keeps sqlite happy and makes :memory: a single database
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting dialect for migrations")
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "applying migrations")
	}
	return db, nil
}
