package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/k0r-eu/k0r/internal/database"
)

// expectedSchema is the canonical structure of the store, as sorted
// "table|column" tuples. Structural introspection is a coarse but deliberate
// drift check: a deployed binary must never serve traffic against a store
// whose layout it does not recognize, and it must never try to migrate one.
const expectedSchema = `URLs|created_at
URLs|description
URLs|title
URLs|url
URLs|user_id
URLs|visits
Users|api_key
Users|is_admin
Users|rate_limit
Users|rowid`

const schemaQuery = `
	SELECT
		m.name AS table_name,
		p.name AS column_name
	FROM
		sqlite_master AS m
	JOIN
		pragma_table_info(m.name) AS p
	ORDER BY
		m.name,
		p.name`

// ValidateSchema introspects the live store and compares its structure
// against the expected schema. A store with no tables at all fails with
// database.ErrSchemaMissing; any other mismatch fails with
// database.ErrInvalidSchema.
func (s *Store) ValidateSchema(ctx context.Context) error {
	const op = "database.sqlite.Store.ValidateSchema"

	type schemaRow struct {
		TableName  string `db:"table_name"`
		ColumnName string `db:"column_name"`
	}

	var rows []schemaRow
	if err := s.db.SelectContext(ctx, &rows, schemaQuery); err != nil {
		return fmt.Errorf("%s: failed to introspect schema: %w", op, err)
	}

	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrSchemaMissing)
	}

	tuples := make([]string, 0, len(rows))
	for _, row := range rows {
		tuples = append(tuples, row.TableName+"|"+row.ColumnName)
	}

	if strings.Join(tuples, "\n") != expectedSchema {
		return fmt.Errorf("%s: %w", op, database.ErrInvalidSchema)
	}

	return nil
}

// InitSchema creates the two tables and the api_key index inside a single
// transaction. It is idempotent: every statement uses IF NOT EXISTS.
func (s *Store) InitSchema(ctx context.Context) error {
	const op = "database.sqlite.Store.InitSchema"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users(
			rowid      INTEGER NOT NULL,
			api_key    TEXT UNIQUE NOT NULL,
			rate_limit INTEGER DEFAULT 0,
			is_admin   SMALLINT DEFAULT 0,
			PRIMARY KEY(rowid)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_api_key ON Users(api_key)`,
		`CREATE TABLE IF NOT EXISTS URLs(
			url         TEXT NOT NULL,
			visits      INTEGER DEFAULT 0,
			title       TEXT,
			description TEXT,
			created_at  DATETIME,
			user_id     INTEGER NOT NULL,
			FOREIGN KEY(user_id) REFERENCES Users(rowid)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: failed to create schema: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit schema: %w", op, err)
	}

	return nil
}
