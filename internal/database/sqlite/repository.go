package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/k0r-eu/k0r/internal/database"
	"github.com/k0r-eu/k0r/internal/models"
)

type urlRecord struct {
	ID          int64        `db:"rowid"`
	URL         string       `db:"url"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Visits      int64        `db:"visits"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UserID      int64        `db:"user_id"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
		Visits:      r.Visits,
		CreatedAt:   r.CreatedAt.Time,
		UserID:      r.UserID,
	}
}

// Store is the query engine: one method per request kind, each executed on a
// single pooled connection and returning either a domain error from the
// database package or the wrapped driver error.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db: db,
	}
}

// CountUsers returns the number of user rows.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	const op = "database.sqlite.Store.CountUsers"

	var count int64
	query := `SELECT COUNT(rowid) FROM Users`

	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	return count, nil
}

// InsertUser stores a new user row under the given API key. A colliding key
// fails with database.ErrDuplicateAPIKey and is not retried here.
func (s *Store) InsertUser(ctx context.Context, apiKey string, rateLimit int64, isAdmin bool) error {
	const op = "database.sqlite.Store.InsertUser"

	query := `INSERT INTO Users VALUES(NULL, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, apiKey, rateLimit, isAdmin); err != nil {
		if isUniqueViolationError(err) {
			return fmt.Errorf("%s: %w", op, database.ErrDuplicateAPIKey)
		}

		return fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	return nil
}

// URLByID looks up a URL record by row id and bumps its visit counter in the
// same statement. A missing row fails with database.ErrURLNotFound.
func (s *Store) URLByID(ctx context.Context, id int64) (*models.URL, error) {
	const op = "database.sqlite.Store.URLByID"

	rec := new(urlRecord)
	query := `UPDATE URLs
		SET visits = visits + 1
		WHERE rowid = ?
		RETURNING rowid, url, title, description, visits, created_at, user_id`

	if err := s.db.GetContext(ctx, rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// InsertURL resolves the API key to its owning user and stores a new URL
// record, both inside one transaction so a partial write is never visible.
// It returns the row id assigned by the store, which the caller encodes into
// the short code. An unknown API key fails with database.ErrUnauthorized and
// inserts nothing.
func (s *Store) InsertURL(ctx context.Context, apiKey, url, title, description string) (int64, error) {
	const op = "database.sqlite.Store.InsertURL"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var userID int64
	query := `SELECT rowid FROM Users WHERE api_key = ?`

	if err := tx.GetContext(ctx, &userID, query, apiKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, database.ErrUnauthorized)
		}

		return 0, fmt.Errorf("%s: failed to resolve api key: %w", op, err)
	}

	query = `INSERT INTO URLs VALUES(?, 0, ?, ?, DATETIME('now'), ?)`

	res, err := tx.ExecContext(ctx, query, url, title, description, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get url record id: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: failed to commit url record: %w", op, err)
	}

	return id, nil
}
