// Package service implements the business operations of the shortener on top
// of the query engine: short-code translation, API-key minting and the
// bounded dispatch of potentially blocking store work.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/k0r-eu/k0r/internal/database"
	"github.com/k0r-eu/k0r/internal/models"
	"github.com/k0r-eu/k0r/internal/shortcode"
	"golang.org/x/sync/semaphore"
)

// Repository defines the interface for working with the store at the
// business logic layer.
type Repository interface {
	// ValidateSchema checks the live store structure against the expected
	// schema. It fails with database.ErrSchemaMissing on an empty store and
	// database.ErrInvalidSchema on any other mismatch.
	ValidateSchema(ctx context.Context) error

	// InitSchema creates the schema. Safe to call on an already
	// initialized store.
	InitSchema(ctx context.Context) error

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)

	// InsertUser stores a new user under the given API key.
	InsertUser(ctx context.Context, apiKey string, rateLimit int64, isAdmin bool) error

	// URLByID retrieves the URL record with the given row id.
	URLByID(ctx context.Context, id int64) (*models.URL, error)

	// InsertURL stores a new URL record owned by the user behind apiKey and
	// returns the assigned row id.
	InsertURL(ctx context.Context, apiKey, url, title, description string) (int64, error)
}

const defaultAcquireTimeout = 5 * time.Second

// URLService runs every store operation through a bounded admission gate so
// that a slow store never lets blocked work pile up without limit. Each
// operation holds exactly one slot for its whole duration and completes
// exactly once, with a result or an error.
type URLService struct {
	repo           Repository
	slots          *semaphore.Weighted
	acquireTimeout time.Duration
}

type Option func(*URLService)

// WithAcquireTimeout bounds how long an operation may wait for a free query
// slot before failing with database.ErrPoolExhausted.
func WithAcquireTimeout(d time.Duration) Option {
	return func(s *URLService) {
		s.acquireTimeout = d
	}
}

// New creates a URLService allowing at most maxQueries concurrent store
// operations.
func New(repo Repository, maxQueries int64, opts ...Option) *URLService {
	s := &URLService{
		repo:           repo,
		slots:          semaphore.NewWeighted(maxQueries),
		acquireTimeout: defaultAcquireTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// acquire claims a query slot, waiting up to the acquire timeout. The caller
// must call the returned release func on every exit path.
//
// Only an expired acquire timeout counts as pool exhaustion. A caller whose
// own context ended while waiting gets that context's error back unchanged.
func (s *URLService) acquire(ctx context.Context) (release func(), err error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	if err := s.slots.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to acquire query slot: %w", ctx.Err())
		}

		return nil, fmt.Errorf("%w: %w", database.ErrPoolExhausted, err)
	}

	return func() { s.slots.Release(1) }, nil
}

// CheckSchema reports whether the store schema is usable as-is.
func (s *URLService) CheckSchema(ctx context.Context) error {
	const op = "service.URLService.CheckSchema"

	release, err := s.acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := s.repo.ValidateSchema(ctx); err != nil {
		return fmt.Errorf("%s: failed to validate schema: %w", op, err)
	}

	return nil
}

// InitSchema creates the store schema.
func (s *URLService) InitSchema(ctx context.Context) error {
	const op = "service.URLService.InitSchema"

	release, err := s.acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := s.repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("%s: failed to initialize schema: %w", op, err)
	}

	return nil
}

// CountUsers returns the number of registered users.
func (s *URLService) CountUsers(ctx context.Context) (int64, error) {
	const op = "service.URLService.CountUsers"

	release, err := s.acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	return count, nil
}

// CreateUser mints a fresh random API key, stores a new user under it and
// returns the key. A key collision is reported as-is; it is not retried.
func (s *URLService) CreateUser(ctx context.Context, rateLimit int64, isAdmin bool) (string, error) {
	const op = "service.URLService.CreateUser"

	key, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%s: failed to mint api key: %w", op, err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := s.repo.InsertUser(ctx, key.String(), rateLimit, isAdmin); err != nil {
		return "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	return key.String(), nil
}

// ResolveShortCode translates a short code back to its original URL.
// A malformed code fails fast with shortcode.ErrInvalidCode without touching
// the store; a well-formed code with no record fails with
// database.ErrURLNotFound. Both are expected, frequent outcomes.
func (s *URLService) ResolveShortCode(ctx context.Context, code string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	id, err := shortcode.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	url, err := s.repo.URLByID(ctx, int64(id))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// ShortenParams carries the caller-validated input of ShortenURL. Title and
// Description default to the empty string, never to an absent marker.
type ShortenParams struct {
	URL         string
	Title       string
	Description string
	APIKey      string
}

// ShortenURL stores a new URL record under the user owning params.APIKey and
// returns the short code derived from the assigned row id. Concurrent calls
// are safe: row-id assignment is the store's atomic auto-increment, so two
// inserts never yield the same code.
func (s *URLService) ShortenURL(ctx context.Context, params ShortenParams) (string, error) {
	const op = "service.URLService.ShortenURL"

	release, err := s.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	id, err := s.repo.InsertURL(ctx, params.APIKey, params.URL, params.Title, params.Description)
	if err != nil {
		return "", fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return shortcode.Encode(uint64(id)), nil
}
