// Package database defines the error taxonomy shared by the persistence
// layer and its callers. Anything not covered by these sentinels is a plain
// store error and stays wrapped around the native driver error.
package database

import "errors"

var (
	// ErrURLNotFound is returned when a well-formed short code has no
	// matching URL record.
	ErrURLNotFound = errors.New("url not found")
	// ErrUnauthorized is returned when an API key does not belong to any user.
	ErrUnauthorized = errors.New("unknown api key")
	// ErrDuplicateAPIKey is returned when a freshly minted API key collides
	// with an existing one. Callers treat it as fatal and do not retry.
	ErrDuplicateAPIKey = errors.New("api key exists")
	// ErrSchemaMissing is returned when the store holds no tables at all.
	// It is the only schema state that is safe to initialize.
	ErrSchemaMissing = errors.New("schema missing")
	// ErrInvalidSchema is returned when the store structure does not match
	// the expected schema. The process must not serve traffic against it.
	ErrInvalidSchema = errors.New("schema invalid")
	// ErrPoolExhausted is returned when no query slot became available
	// within the dispatch acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)
