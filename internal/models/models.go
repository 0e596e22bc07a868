package models

import "time"

// User owns API-key-authorized write access. Users are only ever created,
// never mutated or deleted.
type User struct {
	// ID is the unique row identifier of the user.
	ID int64
	// APIKey is the opaque bearer token authorizing URL creation.
	APIKey string
	// RateLimit is reserved for future request throttling.
	RateLimit int64
	// IsAdmin marks administrative users.
	IsAdmin bool
}

// URL represents a stored long URL. The short code is not part of the record:
// it is derived from ID by the shortcode package.
type URL struct {
	// ID is the unique, monotonically assigned row identifier.
	ID int64
	// URL is the original long URL.
	URL string
	// Title is an optional page title, empty when not provided.
	Title string
	// Description is an optional description, empty when not provided.
	Description string
	// Visits counts successful lookups of the record.
	Visits int64
	// CreatedAt is the timestamp set by the store at insertion.
	CreatedAt time.Time
	// UserID references the owning user.
	UserID int64
}
