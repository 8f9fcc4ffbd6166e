package database

import "errors"

var (
	// ErrInvalidSimilarity is returned for self edges and scores outside (0.2, 1.0].
	ErrInvalidSimilarity = errors.New("invalid similarity edge")

	// ErrInvalidLimit is returned when a query limit is not positive.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrDatabaseNotFound is returned by Open when the database must already exist.
	ErrDatabaseNotFound = errors.New("database not found")
)
