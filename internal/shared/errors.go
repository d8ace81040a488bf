package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog source errors
	ErrSourceUnavailable = fmt.Errorf("catalog source unavailable")
	ErrInvalidDocument   = fmt.Errorf("invalid catalog document")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// Storage errors
	ErrSongNotFound  = fmt.Errorf("song not found")
	ErrDatabaseEmpty = fmt.Errorf("no songs stored")
	ErrNoMigrations  = fmt.Errorf("no schema versions applied")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
