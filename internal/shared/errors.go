package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrConfigCreated     = fmt.Errorf("configuration template created")
	ErrPlaceholderConfig = fmt.Errorf("configuration still contains placeholder credentials")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthCancelled = fmt.Errorf("authentication cancelled")
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrMissingCode   = fmt.Errorf("authorization code missing from redirect URL")
	ErrStateMismatch = fmt.Errorf("authorization state mismatch")
	ErrNoCachedToken = fmt.Errorf("no cached token")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API and sync errors
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrSyncDeclined = fmt.Errorf("synchronization declined")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
