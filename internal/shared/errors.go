package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Provider errors. ErrProviderRequest covers network failures and
	// non-2xx statuses, ErrProviderResponse covers malformed payloads and
	// provider-reported application errors. Both are distinct from
	// ErrNoResults, which is a valid empty response.
	ErrProviderRequest  = fmt.Errorf("provider request failed")
	ErrProviderResponse = fmt.Errorf("provider response invalid")
	ErrNoResults        = fmt.Errorf("no results")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Store errors
	ErrNotFavorite = fmt.Errorf("not a favorite")
)
