package proposal

import "errors"

var (
	// ErrUnauthenticated is returned when the caller carries no verified identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrQuotaExhausted is returned when a metered account has used its mode allowance.
	ErrQuotaExhausted = errors.New("limit reached")
	// ErrGenerationFailed covers upstream errors and empty generations.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrPersistenceFailed is returned when an artifact write fails.
	ErrPersistenceFailed = errors.New("persistence failed")
)
