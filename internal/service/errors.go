package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrFundraiserNotFound   = errors.New("fundraiser not found or inactive")
	ErrDonorNotFound        = errors.New("donor not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrVerificationNotFound = errors.New("no verification found for session/donor")

	// ErrUnderage rejects donors younger than the minimum age.
	ErrUnderage = errors.New("donor does not meet the minimum age requirement")
)

// ValidationError marks client-input problems (missing or malformed fields).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ProviderError wraps a failure reported by an external provider (Stripe,
// Twilio) that should surface to the caller rather than as a 500.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}
