package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session lifecycle
var (
	// Startup errors
	ErrConfiguration = errors.New("configuration error")

	// Authorization flow errors
	ErrStateMismatch       = errors.New("state parameter mismatch")
	ErrMissingFlowState    = errors.New("missing auth flow state")
	ErrNonceMismatch       = errors.New("nonce mismatch")
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// Session errors
	ErrRefreshFailed = errors.New("token refresh failed")
)

// ProviderDeniedError is returned when the identity provider redirects back
// with an `error` parameter instead of an authorization code.
type ProviderDeniedError struct {
	Code        string
	Description string
}

func (e *ProviderDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("provider denied authorization: %s", e.Code)
	}
	return fmt.Sprintf("provider denied authorization: %s - %s", e.Code, e.Description)
}

// UserMessage maps known provider error codes to a message suitable for the
// end user. Unrecognised codes get a generic message.
func (e *ProviderDeniedError) UserMessage() string {
	switch e.Code {
	case "access_denied":
		return "Sign-in was cancelled or denied."
	case "invalid_scope":
		return "The application requested permissions the provider does not allow."
	case "server_error":
		return "The identity provider had a problem. Please try again."
	default:
		return "Sign-in failed. Please try again."
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
