package auth

import (
	"errors"
	"fmt"
)

// Authentication errors. Every gate failure wraps one of ErrInvalidCredentials,
// ErrInvalidToken or ErrTokenRevoked so the HTTP layer can classify it with errors.Is.
var (
	// ErrInvalidCredentials indicates the email/password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCredentialsNotFound indicates no user has the given email. It wraps
	// ErrInvalidCredentials so clients cannot tell the two cases apart.
	ErrCredentialsNotFound = fmt.Errorf("%w: no user with that email", ErrInvalidCredentials)

	// ErrInvalidToken indicates the token format is invalid, the signature does
	// not match, or the user it names no longer exists.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrInvalidToken)

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future).
	ErrTokenNotYetValid = fmt.Errorf("%w: token not yet valid", ErrInvalidToken)

	// ErrTokenRevoked indicates a well-formed token that is no longer in the
	// user's session collection.
	ErrTokenRevoked = errors.New("authentication token has been revoked")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)

// IsAuthError reports whether err is a failed authentication decision rather
// than an infrastructure failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrMissingToken)
}
