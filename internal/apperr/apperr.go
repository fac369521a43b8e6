// Package apperr holds the error kinds shared by the session and profile
// services. Packages wrap one of these kinds in their own sentinel errors and
// handlers match on the kind with errors.Is.
package apperr

import "errors"

var (
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated signals bad credentials or an invalid, expired or absent token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden signals an authenticated caller acting on a resource it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound signals a missing target record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals input the service refuses before touching the store.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsDomain reports whether err carries one of the known kinds. Anything else
// is an internal failure.
func IsDomain(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument)
}
