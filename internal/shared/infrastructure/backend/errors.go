package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures and fast-fails while the breaker is open.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrUnauthenticated is returned by authenticated routes when no access token can be obtained.
	ErrUnauthenticated = errors.New("no access token")
)

// StatusError is a response the backend answered without a usable body:
// any non-2xx status, or a 2xx with nothing in it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// AsStatus extracts a *StatusError from err.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsUnavailable reports whether err is a transport failure or an open breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
