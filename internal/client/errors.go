package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the sentinel matching the error kind, so callers can use
// errors.Is(err, ErrNotFound) and friends.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case "Unauthenticated":
		return ErrUnauthenticated
	case "ValidationError":
		return ErrValidation
	case "NotFound":
		return ErrNotFound
	case "Conflict":
		return ErrConflict
	}
	return nil
}
