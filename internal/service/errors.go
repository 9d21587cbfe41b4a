// Package service holds the account, profile and task operations that sit
// between the HTTP handlers and the stores.
package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every service. Callers match them with
// errors.Is; the HTTP layer maps each one to a status and error kind.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
