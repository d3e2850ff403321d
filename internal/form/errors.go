// Package form implements the product registration/edit workflow: a
// validation pipeline, the stock authorization gate and the session that
// orchestrates them against the stores.
package form

import (
	"errors"
	"fmt"
)

var (
	ErrStockKeyRequired = errors.New("stock change requires the master key")
	ErrNotPrompting     = errors.New("master key prompt is not open")
	ErrSessionClosed    = errors.New("form session is closed")
)

// ValidationError is recoverable and transient: it names the first rule the
// draft broke.
type ValidationError struct {
	Rule    Rule
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError is returned when the master key is rejected or could not
// be checked. The gate is back to Locked when this is returned.
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// PersistenceError carries the store failure of a save attempt.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save product: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
