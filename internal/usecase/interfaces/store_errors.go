package interfaces

import (
	"errors"
	"fmt"
)

var ErrPaymentNotFound = errors.New("payment not found")

type StoreErrorKind string

const (
	StoreErrorQuery      StoreErrorKind = "query"
	StoreErrorConnection StoreErrorKind = "connection"
	StoreErrorDecode     StoreErrorKind = "decode"
)

// StoreError carries a classified storage failure. Code is the driver
// specific code when one is available (SQLSTATE, sqlite extended code,
// AWS error code).
type StoreError struct {
	Kind StoreErrorKind
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store %s error (%s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("store %s error: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewDecodeError(format string, args ...any) *StoreError {
	return &StoreError{Kind: StoreErrorDecode, Code: string(StoreErrorDecode), Err: fmt.Errorf(format, args...)}
}
