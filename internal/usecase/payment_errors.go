package usecase

import (
	"errors"
	"fmt"
	"strings"

	"payment_installments/internal/usecase/interfaces"
)

// ErrorKind discriminates the errors returned by PaymentUseCase.

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindDatabase     ErrorKind = "DATABASE_ERROR"
	KindConnection   ErrorKind = "CONNECTION_ERROR"
	KindCache        ErrorKind = "CACHE_ERROR"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrDatabase     = errors.New("database error")
	ErrConnection   = errors.New("connection error")
	ErrCache        = errors.New("cache error")
)

// PaymentError is implemented by every error PaymentUseCase returns.
type PaymentError interface {
	error
	Kind() ErrorKind
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string        { return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID) }
func (e *NotFoundError) Kind() ErrorKind      { return KindNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for field '%s': %s", e.Field, e.Message)
}
func (e *InvalidInputError) Kind() ErrorKind      { return KindInvalidInput }
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ValidationError carries every violation found, in detection order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Messages, "; ")
}
func (e *ValidationError) Kind() ErrorKind      { return KindValidation }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type DatabaseError struct {
	Message string
	Code    string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("database error [%s]: %s", e.Code, e.Message)
	}
	return "database error: " + e.Message
}
func (e *DatabaseError) Kind() ErrorKind      { return KindDatabase }
func (e *DatabaseError) Is(target error) bool { return target == ErrDatabase }
func (e *DatabaseError) Unwrap() error        { return e.Err }

type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string        { return "connection error: " + e.Message }
func (e *ConnectionError) Kind() ErrorKind      { return KindConnection }
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
func (e *ConnectionError) Unwrap() error        { return e.Err }

type CacheError struct {
	Message string
	Err     error
}

func (e *CacheError) Error() string        { return "cache error: " + e.Message }
func (e *CacheError) Kind() ErrorKind      { return KindCache }
func (e *CacheError) Is(target error) bool { return target == ErrCache }
func (e *CacheError) Unwrap() error        { return e.Err }

// KindOf returns the discriminant of err, or "" when err is not a PaymentError.
func KindOf(err error) ErrorKind {
	var pe PaymentError
	if errors.As(err, &pe) {
		return pe.Kind()
	}
	return ""
}

// translateStoreError maps repository failures onto the closed taxonomy.
// Errors already in the taxonomy pass through.
func translateStoreError(err error, id string) error {
	if err == nil {
		return nil
	}
	var pe PaymentError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, interfaces.ErrPaymentNotFound) {
		return &NotFoundError{Entity: "Payment", ID: id}
	}

	var storeErr *interfaces.StoreError
	if errors.As(err, &storeErr) {
		if storeErr.Kind == interfaces.StoreErrorConnection {
			return &ConnectionError{Message: storeErr.Err.Error(), Err: err}
		}
		return &DatabaseError{Message: storeErr.Err.Error(), Code: storeErr.Code, Err: err}
	}
	return &DatabaseError{Message: err.Error(), Err: err}
}
