package services

import (
	"errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorTiming       ErrorCode = "timing"
	ErrorDuplicate    ErrorCode = "duplicate"
	ErrorStorage      ErrorCode = "storage"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ServiceError carries one of the error kinds above. At is the boundary
// instant for timing errors; Err is the medium failure for storage errors.
type ServiceError struct {
	Code    ErrorCode
	Message string
	At      time.Time
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewDuplicateError(msg string) error { return &ServiceError{Code: ErrorDuplicate, Message: msg} }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

// NewTimingError reports an operation outside its window; at is the boundary.
func NewTimingError(msg string, at time.Time) error {
	return &ServiceError{Code: ErrorTiming, Message: fmt.Sprintf("%s %s", msg, at.Format(TimeLayout)), At: at}
}

// NewStorageError wraps a read or append failure. Callers should halt.
func NewStorageError(op string, err error) error {
	return &ServiceError{Code: ErrorStorage, Message: op, Err: err}
}

// TimeLayout is how boundary instants are rendered in messages.
const TimeLayout = "2006-01-02 15:04:05"

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a ServiceError with the given code.
func IsKind(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}

// ErrSessionDeclined is returned by Run when the caller does not confirm the exam.
var ErrSessionDeclined = errors.New("exam session declined")
