package api

import (
	"errors"
	"fmt"
)

//ErrorType are API Error types
type ErrorType int

//ErrorTypes
const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypePersistence
	ErrorTypeNotFound
	ErrorTypeDuplicate
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "Validation Error"
	case ErrorTypeNotFound:
		return "Not Found"
	case ErrorTypeDuplicate:
		return "Duplicate Error"
	default:
		return "Persistence Error"
	}
}

//Error wraps errors in the API. Description is safe to show to an operator.
type Error struct {
	Description string
	Type        ErrorType
	Err         error
	DuplicateID int64
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Description)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Description, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

//ErrorTypeOf returns the ErrorType of err. Errors not produced by this package are persistence failures.
func ErrorTypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypePersistence
}

func notFound(format string, a ...interface{}) *Error {
	return &Error{Description: fmt.Sprintf(format, a...), Type: ErrorTypeNotFound}
}

func invalid(format string, a ...interface{}) *Error {
	return &Error{Description: fmt.Sprintf(format, a...), Type: ErrorTypeValidation}
}
