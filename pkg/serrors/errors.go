package serrors

import (
	"errors"
	"fmt"
)

// BaseError is a structured error carrying a stable machine-readable code
// alongside the human-readable message. Boundary layers (HTTP controllers,
// import results) surface the code; logs carry the full message.
type BaseError struct {
	Code    string
	Message string
	Data    map[string]string
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func (e *BaseError) Error() string {
	return e.Message
}

// WithTemplateData attaches key/value detail to the error, returning a copy so
// sentinel errors stay immutable.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := &BaseError{Code: e.Code, Message: e.Message, Data: make(map[string]string, len(data))}
	for k, v := range data {
		clone.Data[k] = v
	}
	return clone
}

// Withf returns a copy of the error with a formatted message appended.
func (e *BaseError) Withf(format string, args ...any) *BaseError {
	return &BaseError{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...)),
		Data:    e.Data,
	}
}

// Is matches errors by code, so wrapped and templated copies of a sentinel
// still compare equal to it.
func (e *BaseError) Is(target error) bool {
	var base *BaseError
	if !errors.As(target, &base) {
		return false
	}
	return e.Code == base.Code
}
