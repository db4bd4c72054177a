package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeBrowser    ErrorType = "browser"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a page-level failure with type information
type Error struct {
	Type    ErrorType
	Page    int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Page > 0 {
		msg += fmt.Sprintf(" on page %d", e.Page)
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that no strategy yielded an image path for a page
func NotFound(page int, message string) *Error {
	return &Error{Type: ErrorTypeNotFound, Page: page, Message: message}
}

// HTTPStatus reports a non-200 response for an image request
func HTTPStatus(code int, url string) *Error {
	return &Error{Type: ErrorTypeHTTPStatus, Code: code, Message: url}
}

// Wrap attaches a type and page to err. A nil err stays nil.
func Wrap(errType ErrorType, page int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Page: page, Err: err}
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether any *Error in err's chain has the given type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Err
	}
	return false
}

// StatusCode returns the HTTP status carried in err's chain, or 0
func StatusCode(err error) int {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return 0
		}
		if e.Code != 0 {
			return e.Code
		}
		err = e.Err
	}
	return 0
}
