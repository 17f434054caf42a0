package protocol

import (
	"errors"
	"fmt"
)

// Core protocol errors
var (
	// ErrMalformed means the frame or payload cannot be trusted; the connection is dropped.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownAction means no handler exists for the action; the message is dropped.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMissingField and ErrInvalidField reject a message without mutating state.
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
	// ErrConnectionClosed covers stream end, a zero-length frame and write failures.
	ErrConnectionClosed = errors.New("connection is closed")
)

// ErrorCode represents a numeric error code for efficient error handling
type ErrorCode int

const (
	ErrorCodeSuccess ErrorCode = 0

	// Connection error codes (1000-1999)

	ErrorCodeConnectionClosed ErrorCode = 1001

	// Message error codes (3000-3999)

	ErrorCodeMalformed     ErrorCode = 3001
	ErrorCodeFrameTooLarge ErrorCode = 3002
	ErrorCodeUnknownAction ErrorCode = 3003
	ErrorCodeMissingField  ErrorCode = 3004
	ErrorCodeInvalidField  ErrorCode = 3005

	ErrorCodeUnknownError ErrorCode = 9999
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeSuccess:
		return "success"
	case ErrorCodeConnectionClosed:
		return "connection_closed"
	case ErrorCodeMalformed:
		return "malformed"
	case ErrorCodeFrameTooLarge:
		return "frame_too_large"
	case ErrorCodeUnknownAction:
		return "unknown_action"
	case ErrorCodeMissingField:
		return "missing_field"
	case ErrorCodeInvalidField:
		return "invalid_field"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error represents a protocol-specific error with additional context
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending key for field errors.
	Field string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel belonging to the error's code, so callers can use
// errors.Is(err, ErrMalformed) without caring about the concrete cause.
func (e *Error) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

// IsFatal reports whether the connection carrying the error must be closed.
func (e *Error) IsFatal() bool {
	switch e.Code {
	case ErrorCodeConnectionClosed, ErrorCodeMalformed, ErrorCodeFrameTooLarge:
		return true
	default:
		return false
	}
}

// NewProtocolError creates a new protocol error
func NewProtocolError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func malformed(message string, cause error) *Error {
	return NewProtocolError(ErrorCodeMalformed, message, cause)
}

func missingField(key string) *Error {
	return &Error{Code: ErrorCodeMissingField, Message: "missing field", Field: key}
}

func invalidField(key string, cause error) *Error {
	return &Error{Code: ErrorCodeInvalidField, Message: "invalid field", Field: key, Cause: cause}
}

var codeSentinels = map[ErrorCode]error{
	ErrorCodeConnectionClosed: ErrConnectionClosed,
	ErrorCodeMalformed:        ErrMalformed,
	ErrorCodeFrameTooLarge:    ErrMalformed,
	ErrorCodeUnknownAction:    ErrUnknownAction,
	ErrorCodeMissingField:     ErrMissingField,
	ErrorCodeInvalidField:     ErrInvalidField,
}

// GetErrorCode returns the error code for a given error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeSuccess
	}

	var protocolErr *Error
	if errors.As(err, &protocolErr) {
		return protocolErr.Code
	}

	switch {
	case errors.Is(err, ErrConnectionClosed):
		return ErrorCodeConnectionClosed
	case errors.Is(err, ErrMalformed):
		return ErrorCodeMalformed
	case errors.Is(err, ErrUnknownAction):
		return ErrorCodeUnknownAction
	case errors.Is(err, ErrMissingField):
		return ErrorCodeMissingField
	case errors.Is(err, ErrInvalidField):
		return ErrorCodeInvalidField
	}
	return ErrorCodeUnknownError
}

// IsFatal reports whether err should end the connection it came from.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var protocolErr *Error
	if errors.As(err, &protocolErr) {
		return protocolErr.IsFatal()
	}
	return errors.Is(err, ErrConnectionClosed) || errors.Is(err, ErrMalformed)
}
