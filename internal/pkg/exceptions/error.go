package exceptions

import (
	"errors"
	"fmt"
	"koppeltaal-service/internal/pkg/constvars"
	"runtime"
)

// Kind classifies a failure so callers can decide between reload-and-retry,
// re-authentication or giving up.
type Kind string

const (
	KindAuthenticationFailure Kind = "AUTHENTICATION_FAILURE"
	KindVersionConflict       Kind = "VERSION_CONFLICT"
	KindProtocolViolation     Kind = "PROTOCOL_VIOLATION"
	KindNotFound              Kind = "NOT_FOUND"
	KindTransportFailure      Kind = "TRANSPORT_FAILURE"
	KindInternal              Kind = "INTERNAL"
)

type CustomError struct {
	StatusCode    int      `json:"status_code"`
	Success       bool     `json:"success"`
	ClientMessage string   `json:"message"`
	DevMessage    string   `json:"-"`
	Kind          Kind     `json:"kind"`
	Location      Location `json:"-"`
	cause         error
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

// Retriable reports whether the failure may go away on a later attempt.
func (e *CustomError) Retriable() bool {
	return e.Kind == KindTransportFailure || e.Kind == KindVersionConflict
}

// IsRetriable reports whether err carries a retriable CustomError.
func IsRetriable(err error) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Retriable()
}

func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return buildWithKind(err, KindOfStatus(statusCode), statusCode, clientMessage, devMessage)
}

func buildWithKind(err error, kind Kind, statusCode int, clientMessage, devMessage string) *CustomError {
	customErr := &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Kind:          kind,
		Location:      getLocation(4),
		cause:         err,
	}
	if err != nil {
		customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return customErr
}

func WrapWithoutError(statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(2)
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Kind:          KindOfStatus(statusCode),
		Location:      location,
	}
}

// KindOfStatus maps a koppeltaal server status code onto the error taxonomy.
func KindOfStatus(statusCode int) Kind {
	switch {
	case statusCode == constvars.StatusUnauthorized || statusCode == constvars.StatusForbidden:
		return KindAuthenticationFailure
	case statusCode == constvars.StatusNotFound || statusCode == constvars.StatusGone:
		return KindNotFound
	case statusCode == constvars.StatusConflict || statusCode == constvars.StatusPreconditionFailed:
		return KindVersionConflict
	case statusCode == constvars.StatusBadRequest || statusCode == constvars.StatusUnprocessableEntity:
		return KindProtocolViolation
	case statusCode == constvars.StatusTooManyRequests || statusCode >= constvars.StatusBadGateway:
		return KindTransportFailure
	default:
		return KindInternal
	}
}

// KindOf returns the kind of the first CustomError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         "unknown",
			Line:         0,
			FunctionName: "unknown",
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
