package protocol

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a protocol failure
type ErrorType int

const (
	// ErrTypeTransport indicates a send/receive failure or read timeout.
	// The transport should be considered disconnected afterwards.
	ErrTypeTransport ErrorType = iota
	// ErrTypeDeviceRejected indicates the reply error bit was set or a read
	// reply carried no data
	ErrTypeDeviceRejected
	// ErrTypePrecondition indicates the caller broke a documented invariant
	ErrTypePrecondition
	// ErrTypeCapacity indicates a fixed device limit was exceeded
	ErrTypeCapacity
	// ErrTypeTimeout indicates bounded state-confirmation polling gave up
	ErrTypeTimeout
	// ErrTypeMalformed indicates a packet could not be decoded
	ErrTypeMalformed
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Failure"
	case ErrTypeDeviceRejected:
		return "Device Rejected"
	case ErrTypePrecondition:
		return "Precondition Violation"
	case ErrTypeCapacity:
		return "Capacity Exceeded"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeMalformed:
		return "Malformed Packet"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is the error returned by every layer of the driver
type Error struct {
	Type    ErrorType // Category of error
	Op      string    // Operation that failed (e.g. "set display mode")
	Message string    // Human-readable detail
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport failure error
func NewTransportError(op string, err error) *Error {
	return &Error{
		Type:    ErrTypeTransport,
		Op:      op,
		Message: "transport failure",
		Err:     err,
	}
}

// NewDeviceRejectedError creates an error for a reply the controller refused
func NewDeviceRejectedError(op string, message string) *Error {
	return &Error{
		Type:    ErrTypeDeviceRejected,
		Op:      op,
		Message: message,
	}
}

// NewPreconditionError creates a precondition violation error
func NewPreconditionError(op string, message string) *Error {
	return &Error{
		Type:    ErrTypePrecondition,
		Op:      op,
		Message: message,
	}
}

// NewCapacityError creates a capacity error
func NewCapacityError(op string, message string) *Error {
	return &Error{
		Type:    ErrTypeCapacity,
		Op:      op,
		Message: message,
	}
}

// NewTimeoutError creates an error for exhausted state-confirmation polling
func NewTimeoutError(op string, attempts int) *Error {
	return &Error{
		Type:    ErrTypeTimeout,
		Op:      op,
		Message: fmt.Sprintf("device state not confirmed after %d attempts", attempts),
	}
}

// NewMalformedError creates an error for an undecodable packet
func NewMalformedError(op string, message string) *Error {
	return &Error{
		Type:    ErrTypeMalformed,
		Op:      op,
		Message: message,
	}
}

// WithOp returns a copy of err with op prepended to its operation.
// Errors that are not *Error are returned unchanged.
func WithOp(err error, op string) error {
	var pe *Error
	if !errors.As(err, &pe) {
		return err
	}
	cp := *pe
	if cp.Op == "" {
		cp.Op = op
	} else {
		cp.Op = op + ": " + cp.Op
	}
	return &cp
}

func isType(err error, t ErrorType) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

// IsTransportError checks if an error is a transport failure
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsDeviceRejected checks if an error is a device rejection
func IsDeviceRejected(err error) bool {
	return isType(err, ErrTypeDeviceRejected)
}

// IsPreconditionViolation checks if an error is a precondition violation
func IsPreconditionViolation(err error) bool {
	return isType(err, ErrTypePrecondition)
}

// IsCapacityError checks if an error is a capacity error
func IsCapacityError(err error) bool {
	return isType(err, ErrTypeCapacity)
}

// IsTimeout checks if an error is an exhausted polling loop
func IsTimeout(err error) bool {
	return isType(err, ErrTypeTimeout)
}

// IsRetryable reports whether the operation may succeed if issued again.
// Only exhausted state polling qualifies; transport failures leave the
// connection closed and precondition errors never go away on their own.
func IsRetryable(err error) bool {
	return IsTimeout(err)
}
