// Package protocol defines the error taxonomy shared by the Owner API client packages.
//
// Failures fall into three kinds that callers may want to treat differently:
//
//   - Transport errors: the request never completed (DNS, TLS, timeout, non-2xx status).
//     Represented by [TransportError] or by [inet.HttpError].
//   - Command rejections: the API accepted the request but the vehicle reported
//     result: false. Represented by [CommandError], which carries the API-supplied
//     reason string. This is expected application behavior, not a defect.
//   - Validation errors: a parameter failed a local precondition and no request was
//     sent. Represented by [ValidationError].
package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered by a command that might have
	// been executed. For example, if a client times out while waiting for a response, then
	// the client cannot tell if the command was received.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition. For
	// example, the backend returns 503s while a vehicle is waking from sleep.
	Temporary() bool
}

var (
	// ErrClosed indicates a request was attempted on a Connection after Close.
	ErrClosed = errors.New("connection closed")
	// ErrBadResponse indicates the server's response did not match the documented envelope.
	ErrBadResponse = errors.New("invalid response")
)

// CommandError indicates the Owner API accepted a command request but the vehicle declined to
// execute it. Reason is the API-supplied explanation, such as "already_locked".
type CommandError struct {
	Reason string
}

func (e *CommandError) Error() string {
	if e.Reason == "" {
		return "vehicle rejected command"
	}
	return "vehicle rejected command: " + e.Reason
}

func (e *CommandError) MayHaveSucceeded() bool {
	return false
}

func (e *CommandError) Temporary() bool {
	return false
}

// TransportError wraps a network-level failure. The vehicle may or may not have received the
// command, depending on where the request failed.
type TransportError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewTransportError(err error, mayHaveSucceeded bool, temporary bool) error {
	return &TransportError{Err: err, PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *TransportError) Temporary() bool {
	return e.PossibleTemporary
}

// ValidationError indicates a parameter failed a local precondition check. The client did not
// contact the server.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, a ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, a...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) MayHaveSucceeded() bool {
	return false
}

func (e *ValidationError) Temporary() bool {
	return false
}

// IsRejected returns true if err indicates the vehicle declined to execute a command. The
// rejection reason is available through [RejectionReason].
func IsRejected(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

// RejectionReason returns the API-supplied reason string if err is a command rejection, and ""
// otherwise.
func RejectionReason(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Reason
	}
	return ""
}

// IsValidation returns true if err was raised by a local precondition check, before any network
// traffic.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// MayHaveSucceeded returns true if err indicates the command may have been executed but the
// client did not receive a confirmation.
func MayHaveSucceeded(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err indicates the command failed due to possibly transient
// conditions that do not require user action to resolve.
func Temporary(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.Temporary() {
		return true
	}
	return false
}
