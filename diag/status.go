package diag

import (
	"errors"
	"fmt"
)

// Failure classes. Every error returned by this package wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	// ErrInvalidArgument covers rejected inputs (bad enum, out-of-range
	// lane or count) and features unsupported by the hardware generation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBusy means the hardware operation is still in progress. Eye
	// fetch retries it internally; everywhere else it is surfaced.
	ErrBusy = errors.New("device busy")

	// ErrProtocol covers any other non-zero device status and transport
	// failures from the Device.
	ErrProtocol = errors.New("protocol error")
)

// Completion status codes carried in diagnostic response payloads.
const (
	statusOK         = 0
	statusInvalidArg = 2
	statusBusy       = 3
)

// StatusError reports a non-zero completion status byte in a diagnostic
// response payload.
type StatusError struct {
	Op     string // operation that observed the status
	Status uint8  // raw status byte from the response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Unwrap(), e.Status)
}

// Unwrap maps the raw status to its failure class: 2 is ErrInvalidArgument,
// 3 is ErrBusy, anything else is ErrProtocol.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case statusInvalidArg:
		return ErrInvalidArgument
	case statusBusy:
		return ErrBusy
	default:
		return ErrProtocol
	}
}

// statusError classifies the completion status byte of a diagnostic
// response. Status 0 is success. The whole eye-capture family funnels its
// response status through here.
func statusError(op string, status uint8) error {
	if status == statusOK {
		return nil
	}
	return &StatusError{Op: op, Status: status}
}

// classified reports whether err already wraps one of the failure classes.
func classified(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrBusy) || errors.Is(err, ErrProtocol)
}
