// Package faults defines the structured error values exchanged across
// component boundaries.
//
// Ownership boundary:
// - stable fault codes and categories
// - recoverability classification and recovery hints
// - wrap-once bridging of transport errors
package faults

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Category groups fault codes by subsystem.
type Category string

const (
	CategoryConnection Category = "connection"
	CategoryDiscovery  Category = "discovery"
	CategoryPrint      Category = "print"
	CategoryData       Category = "data"
	CategoryOperation  Category = "operation"
	CategoryStatus     Category = "status"
	CategoryPlatform   Category = "platform"
)

// Recoverability classifies whether retrying may clear a fault.
type Recoverability string

const (
	RecoveryUnknown Recoverability = "unknown"
	Recoverable     Recoverability = "recoverable"
	NonRecoverable  Recoverability = "non_recoverable"
	PossiblyRecover Recoverability = "possibly_recoverable"
)

// Code is a stable machine-readable fault identifier.
type Code string

const (
	CodeConnectionFailed   Code = "connection.failed"
	CodeConnectionTimeout  Code = "connection.timeout"
	CodeConnectionLost     Code = "connection.lost"
	CodeNotConnected       Code = "connection.not_connected"
	CodeDiscoveryFailed    Code = "discovery.failed"
	CodeNoDevices          Code = "discovery.no_devices"
	CodePrintSendFailed    Code = "print.send_failed"
	CodePrintNotReady      Code = "print.not_ready"
	CodePrintCancelled     Code = "print.cancelled"
	CodeDataEmpty          Code = "data.empty"
	CodeDataInvalid        Code = "data.invalid"
	CodeOperationTimeout   Code = "operation.timeout"
	CodeOperationFailed    Code = "operation.failed"
	CodeOperationExhausted Code = "operation.attempts_exhausted"
	CodeStatusQueryFailed  Code = "status.query_failed"
	CodeStatusUnparseable  Code = "status.unparseable"
	CodePlatformFailure    Code = "platform.failure"
)

// Fault is a boundary error with a stable code and display metadata.
type Fault struct {
	Code      Code
	Category  Category
	Message   string
	Hint      string
	Recovery  Recoverability
	Timestamp time.Time
	cause     error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

// Is reports code equality so errors.Is works against template faults.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if !errors.As(target, &other) {
		return false
	}
	return f.Code == other.Code
}

// WithHint returns a copy of f carrying a display-ready recovery hint.
func (f *Fault) WithHint(hint string) *Fault {
	out := *f
	out.Hint = hint
	return &out
}

// WithRecovery returns a copy of f carrying a recoverability class.
func (f *Fault) WithRecovery(r Recoverability) *Fault {
	out := *f
	out.Recovery = r
	return &out
}

// New builds a fault with a formatted message.
func New(code Code, format string, args ...any) *Fault {
	return &Fault{
		Code:      code,
		Category:  categoryOf(code),
		Message:   fmt.Sprintf(format, args...),
		Recovery:  defaultRecovery(code),
		Timestamp: time.Now(),
	}
}

// Wrap builds a fault around an underlying cause. Already-bridged faults
// pass through unchanged so errors are classified exactly once.
func Wrap(code Code, cause error, format string, args ...any) *Fault {
	var existing *Fault
	if errors.As(cause, &existing) {
		return existing
	}
	f := New(code, format, args...)
	f.cause = cause
	return f
}

// From bridges an arbitrary error into a fault. Faults pass through; nil
// stays nil; anything else becomes an operation fault.
func From(err error) *Fault {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return Wrap(classify(err), err, "%v", err)
}

// IsTimeout reports whether err is a deadline-style failure, bridged or not.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var f *Fault
	if errors.As(err, &f) {
		if f.Code == CodeConnectionTimeout || f.Code == CodeOperationTimeout {
			return true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// HasCode reports whether err carries the given fault code.
func HasCode(err error, code Code) bool {
	var f *Fault
	if !errors.As(err, &f) {
		return false
	}
	return f.Code == code
}

func classify(err error) Code {
	if IsTimeout(err) {
		return CodeOperationTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeConnectionFailed
	}
	return CodeOperationFailed
}

func categoryOf(code Code) Category {
	switch code {
	case CodeConnectionFailed, CodeConnectionTimeout, CodeConnectionLost, CodeNotConnected:
		return CategoryConnection
	case CodeDiscoveryFailed, CodeNoDevices:
		return CategoryDiscovery
	case CodePrintSendFailed, CodePrintNotReady, CodePrintCancelled:
		return CategoryPrint
	case CodeDataEmpty, CodeDataInvalid:
		return CategoryData
	case CodeStatusQueryFailed, CodeStatusUnparseable:
		return CategoryStatus
	case CodePlatformFailure:
		return CategoryPlatform
	default:
		return CategoryOperation
	}
}

func defaultRecovery(code Code) Recoverability {
	switch code {
	case CodeConnectionFailed, CodeConnectionTimeout, CodeConnectionLost, CodePrintNotReady:
		return Recoverable
	case CodeDataEmpty, CodeDataInvalid, CodePrintCancelled:
		return NonRecoverable
	case CodePrintSendFailed, CodeStatusQueryFailed:
		return PossiblyRecover
	default:
		return RecoveryUnknown
	}
}

// HintFor returns a display-ready recovery hint for a fault code.
func HintFor(code Code) string {
	switch code {
	case CodeConnectionFailed, CodeConnectionLost:
		return "Check that the printer is powered on and in range, then try again."
	case CodeConnectionTimeout, CodeOperationTimeout:
		return "The printer did not respond in time. Move closer or check the network."
	case CodeNotConnected:
		return "Connect to the printer before printing."
	case CodeNoDevices:
		return "No printers found. Make sure a printer is powered on and discoverable."
	case CodePrintNotReady:
		return "Resolve the reported printer issues (paper, head, pause) and retry."
	case CodePrintSendFailed:
		return "The job may not have printed. Check the printer before resending."
	case CodeDataEmpty, CodeDataInvalid:
		return "The print payload is invalid and cannot be sent as-is."
	default:
		return ""
	}
}
