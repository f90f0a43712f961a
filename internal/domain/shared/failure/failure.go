// Package failure defines the error taxonomy shared by the domain and
// application layers. Every expected business failure is returned as a value
// carrying a Kind so transports can map it without string matching.
package failure

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindCurrencyMismatch Kind = "currency_mismatch"
	KindInvalidOperation Kind = "invalid_operation"
	KindUnauthorized     Kind = "unauthorized"
	KindConversionFailed Kind = "conversion_failed"
	KindNotFound         Kind = "not_found"
	KindServer           Kind = "server_failure"
)

// Error is a typed failure. Sentinels are declared as *Error values so that
// errors.Is keeps working after wrapping with fmt.Errorf("...: %w", err).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in the chain. Errors that
// carry no kind are treated as opaque server failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindServer
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message renders a human readable message without package prefixes.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx > 0 && !strings.Contains(msg[:idx], " ") {
		return msg[idx+2:]
	}
	return msg
}

// Retryable reports whether the caller may repeat the same request.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindConversionFailed:
		return true
	default:
		return false
	}
}
