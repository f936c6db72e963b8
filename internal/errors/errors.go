// Package errors defines the error kinds the matching core reports to callers
// and maps them onto gRPC and HTTP.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category returned to callers.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindBlocked             Kind = "blocked"
	KindNotEligible         Kind = "not_eligible"
	KindInvalidAccountState Kind = "invalid_account_state"
	KindConflict            Kind = "conflict"
	KindNothingToUndo       Kind = "nothing_to_undo"
	KindInternal            Kind = "internal"
)

// Error carries a Kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrBlocked) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

// Sentinels for errors.Is checks; they match any error of the kind.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrBlocked             = &Error{Kind: KindBlocked}
	ErrNotEligible         = &Error{Kind: KindNotEligible}
	ErrInvalidAccountState = &Error{Kind: KindInvalidAccountState}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrNothingToUndo       = &Error{Kind: KindNothingToUndo}
)

func New(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) error          { return New(KindValidation, msg) }
func NotFound(msg string) error            { return New(KindNotFound, msg) }
func Blocked(msg string) error             { return New(KindBlocked, msg) }
func NotEligible(msg string) error         { return New(KindNotEligible, msg) }
func InvalidAccountState(msg string) error { return New(KindInvalidAccountState, msg) }
func Conflict(msg string) error            { return New(KindConflict, msg) }
func NothingToUndo(msg string) error       { return New(KindNothingToUndo, msg) }

// KindOf reports the Kind of err. Errors that are not *Error are classified
// by Classify first, so store-level errors get their proper kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(Classify(err), &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(Classify(err), &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
