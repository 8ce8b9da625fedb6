// Package apperr defines the typed business errors returned by the core services.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindAlreadyFinal      Kind = "already_final"
	KindEmptyCart         Kind = "empty_cart"
	KindUnavailable       Kind = "unavailable"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConfiguration     Kind = "configuration"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

// Error is a business-rule failure. Entity names the offending record
// (e.g. "product 42") so callers can surface an actionable message.
type Error struct {
	Kind    Kind
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Entity != "" {
		msg = e.Entity + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.ErrEmptyCart) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Entity == "" && t.Message == ""
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrAlreadyFinal      = &Error{Kind: KindAlreadyFinal}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart}
	ErrUnavailable       = &Error{Kind: KindUnavailable}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrConflict          = &Error{Kind: KindConflict}
)

func newf(kind Kind, entity, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

func Validation(entity, format string, args ...interface{}) *Error {
	return newf(KindValidation, entity, format, args...)
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: "not found"}
}

func InvalidState(entity, format string, args ...interface{}) *Error {
	return newf(KindInvalidState, entity, format, args...)
}

func AlreadyFinal(entity, status string) *Error {
	return newf(KindAlreadyFinal, entity, "status %q is final", status)
}

func EmptyCart() *Error {
	return &Error{Kind: KindEmptyCart, Message: "cart is empty"}
}

func Unavailable(entity string) *Error {
	return &Error{Kind: KindUnavailable, Entity: entity, Message: "is not available"}
}

func InsufficientStock(entity string, requested, onHand int) *Error {
	return newf(KindInsufficientStock, entity, "requested %d, only %d in stock", requested, onHand)
}

func Configuration(format string, args ...interface{}) *Error {
	return newf(KindConfiguration, "", format, args...)
}

func Conflict(entity string, err error) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Message: "already exists", Err: err}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
