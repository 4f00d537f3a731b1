package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures for the transport layer
type Kind int

const (
	KindPersistence Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindStockUnavailable
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindStockUnavailable:
		return "stock_unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "persistence"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
// Anything unclassified is treated as a persistence failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// Message is the client-safe text for err. Persistence details stay in the logs.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindPersistence {
			return e.Msg
		}
		return e.Error()
	}
	return "internal server error"
}

func invalid(format string, args ...any) error {
	return newError(KindInvalidInput, fmt.Sprintf(format, args...))
}

func persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

var (
	ErrProductNotFound     = newError(KindNotFound, "product not found")
	ErrOrderNotFound       = newError(KindNotFound, "order not found")
	ErrCartLineNotFound    = newError(KindNotFound, "product not in cart")
	ErrCartEmpty           = newError(KindNotFound, "cart is empty")
	ErrAccountNotFound     = newError(KindNotFound, "account not found")
	ErrDuplicateCartLine   = newError(KindConflict, "product already in cart")
	ErrEmailExists         = newError(KindConflict, "email already exists")
	ErrDuplicateProduct    = newError(KindConflict, "product with this name already exists")
	ErrRequestInProgress   = newError(KindConflict, "a request with this idempotency key is still in progress")
	ErrInvalidQuantity     = newError(KindInvalidInput, "quantity must be greater than zero")
	ErrOutOfStock          = newError(KindStockUnavailable, "product is out of stock")
	ErrInsufficientStock   = newError(KindStockUnavailable, "quantity exceeds available stock")
	ErrStockUnavailable    = newError(KindStockUnavailable, "not enough stock for requested quantity")
	ErrInvalidCredentials  = newError(KindUnauthorized, "invalid email or password")
	ErrWrongPassword       = newError(KindUnauthorized, "password is incorrect")
	ErrSessionExpired      = newError(KindUnauthorized, "session expired")
	ErrInvalidRefresh      = newError(KindForbidden, "invalid refresh token")
	ErrNotOwner            = newError(KindForbidden, "not the owner of this product")
	ErrAdminSignupDisabled = newError(KindForbidden, "admin signup is not allowed")
)
