package fault

import (
	"errors"
	"fmt"
)

// Kind is the stable error classification surfaced to clients.
type Kind string

const (
	KindNotFound              Kind = "NOT_FOUND"
	KindBusinessRuleViolation Kind = "BUSINESS_RULE_VIOLATION"
	KindPayment               Kind = "PAYMENT_ERROR"
	KindForbidden             Kind = "FORBIDDEN"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

func BusinessRule(format string, args ...any) *Error {
	return &Error{
		Kind:    KindBusinessRuleViolation,
		Message: fmt.Sprintf(format, args...),
	}
}

func Payment(format string, args ...any) *Error {
	return &Error{
		Kind:    KindPayment,
		Message: fmt.Sprintf(format, args...),
	}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{
		Kind:    KindForbidden,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a cause while keeping the kind matchable.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

func IsBusinessRuleViolation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindBusinessRuleViolation
}

func IsPayment(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindPayment
}
