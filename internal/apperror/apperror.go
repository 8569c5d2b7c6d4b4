// internal/apperror/apperror.go
package apperror

import "fmt"

// Kind classifies a failure so transport layers can map it without
// inspecting message text.
type Kind string

const (
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindJobNotFound       Kind = "JOB_NOT_FOUND"
	KindDuplicate         Kind = "DUPLICATE"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindStaleState        Kind = "STALE_STATE"
	KindProfileRequired   Kind = "PROFILE_REQUIRED"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindInternal          Kind = "INTERNAL"
)

// Sentinels for errors.Is checks. Any *Error with the same Kind matches.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrJobNotFound       = &Error{Kind: KindJobNotFound, Message: "job not found"}
	ErrDuplicate         = &Error{Kind: KindDuplicate, Message: "duplicate"}
	ErrIllegalTransition = &Error{Kind: KindIllegalTransition, Message: "illegal status transition"}
	ErrStaleState        = &Error{Kind: KindStaleState, Message: "application status changed concurrently"}
	ErrProfileRequired   = &Error{Kind: KindProfileRequired, Message: "candidate profile required"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal error"}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match on Kind, so wrapped instances compare equal to the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps a storage or infrastructure failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindInternal
}
