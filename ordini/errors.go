package ordini

import (
	"errors"
	"fmt"
)

// Kind classifies a request rejection. The transport maps each kind to a
// fixed HTTP status code.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindUnauthorized
	KindConflict
	KindNotFound
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "unknown"
	}
}

// Error carries the rejection kind plus the message echoed verbatim to the
// caller. Every operation either rejects before mutating anything or
// succeeds, there are no partial failures.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func IsKind(err error, kind Kind) bool {
	var derr *Error
	return errors.As(err, &derr) && derr.Kind == kind
}

func invalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func invalidArgumentf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidOperation(msg string) error {
	return &Error{Kind: KindInvalidOperation, Message: msg}
}

func errUnauthorized() error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized. Admin token required"}
}
