package parser

import (
	"errors"
	"fmt"
)

// Kind classifies import failures. A Kind is itself an error so callers can
// test for it with errors.Is.
type Kind int

const (
	KindUnknown Kind = iota
	KindFormatMismatch
	KindUnsupportedVersion
	KindReadShortfall
	KindCipherSetup
	KindCipherInternal
	KindHashUnavailable
	KindIntegrity
	KindWrite
	KindCancelled
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindFormatMismatch:     "format mismatch",
	KindUnsupportedVersion: "unsupported version",
	KindReadShortfall:      "read shortfall",
	KindCipherSetup:        "cipher setup",
	KindCipherInternal:     "cipher internal",
	KindHashUnavailable:    "hash unavailable",
	KindIntegrity:          "integrity",
	KindWrite:              "write",
	KindCancelled:          "cancelled",
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// Error is an import failure of a known kind.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "read header"
	Err  error  // underlying cause, may be nil
}

// NewError creates an Error.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates an Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
