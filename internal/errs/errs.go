// Package errs defines the error taxonomy shared by every jpegr stage.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without string matching.
type Kind int

const (
	// KindValidation covers bad caller input: direction, colors, empty lists, option ranges.
	// It is raised before any decode work starts.
	KindValidation Kind = iota + 1

	// KindCapability means no host primitive can perform a required step.
	KindCapability

	// KindDecode means the host could not turn the bytes into a drawable image.
	KindDecode

	// KindEncode means the host failed to serialize a surface.
	KindEncode

	// KindUpload covers a missing processed image or a non-2xx response.
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCapability:
		return "capability"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Msg is what ends up in a ProcessResult.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == ""
}

// Sentinels for errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrCapability = &Error{Kind: KindCapability}
	ErrDecode     = &Error{Kind: KindDecode}
	ErrEncode     = &Error{Kind: KindEncode}
	ErrUpload     = &Error{Kind: KindUpload}
)

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Capability(op, msg string) *Error {
	return &Error{Kind: KindCapability, Op: op, Msg: msg}
}

// Decode reports the single decode message hosts surface for unreadable input.
func Decode(op string, err error) *Error {
	return &Error{Kind: KindDecode, Op: op, Msg: "Invalid image file", Err: err}
}

func Encode(op string, err error) *Error {
	return &Error{Kind: KindEncode, Op: op, Msg: "Encoding failed", Err: err}
}

func Upload(op, msg string, err error) *Error {
	return &Error{Kind: KindUpload, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
