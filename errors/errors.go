package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // encoding string parsing
	PhaseEncode  Phase = "encode"  // encoding construction/printing
	PhaseClass   Phase = "class"   // class lookup and registration
	PhaseRuntime Phase = "runtime" // foreign runtime loading
	PhaseScript  Phase = "script"  // inspector script execution
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindInvalidEncoding Kind = "invalid_encoding"
	KindUnsupported     Kind = "unsupported"
	KindUnavailable     Kind = "unavailable"
	KindNilPointer      Kind = "nil_pointer"
	KindInvalidInput    Kind = "invalid_input"
	KindRegistration    Kind = "registration"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Input  string
	Detail string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Input != "" {
		b.WriteString(" in ")
		b.WriteString(fmt.Sprintf("%q", e.Input))
		if e.Offset > 0 {
			b.WriteString(fmt.Sprintf(" at offset %d", e.Offset))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Input records the offending input string
func (b *Builder) Input(s string) *Builder {
	b.err.Input = s
	return b
}

// Offset records the position within the input
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a lookup failure error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%q not found", what),
	}
}

// InvalidEncoding creates an encoding parse error
func InvalidEncoding(input string, offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidEncoding,
		Input:  input,
		Offset: offset,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Unavailable creates an error for a runtime that cannot be loaded on
// this platform
func Unavailable(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnavailable,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("nil pointer: %s", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
