// Package errors provides structured error types for the objc2 library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). Note the split with the rc package's contract
// violations: those are fatal misuse and panic; this package covers the
// recoverable surface — parsing encodings, resolving classes, loading
// the foreign runtime.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidEncoding).
//		Input("{CGPoint=").
//		Detail("unterminated struct encoding").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseClass, "NSMutableArray")
//	err := errors.InvalidEncoding(input, offset, "unexpected '}'")
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
