// Package errors provides structured error types for the hostbridge module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the managed handle involved, an operation path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRuntime, errors.KindOutstandingBorrow).
//		Handle(uint32(ref)).
//		Detail("%d borrows still held", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.StaleHandle(errors.PhaseRuntime, uint32(ref))
//	err := errors.OutOfBounds(errors.PhaseParse, path, 10, 5)
//
// Absent values (an argument index out of range, a tag mismatch, a null native
// input) are not errors in this module; they are reported through sentinels.
// Errors are reserved for host runtime and native heap failures.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
