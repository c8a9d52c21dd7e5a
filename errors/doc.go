// Package errors provides structured error types for the basic-runtime
// library.
//
// Errors are categorized by Stage (which runtime service reported the
// condition) and Kind (error category). The Error type carries the runtime
// operation name, an optional source offset supplied by generated code, and
// a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.StageMachine, errors.KindCapacity).
//		Op("machine_add_state").
//		Detail("state %q dropped, capacity %d reached", name, max).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(index, size)
//	err := errors.Capacity(errors.StageMachine, "states", 16)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
