// Package strval implements the reference-counted string value type used by
// generated code.
//
// Values are immutable after construction: every transforming operation
// (concatenation, case conversion, trimming, slicing) allocates a new Value
// with refcount 1. Ownership is manual: the code generator emits Retain on
// every value-copying assignment or argument pass and Release at every scope
// exit or reassignment. The Heap tracks the live-value count so unbalanced
// call sequences can be audited; releasing an already-freed value or using
// one in an operation traps instead of silently corrupting.
//
// All operations are binary-safe: content is explicit-length []byte
// throughout and embedded NUL bytes are fully supported. This deviates from
// the original device runtime, where comparison and substring search
// depended on a NUL terminator.
//
// The refcount is not synchronized; a Heap and its values must be used from
// a single task.
package strval
