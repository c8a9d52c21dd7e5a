package errors

import (
	"fmt"
	"strings"
)

// Stage indicates which runtime service reported the error
type Stage string

const (
	StageString      Stage = "string"      // string value model
	StageTry         Stage = "try"         // exception stack
	StageMachine     Stage = "machine"     // state-machine engine
	StageArray       Stage = "array"       // array support
	StageAssert      Stage = "assert"      // ASSERT lowering
	StageHost        Stage = "host"        // guest ABI
	StageMachineFile Stage = "machinefile" // machine definition loading
	StageRun         Stage = "run"         // program execution
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds   Kind = "out_of_bounds"
	KindCapacity      Kind = "capacity"
	KindDepthExceeded Kind = "depth_exceeded"
	KindUncaught      Kind = "uncaught"
	KindInvalidHandle Kind = "invalid_handle"
	KindInvalidInput  Kind = "invalid_input"
	KindUseAfterFree  Kind = "use_after_free"
	KindDoubleFree    Kind = "double_free"
	KindOverflow      Kind = "overflow"
	KindNotFound      Kind = "not_found"
	KindAssertFailed  Kind = "assert_failed"
	KindLeak          Kind = "leak"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Cause  error
	Stage  Stage
	Kind   Kind
	Op     string // runtime operation, e.g. "string_concat"
	Detail string
	Offset int32 // source offset from generated code, 0 when absent
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Offset != 0 {
		fmt.Fprintf(&b, " (source offset %d)", e.Offset)
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
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Op sets the runtime operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Offset sets the source offset reported by generated code
func (b *Builder) Offset(offset int32) *Builder {
	b.err.Offset = offset
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

// OutOfBounds creates an array bounds violation error
func OutOfBounds(index, size int32) *Error {
	return &Error{
		Stage:  StageArray,
		Kind:   KindOutOfBounds,
		Op:     "array_bounds_check",
		Detail: fmt.Sprintf("index %d out of bounds (size %d)", index, size),
	}
}

// Capacity creates a fixed-capacity overflow error
func Capacity(stage Stage, what string, limit int) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindCapacity,
		Detail: fmt.Sprintf("%s capacity %d exceeded", what, limit),
	}
}

// DepthExceeded creates a TRY nesting overflow error
func DepthExceeded(limit int) *Error {
	return &Error{
		Stage:  StageTry,
		Kind:   KindDepthExceeded,
		Op:     "try_begin",
		Detail: fmt.Sprintf("TRY/CATCH nested too deep (max %d)", limit),
	}
}

// Uncaught creates an error for a throw with no active TRY frame
func Uncaught(message string) *Error {
	return &Error{
		Stage:  StageTry,
		Kind:   KindUncaught,
		Op:     "throw",
		Detail: fmt.Sprintf("unhandled error: %s", message),
	}
}

// InvalidHandle creates an invalid handle error
func InvalidHandle(stage Stage, op string, handle int32) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindInvalidHandle,
		Op:     op,
		Detail: fmt.Sprintf("invalid handle %d", handle),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(stage Stage, detail string) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// UseAfterFree creates a freed-value usage error
func UseAfterFree(op string) *Error {
	return &Error{
		Stage:  StageString,
		Kind:   KindUseAfterFree,
		Op:     op,
		Detail: "operation on a released string value",
	}
}

// DoubleFree creates a double-release error
func DoubleFree(op string) *Error {
	return &Error{
		Stage:  StageString,
		Kind:   KindDoubleFree,
		Op:     op,
		Detail: "release of an already-freed string value",
	}
}

// Overflow creates an allocation-size overflow error
func Overflow(elementSize, count int32) *Error {
	return &Error{
		Stage:  StageArray,
		Kind:   KindOverflow,
		Op:     "array_alloc",
		Detail: fmt.Sprintf("allocation of %d elements of %d bytes overflows the size type", count, elementSize),
	}
}

// AssertFailed creates an assertion failure error
func AssertFailed(message string, offset int32) *Error {
	detail := message
	if detail == "" {
		detail = fmt.Sprintf("ASSERT FAILED at offset %d", offset)
	}
	return &Error{
		Stage:  StageAssert,
		Kind:   KindAssertFailed,
		Op:     "assert_fail",
		Detail: detail,
		Offset: offset,
	}
}
