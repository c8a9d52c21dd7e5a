// Package except implements the TRY/CATCH exception stack.
//
// The structured form executes a guarded block and returns a tagged
// outcome:
//
//	out := stack.Try(func() {
//	    ...
//	    stack.ThrowString("boom")
//	})
//	if out == except.Caught {
//	    msg := stack.ErrorMessage()
//	}
//
// Throw performs the non-local transfer as a typed panic recovered only by
// the innermost active Try on the same stack, which preserves LIFO catch
// resolution without heap-allocated exception objects. At most one pending
// message exists at a time; every throw overwrites it.
//
// A flat form (Begin, End, Raise) maintains the same counters and pending
// slot for the wasm guest ABI, where the generated code performs its own
// unwinding branches.
//
// A Stack is conceptually per task. It is not synchronized; spawned tasks
// get their own stack via runtime.NewTaskTry.
package except

import (
	"go.uber.org/zap"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/strval"
)

// MaxDepth is the TRY nesting limit. Exceeding it is fatal.
const MaxDepth = 16

// maxMessage bounds the pending-error slot, matching the device runtime's
// fixed buffer.
const maxMessage = 256

// Outcome is the tagged result of a guarded block.
type Outcome int

const (
	// Completed means the block ran to the end without throwing.
	Completed Outcome = iota
	// Caught means a throw inside the block was caught by this TRY frame.
	Caught
)

// Stack is a bounded stack of TRY frames plus the single pending-error slot.
type Stack struct {
	heap    *strval.Heap
	logger  *zap.Logger
	trap    basicruntime.TrapFunc
	pending []byte
	depth   int
}

// Option configures a Stack.
type Option func(*Stack)

// WithLogger sets the stack's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Stack) { s.logger = logger }
}

// WithTrap sets the handler for fatal conditions.
func WithTrap(trap basicruntime.TrapFunc) Option {
	return func(s *Stack) { s.trap = trap }
}

// NewStack creates an exception stack. heap backs ErrorMessage allocations.
func NewStack(heap *strval.Heap, opts ...Option) *Stack {
	s := &Stack{
		heap:   heap,
		logger: zap.NewNop(),
		trap:   basicruntime.PanicTrap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stack) fatal(err error) {
	s.trap(err)
	panic(err)
}

// throwSignal is the panic payload for a throw. Carrying the stack pointer
// keeps independent stacks (one per task) from catching each other's throws.
type throwSignal struct {
	stack *Stack
}

// Try executes block under a new TRY frame. It returns Completed when the
// block finishes normally and Caught when a throw on this stack landed in
// this frame. Traps when the nesting limit is already reached. Panics that
// are not throws pass through with the frame released.
func (s *Stack) Try(block func()) (out Outcome) {
	s.Begin()
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(*throwSignal); ok && sig.stack == s {
				// Throw already released the frame.
				out = Caught
				return
			}
			s.End()
			panic(r)
		}
		s.End()
	}()
	block()
	return Completed
}

// Throw stores the message in the pending slot and transfers control to the
// innermost active Try on this stack. A nil or empty message becomes
// "Unknown error". With no active frame the throw is fatal.
//
// Throw must only be used under Try; the flat ABI uses Raise instead.
func (s *Stack) Throw(message *strval.Value) {
	s.raise(messageBytes(message))
	panic(&throwSignal{stack: s})
}

// ThrowString is Throw for messages originating in Go code.
func (s *Stack) ThrowString(message string) {
	s.raise([]byte(message))
	panic(&throwSignal{stack: s})
}

// Begin opens a TRY frame. Fatal when the nesting limit is reached.
func (s *Stack) Begin() {
	if s.depth >= MaxDepth {
		s.fatal(errors.DepthExceeded(MaxDepth))
	}
	s.depth++
}

// End closes the innermost frame on normal completion of a guarded block.
// No-op at depth zero.
func (s *Stack) End() {
	if s.depth > 0 {
		s.depth--
	}
}

// Raise records the thrown message, consumes the innermost frame and
// returns the remaining depth. The wasm guest branches on it to unwind to
// the matching catch site. Fatal with no active frame.
func (s *Stack) Raise(message *strval.Value) int32 {
	s.raise(messageBytes(message))
	return int32(s.depth)
}

func (s *Stack) raise(message []byte) {
	if len(message) == 0 {
		message = []byte("Unknown error")
	}
	if s.depth == 0 {
		s.fatal(errors.Uncaught(string(message)))
	}
	s.depth--
	if len(message) > maxMessage {
		message = message[:maxMessage]
	}
	s.pending = append(s.pending[:0], message...)
}

// ErrorMessage returns the pending-error contents as a fresh string value.
// Meaningful immediately after a catch; earlier contents are overwritten by
// every throw.
func (s *Stack) ErrorMessage() *strval.Value {
	return s.heap.AllocBytes(s.pending)
}

// Depth returns the number of active TRY frames.
func (s *Stack) Depth() int {
	return s.depth
}

func messageBytes(v *strval.Value) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}
