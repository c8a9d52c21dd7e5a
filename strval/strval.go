package strval

import (
	"bytes"

	"go.uber.org/zap"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/errors"
)

// Value is a reference-counted, immutable-after-construction byte string.
type Value struct {
	heap  *Heap
	b     []byte
	refs  int32
	freed bool
}

// Heap allocates and tracks string values. It is an explicit object rather
// than a process-wide global so independent runtime instances can coexist.
type Heap struct {
	logger *zap.Logger
	trap   basicruntime.TrapFunc
	live   int
	total  uint64
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger sets the heap's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Heap) { h.logger = logger }
}

// WithTrap sets the handler for fatal conditions.
func WithTrap(trap basicruntime.TrapFunc) Option {
	return func(h *Heap) { h.trap = trap }
}

// NewHeap creates a string heap.
func NewHeap(opts ...Option) *Heap {
	h := &Heap{
		logger: zap.NewNop(),
		trap:   basicruntime.PanicTrap,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heap) fatal(err error) {
	h.trap(err)
	panic(err)
}

func (h *Heap) newValue(b []byte) *Value {
	h.live++
	h.total++
	return &Value{heap: h, b: b, refs: 1}
}

// checkLive traps when v has already been freed. nil is a valid operand
// (the empty string) everywhere it is called.
func (h *Heap) checkLive(v *Value, op string) {
	if v != nil && v.freed {
		h.fatal(errors.UseAfterFree(op))
	}
}

// Alloc creates a value with refcount 1 holding a copy of s.
func (h *Heap) Alloc(s string) *Value {
	return h.newValue([]byte(s))
}

// AllocBytes creates a value with refcount 1 holding a copy of b.
func (h *Heap) AllocBytes(b []byte) *Value {
	return h.newValue(append([]byte(nil), b...))
}

// Concat produces a new value holding a's content followed by b's.
// A nil operand is treated as the empty string; neither input is mutated
// or consumed.
func (h *Heap) Concat(a, b *Value) *Value {
	h.checkLive(a, "string_concat")
	h.checkLive(b, "string_concat")
	buf := make([]byte, 0, a.Len()+b.Len())
	buf = append(buf, a.bytes()...)
	buf = append(buf, b.bytes()...)
	return h.newValue(buf)
}

// Compare returns -1, 0 or +1 ordering a and b by lexicographic byte order.
// A nil operand is treated as the empty string.
func (h *Heap) Compare(a, b *Value) int32 {
	h.checkLive(a, "string_compare")
	h.checkLive(b, "string_compare")
	return int32(bytes.Compare(a.bytes(), b.bytes()))
}

// Live returns the number of values currently allocated and not yet freed.
func (h *Heap) Live() int {
	return h.live
}

// Total returns the number of values allocated over the heap's lifetime.
func (h *Heap) Total() uint64 {
	return h.total
}

// Retain increments the refcount. Generated code calls it on every logical
// copy that keeps an additional alias alive. Nil-safe.
func (v *Value) Retain() {
	if v == nil {
		return
	}
	if v.freed {
		v.heap.fatal(errors.UseAfterFree("string_retain"))
	}
	v.refs++
}

// Release decrements the refcount and frees the storage when it reaches
// zero. Generated code calls it at every scope exit and reassignment.
// Releasing an already-freed value traps. Nil-safe.
func (v *Value) Release() {
	if v == nil {
		return
	}
	if v.freed {
		v.heap.fatal(errors.DoubleFree("string_release"))
	}
	v.refs--
	if v.refs <= 0 {
		v.freed = true
		v.b = nil
		v.heap.live--
	}
}

// Len returns the content length in bytes. Nil-safe.
func (v *Value) Len() int32 {
	if v == nil {
		return 0
	}
	return int32(len(v.b))
}

// Refs returns the current refcount. Zero for nil or freed values.
func (v *Value) Refs() int32 {
	if v == nil || v.freed {
		return 0
	}
	return v.refs
}

// Freed reports whether the value's storage has been released.
func (v *Value) Freed() bool {
	return v != nil && v.freed
}

// String returns the content as a Go string. Nil-safe; empty once freed.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	return string(v.b)
}

// Bytes returns the content as a copy. Nil-safe.
func (v *Value) Bytes() []byte {
	if v == nil {
		return nil
	}
	return append([]byte(nil), v.b...)
}

// bytes returns the backing slice without copying. Callers must not mutate.
func (v *Value) bytes() []byte {
	if v == nil {
		return nil
	}
	return v.b
}
