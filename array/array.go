// Package array implements bounds-checked array support for generated code.
//
// Buffers are zero-initialized, contiguous and caller-owned: there is no
// refcounting, and Free exists so unbalanced alloc/free sequences show up in
// the live count. All violations (bad dimensions, size overflow, index out
// of bounds) are fatal; there is no recoverable path for them on the
// target.
package array

import (
	"math"

	"go.uber.org/zap"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/errors"
)

// Allocator allocates and audits fixed-size array buffers.
type Allocator struct {
	logger *zap.Logger
	trap   basicruntime.TrapFunc
	live   int
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the allocator's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Allocator) { a.logger = logger }
}

// WithTrap sets the handler for fatal conditions.
func WithTrap(trap basicruntime.TrapFunc) Option {
	return func(a *Allocator) { a.trap = trap }
}

// NewAllocator creates an array allocator.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		logger: zap.NewNop(),
		trap:   basicruntime.PanicTrap,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) fatal(err error) {
	a.trap(err)
	panic(err)
}

// Alloc returns a zero-initialized buffer for count elements of elementSize
// bytes. Fatal when either argument is non-positive or the total size
// overflows the platform's size type.
func (a *Allocator) Alloc(elementSize, count int32) []byte {
	if elementSize <= 0 || count <= 0 {
		a.fatal(errors.New(errors.StageArray, errors.KindInvalidInput).
			Op("array_alloc").
			Detail("element size %d, count %d", elementSize, count).
			Build())
	}
	size := uint64(elementSize) * uint64(count)
	if size > uint64(math.MaxInt) {
		a.fatal(errors.Overflow(elementSize, count))
	}
	a.live++
	return make([]byte, size)
}

// Free releases a buffer. Caller-managed; a nil buffer is ignored.
func (a *Allocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	a.live--
}

// BoundsCheck is fatal when index is outside [0, size). It exists purely
// for its side effect; generated code emits it before every element access.
func (a *Allocator) BoundsCheck(index, size int32) {
	if index < 0 || index >= size {
		a.fatal(errors.OutOfBounds(index, size))
	}
}

// CheckDimSize is fatal when a declared array dimension size is negative.
func (a *Allocator) CheckDimSize(value int32, dim int) {
	if value < 0 {
		a.fatal(errors.New(errors.StageArray, errors.KindInvalidInput).
			Op("array_check_dim_size").
			Detail("dimension %d declared with negative size %d", dim, value).
			Build())
	}
}

// Live returns the number of buffers allocated and not yet freed.
func (a *Allocator) Live() int {
	return a.live
}
