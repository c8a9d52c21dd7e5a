package array

import (
	"testing"

	"github.com/minibasic/basic-runtime/errors"
)

func trapsWith(t *testing.T, fn func()) *errors.Error {
	t.Helper()
	var trapped *errors.Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				e, ok := r.(*errors.Error)
				if !ok {
					t.Fatalf("panic with unexpected value: %v", r)
				}
				trapped = e
			}
		}()
		fn()
	}()
	return trapped
}

func TestAllocZeroed(t *testing.T) {
	a := NewAllocator()

	buf := a.Alloc(4, 10)
	if len(buf) != 40 {
		t.Fatalf("len = %d, want 40", len(buf))
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, b)
		}
	}
	if a.Live() != 1 {
		t.Fatalf("Live = %d, want 1", a.Live())
	}

	a.Free(buf)
	if a.Live() != 0 {
		t.Fatalf("Live = %d after Free, want 0", a.Live())
	}
	a.Free(nil) // ignored
	if a.Live() != 0 {
		t.Fatal("Free(nil) changed the live count")
	}
}

func TestAllocInvalidArguments(t *testing.T) {
	a := NewAllocator()

	tests := []struct {
		name              string
		elementSize, count int32
	}{
		{"zero count", 4, 0},
		{"negative count", 4, -1},
		{"zero element size", 0, 10},
		{"negative element size", -4, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := trapsWith(t, func() { a.Alloc(tt.elementSize, tt.count) }); err == nil {
				t.Fatalf("Alloc(%d, %d) did not trap", tt.elementSize, tt.count)
			}
		})
	}
}

func TestBoundsCheck(t *testing.T) {
	a := NewAllocator()
	a.Alloc(4, 10)

	// In range: no trap.
	a.BoundsCheck(0, 10)
	a.BoundsCheck(9, 10)

	err := trapsWith(t, func() { a.BoundsCheck(10, 10) })
	if err == nil {
		t.Fatal("BoundsCheck(10, 10) did not trap")
	}
	if err.Kind != errors.KindOutOfBounds {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindOutOfBounds)
	}

	if err := trapsWith(t, func() { a.BoundsCheck(-1, 10) }); err == nil {
		t.Fatal("BoundsCheck(-1, 10) did not trap")
	}
}

func TestCheckDimSize(t *testing.T) {
	a := NewAllocator()

	a.CheckDimSize(0, 0)  // empty dimension is checked at Alloc, not here
	a.CheckDimSize(10, 1) // fine

	err := trapsWith(t, func() { a.CheckDimSize(-5, 2) })
	if err == nil {
		t.Fatal("negative dimension did not trap")
	}
	if err.Kind != errors.KindInvalidInput {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindInvalidInput)
	}
}
