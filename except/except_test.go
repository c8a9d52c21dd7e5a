package except

import (
	"testing"

	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/strval"
)

func newTestStack() (*Stack, *strval.Heap) {
	h := strval.NewHeap()
	return NewStack(h), h
}

// trapsWith reports the structured error fn trapped with, nil when none.
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

func TestThrowCaught(t *testing.T) {
	s, h := newTestStack()

	out := s.Try(func() {
		s.Throw(h.Alloc("something failed"))
		t.Fatal("code after throw executed")
	})

	if out != Caught {
		t.Fatalf("outcome = %v, want Caught", out)
	}
	if got := s.ErrorMessage().String(); got != "something failed" {
		t.Fatalf("ErrorMessage = %q, want %q", got, "something failed")
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d after catch, want 0", s.Depth())
	}
}

func TestTryCompleted(t *testing.T) {
	s, _ := newTestStack()

	ran := false
	out := s.Try(func() { ran = true })

	if out != Completed {
		t.Fatalf("outcome = %v, want Completed", out)
	}
	if !ran {
		t.Fatal("block did not run")
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
}

func TestEmptyMessageBecomesUnknownError(t *testing.T) {
	s, h := newTestStack()

	s.Try(func() { s.Throw(h.Alloc("")) })
	if got := s.ErrorMessage().String(); got != "Unknown error" {
		t.Errorf("empty message: ErrorMessage = %q", got)
	}

	s.Try(func() { s.Throw(nil) })
	if got := s.ErrorMessage().String(); got != "Unknown error" {
		t.Errorf("nil message: ErrorMessage = %q", got)
	}
}

func TestNestedInnermostCatches(t *testing.T) {
	s, _ := newTestStack()

	out := s.Try(func() {
		inner := s.Try(func() {
			s.ThrowString("inner boom")
		})
		if inner != Caught {
			t.Fatal("inner throw not caught by inner TRY")
		}
		if got := s.ErrorMessage().String(); got != "inner boom" {
			t.Fatalf("inner message = %q", got)
		}
		if s.Depth() != 1 {
			t.Fatalf("outer frame gone: depth = %d, want 1", s.Depth())
		}

		// Outer frame must still be active: throw again.
		s.ThrowString("outer boom")
	})

	if out != Caught {
		t.Fatal("outer throw not caught by outer TRY")
	}
	if got := s.ErrorMessage().String(); got != "outer boom" {
		t.Fatalf("outer message = %q", got)
	}
}

func TestPendingOverwrittenByEveryThrow(t *testing.T) {
	s, _ := newTestStack()

	s.Try(func() { s.ThrowString("first") })
	s.Try(func() { s.ThrowString("second") })

	if got := s.ErrorMessage().String(); got != "second" {
		t.Fatalf("ErrorMessage = %q, want %q", got, "second")
	}
}

func TestDepthLimitFatal(t *testing.T) {
	s, _ := newTestStack()

	var enter func(n int)
	enter = func(n int) {
		s.Try(func() {
			if n > 1 {
				enter(n - 1)
			}
		})
	}

	// 16 deep is fine.
	enter(MaxDepth)
	if s.Depth() != 0 {
		t.Fatalf("depth = %d after balanced nesting, want 0", s.Depth())
	}

	// One more is fatal.
	err := trapsWith(t, func() { enter(MaxDepth + 1) })
	if err == nil {
		t.Fatal("17-deep TRY nesting did not trap")
	}
	if err.Kind != errors.KindDepthExceeded {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindDepthExceeded)
	}
}

func TestUncaughtThrowFatal(t *testing.T) {
	s, _ := newTestStack()

	err := trapsWith(t, func() { s.ThrowString("nobody home") })
	if err == nil {
		t.Fatal("throw with no active TRY did not trap")
	}
	if err.Kind != errors.KindUncaught {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindUncaught)
	}
}

func TestForeignPanicPassesThrough(t *testing.T) {
	s, _ := newTestStack()

	defer func() {
		if r := recover(); r != "not a throw" {
			t.Fatalf("recovered %v, want foreign panic", r)
		}
		if s.Depth() != 0 {
			t.Fatalf("depth = %d after foreign panic, want 0", s.Depth())
		}
	}()
	s.Try(func() { panic("not a throw") })
	t.Fatal("foreign panic swallowed")
}

func TestIndependentStacks(t *testing.T) {
	h := strval.NewHeap()
	s1 := NewStack(h)
	s2 := NewStack(h)

	// A throw on s2 must not be caught by a Try on s1.
	err := trapsWith(t, func() {
		s1.Try(func() {
			s2.ThrowString("wrong stack")
		})
	})
	if err == nil {
		t.Fatal("throw on a stack with no frames did not trap")
	}
	if err.Kind != errors.KindUncaught {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindUncaught)
	}
}

func TestFlatForm(t *testing.T) {
	s, h := newTestStack()

	s.Begin()
	s.Begin()
	if s.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", s.Depth())
	}

	remaining := s.Raise(h.Alloc("guest error"))
	if remaining != 1 {
		t.Fatalf("Raise remaining depth = %d, want 1", remaining)
	}
	if got := s.ErrorMessage().String(); got != "guest error" {
		t.Fatalf("ErrorMessage = %q", got)
	}

	s.End()
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
	s.End() // no-op at zero
	if s.Depth() != 0 {
		t.Fatal("End at depth 0 went negative")
	}
}

func TestMessageTruncation(t *testing.T) {
	s, _ := newTestStack()

	long := make([]byte, maxMessage+100)
	for i := range long {
		long[i] = 'x'
	}
	s.Try(func() { s.ThrowString(string(long)) })

	if got := s.ErrorMessage().Len(); got != maxMessage {
		t.Fatalf("pending message length = %d, want %d", got, maxMessage)
	}
}

func TestErrorMessageVerbatim(t *testing.T) {
	s, h := newTestStack()

	msg := "exact: \t bytes \x01 preserved"
	s.Try(func() { s.Throw(h.Alloc(msg)) })
	if got := s.ErrorMessage().String(); got != msg {
		t.Fatalf("ErrorMessage = %q, want %q", got, msg)
	}
	// Each read allocates a fresh value with the same contents.
	if got := s.ErrorMessage().String(); got != msg {
		t.Fatalf("second read = %q, want %q", got, msg)
	}
}
