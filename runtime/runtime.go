// Package runtime provides the high-level API aggregating the core runtime
// services consumed by generated code: string values, the exception stack,
// the state-machine registry and array support.
//
// A Runtime is an explicit context object so that multiple independent
// instances can coexist. It is not synchronized; spawned tasks share no
// variables by language
// design and get their own exception stack via NewTaskTry.
package runtime

import (
	"go.uber.org/zap"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/array"
	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/except"
	"github.com/minibasic/basic-runtime/machine"
	"github.com/minibasic/basic-runtime/strval"
)

// Runtime bundles the process-wide runtime services.
type Runtime struct {
	Strings  *strval.Heap
	Try      *except.Stack
	Machines *machine.Registry
	Arrays   *array.Allocator

	logger *zap.Logger
	trap   basicruntime.TrapFunc
}

type config struct {
	logger *zap.Logger
	trap   basicruntime.TrapFunc
}

// Option configures a Runtime.
type Option func(*config)

// WithLogger sets the logger shared by all services. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithTrap sets the handler for fatal runtime conditions. Defaults to
// ExitTrap, matching the device behavior. Tests and host-module embedding
// pass basicruntime.PanicTrap.
func WithTrap(trap basicruntime.TrapFunc) Option {
	return func(c *config) { c.trap = trap }
}

// New creates a runtime with all services wired to the same logger and trap
// policy.
func New(opts ...Option) *Runtime {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.trap == nil {
		cfg.trap = basicruntime.ExitTrap(cfg.logger)
	}

	heap := strval.NewHeap(
		strval.WithLogger(cfg.logger.Named("strval")),
		strval.WithTrap(cfg.trap),
	)
	return &Runtime{
		Strings: heap,
		Try: except.NewStack(heap,
			except.WithLogger(cfg.logger.Named("except")),
			except.WithTrap(cfg.trap),
		),
		Machines: machine.NewRegistry(
			machine.WithLogger(cfg.logger.Named("machine")),
		),
		Arrays: array.NewAllocator(
			array.WithLogger(cfg.logger.Named("array")),
			array.WithTrap(cfg.trap),
		),
		logger: cfg.logger,
		trap:   cfg.trap,
	}
}

// NewTaskTry mints an independent exception stack for a spawned task.
// Tasks share no variables with their spawner, so each carries its own
// TRY/CATCH state.
func (r *Runtime) NewTaskTry() *except.Stack {
	return except.NewStack(r.Strings,
		except.WithLogger(r.logger.Named("except")),
		except.WithTrap(r.trap),
	)
}

// AssertFail reports a failed ASSERT and traps. The message is printed when
// non-empty, otherwise the source offset of the assertion identifies it.
func (r *Runtime) AssertFail(message *strval.Value, offset int32) {
	err := errors.AssertFailed(message.String(), offset)
	r.trap(err)
	panic(err)
}

// Close audits outstanding allocations. Leaks indicate an unbalanced
// retain/release or alloc/free sequence in the generated code.
func (r *Runtime) Close() error {
	if n := r.Strings.Live(); n > 0 {
		r.logger.Warn("string values leaked", zap.Int("count", n))
	}
	if n := r.Arrays.Live(); n > 0 {
		r.logger.Warn("array buffers leaked", zap.Int("count", n))
	}
	return nil
}
