package host

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/runtime"
)

// ModuleName is the import module generated code links against.
const ModuleName = "env"

// Config configures the host module.
type Config struct {
	// Runtime provides the core services. Construct it with
	// basicruntime.PanicTrap so fatal conditions surface as guest call
	// errors. Required.
	Runtime *runtime.Runtime

	// Stdout receives PRINT output. Defaults to os.Stdout.
	Stdout io.Writer

	// Logger for ABI diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Instantiate builds and instantiates the "env" host module on r.
func Instantiate(ctx context.Context, r wazero.Runtime, cfg Config) (api.Module, error) {
	if cfg.Runtime == nil {
		return nil, errors.InvalidInput(errors.StageHost, "Config.Runtime is required")
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	a := newABI(cfg.Runtime, cfg.Stdout, cfg.Logger)
	b := r.NewHostModuleBuilder(ModuleName)

	i32 := api.ValueTypeI32
	f32 := api.ValueTypeF32
	export := func(name string, fn api.GoModuleFunc, params, results []api.ValueType) {
		b.NewFunctionBuilder().WithGoModuleFunction(fn, params, results).Export(name)
	}

	// String value model.
	export("string_alloc", func(_ context.Context, mod api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.stringAlloc(mod.Memory(), uint32(stack[0]), uint32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("string_concat", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.stringConcat(int32(stack[0]), int32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("string_compare", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.stringCompare(int32(stack[0]), int32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("string_retain", func(_ context.Context, _ api.Module, stack []uint64) {
		a.stringRetain(int32(stack[0]))
	}, []api.ValueType{i32}, nil)
	export("string_release", func(_ context.Context, _ api.Module, stack []uint64) {
		a.stringRelease(int32(stack[0]))
	}, []api.ValueType{i32}, nil)
	export("string_length", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.stringLength(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("string_copy", func(_ context.Context, mod api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.stringCopy(mod.Memory(), int32(stack[0]), uint32(stack[1]), uint32(stack[2]))))
	}, []api.ValueType{i32, i32, i32}, []api.ValueType{i32})

	// Exception stack. throw returns the remaining depth; generated code
	// branches on it to reach the matching catch site.
	export("try_begin", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.tryBegin()))
	}, nil, []api.ValueType{i32})
	export("try_end", func(_ context.Context, _ api.Module, _ []uint64) {
		a.tryEnd()
	}, nil, nil)
	export("throw", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.throw(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("get_error_message", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.getErrorMessage()))
	}, nil, []api.ValueType{i32})

	// State-machine engine.
	export("machine_create", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.machineCreate(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("machine_add_state", func(_ context.Context, _ api.Module, stack []uint64) {
		a.machineAddState(int32(stack[0]), int32(stack[1]))
	}, []api.ValueType{i32, i32}, nil)
	export("machine_add_transition", func(_ context.Context, _ api.Module, stack []uint64) {
		a.machineAddTransition(int32(stack[0]), int32(stack[1]), int32(stack[2]), int32(stack[3]))
	}, []api.ValueType{i32, i32, i32, i32}, nil)
	export("machine_event", func(_ context.Context, _ api.Module, stack []uint64) {
		a.machineEvent(int32(stack[0]), int32(stack[1]))
	}, []api.ValueType{i32, i32}, nil)
	export("machine_get_state", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.machineGetState(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})

	// Array support. Allocation stays in the guest allocator; only the
	// checks cross the boundary.
	export("array_bounds_check", func(_ context.Context, _ api.Module, stack []uint64) {
		a.arrayBoundsCheck(int32(stack[0]), int32(stack[1]))
	}, []api.ValueType{i32, i32}, nil)
	export("array_check_dim_size", func(_ context.Context, _ api.Module, stack []uint64) {
		a.arrayCheckDimSize(int32(stack[0]), int32(stack[1]))
	}, []api.ValueType{i32, i32}, nil)

	// Assertions and PRINT output.
	export("assert_fail", func(_ context.Context, _ api.Module, stack []uint64) {
		a.assertFail(int32(stack[0]), int32(stack[1]))
	}, []api.ValueType{i32, i32}, nil)
	export("print_string", func(_ context.Context, _ api.Module, stack []uint64) {
		a.printString(int32(stack[0]))
	}, []api.ValueType{i32}, nil)
	export("print_int", func(_ context.Context, _ api.Module, stack []uint64) {
		a.printInt(int32(stack[0]))
	}, []api.ValueType{i32}, nil)
	export("print_float", func(_ context.Context, _ api.Module, stack []uint64) {
		a.printFloat(math.Float32frombits(uint32(stack[0])))
	}, []api.ValueType{f32}, nil)
	export("print_newline", func(_ context.Context, _ api.Module, _ []uint64) {
		a.printNewline()
	}, nil, nil)

	// String builtins.
	export("fn_len", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnLen(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("fn_asc", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnAsc(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("fn_chr", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnChr(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("fn_left", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnLeft(int32(stack[0]), int32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("fn_right", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnRight(int32(stack[0]), int32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("fn_mid", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnMid(int32(stack[0]), int32(stack[1]), int32(stack[2]))))
	}, []api.ValueType{i32, i32, i32}, []api.ValueType{i32})
	export("fn_instr", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnInstr(int32(stack[0]), int32(stack[1]))))
	}, []api.ValueType{i32, i32}, []api.ValueType{i32})
	export("fn_str", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnStr(math.Float32frombits(uint32(stack[0])))))
	}, []api.ValueType{f32}, []api.ValueType{i32})
	export("fn_val", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(math.Float32bits(a.fnVal(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{f32})
	export("fn_ucase", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnUcase(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("fn_lcase", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnLcase(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})
	export("fn_trim", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = uint64(uint32(a.fnTrim(int32(stack[0]))))
	}, []api.ValueType{i32}, []api.ValueType{i32})

	return b.Instantiate(ctx)
}
