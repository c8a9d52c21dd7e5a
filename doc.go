// Package basicruntime provides the dynamic-runtime layer for programs
// compiled from a BASIC-family language. The compiler lowers language
// constructs into calls against a small set of stateful services; this
// module implements those services for desktop execution and simulation.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	basicruntime/        Root package with the Memory interface and trap policies
//	├── runtime/         High-level Runtime aggregating all core services
//	├── strval/          Reference-counted immutable string values
//	├── except/          TRY/CATCH exception stack
//	├── machine/         Fixed-capacity state-machine registry
//	├── array/           Bounds-checked array support
//	├── errors/          Structured error types for traps and diagnostics
//	├── host/            wazero host module exposing the runtime ABI to guests
//	├── machinefile/     YAML machine definitions for off-device simulation
//	└── cmd/basicrun/    CLI for running compiled programs and inspecting machines
//
// # Quick Start
//
// Create a runtime and use its services directly:
//
//	rt := runtime.New()
//	defer rt.Close()
//
//	a := rt.Strings.Alloc("ab")
//	b := rt.Strings.Alloc("cd")
//	c := rt.Strings.Concat(a, b) // "abcd"
//
//	out := rt.Try.Try(func() {
//	    rt.Try.ThrowString("boom")
//	})
//	if out == except.Caught {
//	    msg := rt.Try.ErrorMessage()
//	    ...
//	}
//
// # Failure Model
//
// Unrecoverable conditions (allocation misuse, bounds violations, TRY
// nesting overflow, uncaught throws, assertion failures) are routed through
// a TrapFunc. ExitTrap logs and terminates the process, matching the
// original device behavior; PanicTrap surfaces the condition as a panic for
// tests and for host functions, where wazero converts it into a guest call
// error.
//
// # Thread Safety
//
// By language design a spawned task shares no variables with its spawner,
// so none of the core services synchronize access. A Runtime and its
// services must be used from a single task; the exception stack can be
// minted per task via Runtime.NewTaskTry.
package basicruntime
