// Package host exposes the runtime core to compiled guest programs as a
// wazero host module.
//
// For desktop execution the compiler emits wasm32; the runtime services are
// imported by the guest from module "env" as a flat set of functions.
// String values cross the boundary as i32 handles resolved through a
// free-list handle table; content moves through guest linear memory only at
// string_alloc and string_copy.
//
// TRY/CATCH over this ABI is state-only: try_begin and try_end maintain the
// frame counter, and throw records the pending message, consumes the
// innermost frame and returns the remaining depth. The generated code
// branches on that value to unwind to the matching catch site, since the
// host cannot transfer control inside the guest.
//
// Fatal conditions trap via panic, which wazero converts into an error
// returned from the guest call. Construct the Runtime passed in Config with
// basicruntime.PanicTrap.
package host
