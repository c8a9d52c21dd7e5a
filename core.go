package basicruntime

import (
	"go.uber.org/zap"
)

// Memory is the guest linear memory view used by the host ABI.
// wazero's api.Memory satisfies it directly.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}

// TrapFunc handles a fatal runtime condition. Implementations are not
// expected to return; services panic with the error if one does, so a trap
// is terminal either way.
type TrapFunc func(err error)

// ExitTrap returns a TrapFunc that logs the condition at Fatal level and
// terminates the process. This matches the device behavior, where a runtime
// error restarts the board.
func ExitTrap(logger *zap.Logger) TrapFunc {
	return func(err error) {
		logger.Fatal("runtime trap", zap.Error(err))
	}
}

// PanicTrap surfaces the condition as a panic carrying the trap error.
// Used in tests and inside host functions, where wazero converts the panic
// into an error returned from the guest call.
func PanicTrap(err error) {
	panic(err)
}
