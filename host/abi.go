package host

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	basicruntime "github.com/minibasic/basic-runtime"
	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/machine"
	"github.com/minibasic/basic-runtime/runtime"
	"github.com/minibasic/basic-runtime/strval"
)

// abi implements the flat operation set behind the exported host functions.
// Guest memory access goes through the basicruntime.Memory interface so the
// logic is testable without a wazero instance.
type abi struct {
	rt      *runtime.Runtime
	strings *stringTable
	stdout  io.Writer
	logger  *zap.Logger
}

func newABI(rt *runtime.Runtime, stdout io.Writer, logger *zap.Logger) *abi {
	return &abi{
		rt:      rt,
		strings: newStringTable(),
		stdout:  stdout,
		logger:  logger,
	}
}

// fatal surfaces an ABI-level violation as a panic; wazero turns it into an
// error on the guest call.
func (a *abi) fatal(err error) {
	panic(err)
}

// ── string value model ──────────────────────────────────────────────

func (a *abi) stringAlloc(mem basicruntime.Memory, ptr, length uint32) int32 {
	b, ok := mem.Read(ptr, length)
	if !ok {
		a.fatal(errors.New(errors.StageHost, errors.KindOutOfBounds).
			Op("string_alloc").
			Detail("literal at %d+%d outside guest memory", ptr, length).
			Build())
	}
	return a.strings.add(a.rt.Strings.AllocBytes(b))
}

func (a *abi) stringConcat(ah, bh int32) int32 {
	return a.strings.add(a.rt.Strings.Concat(a.strings.get(ah), a.strings.get(bh)))
}

func (a *abi) stringCompare(ah, bh int32) int32 {
	return a.rt.Strings.Compare(a.strings.get(ah), a.strings.get(bh))
}

func (a *abi) stringRetain(h int32) {
	a.strings.get(h).Retain()
}

func (a *abi) stringRelease(h int32) {
	v := a.strings.get(h)
	if v == nil {
		return
	}
	v.Release()
	if v.Freed() {
		a.strings.drop(h)
	}
}

func (a *abi) stringLength(h int32) int32 {
	return a.strings.get(h).Len()
}

// stringCopy writes up to cap bytes of the value's content into guest
// memory at ptr and returns the number of bytes written.
func (a *abi) stringCopy(mem basicruntime.Memory, h int32, ptr, capacity uint32) int32 {
	b := a.strings.get(h).Bytes()
	if uint32(len(b)) > capacity {
		b = b[:capacity]
	}
	if len(b) > 0 && !mem.Write(ptr, b) {
		a.fatal(errors.New(errors.StageHost, errors.KindOutOfBounds).
			Op("string_copy").
			Detail("destination at %d+%d outside guest memory", ptr, len(b)).
			Build())
	}
	return int32(len(b))
}

// ── exception stack ──────────────────────────────────────────────────

func (a *abi) tryBegin() int32 {
	a.rt.Try.Begin()
	return 0
}

func (a *abi) tryEnd() {
	a.rt.Try.End()
}

func (a *abi) throw(msgH int32) int32 {
	return a.rt.Try.Raise(a.strings.get(msgH))
}

func (a *abi) getErrorMessage() int32 {
	return a.strings.add(a.rt.Try.ErrorMessage())
}

// ── state-machine engine ─────────────────────────────────────────────

func (a *abi) machineCreate(nameH int32) int32 {
	return int32(a.rt.Machines.Create(a.strings.get(nameH).String()))
}

// Registration past capacity is logged and dropped: generated code cannot
// receive Go errors, and the device runtime discarded these silently.
func (a *abi) machineAddState(h, nameH int32) {
	if err := a.rt.Machines.AddState(machine.Handle(h), a.strings.get(nameH).String()); err != nil {
		a.logger.Warn("state registration dropped", zap.Error(err))
	}
}

func (a *abi) machineAddTransition(h, fromH, eventH, toH int32) {
	err := a.rt.Machines.AddTransition(machine.Handle(h),
		a.strings.get(fromH).String(),
		a.strings.get(eventH).String(),
		a.strings.get(toH).String())
	if err != nil {
		a.logger.Warn("transition registration dropped", zap.Error(err))
	}
}

func (a *abi) machineEvent(h, eventH int32) {
	a.rt.Machines.Event(machine.Handle(h), a.strings.get(eventH).String())
}

func (a *abi) machineGetState(h int32) int32 {
	return a.strings.add(a.rt.Strings.Alloc(a.rt.Machines.State(machine.Handle(h))))
}

// ── array support ────────────────────────────────────────────────────

func (a *abi) arrayBoundsCheck(index, size int32) {
	a.rt.Arrays.BoundsCheck(index, size)
}

func (a *abi) arrayCheckDimSize(value, dim int32) {
	a.rt.Arrays.CheckDimSize(value, int(dim))
}

// ── assertions and output ────────────────────────────────────────────

func (a *abi) assertFail(msgH, offset int32) {
	a.rt.AssertFail(a.strings.get(msgH), offset)
}

func (a *abi) printString(h int32) {
	if v := a.strings.get(h); v != nil {
		io.WriteString(a.stdout, v.String())
	}
}

func (a *abi) printInt(v int32) {
	fmt.Fprintf(a.stdout, "%d", v)
}

func (a *abi) printFloat(f float32) {
	fmt.Fprintf(a.stdout, "%.6g", float64(f))
}

func (a *abi) printNewline() {
	io.WriteString(a.stdout, "\n")
}

// ── string builtins (LEN, ASC, CHR$, LEFT$, ...) ─────────────────────

func (a *abi) fnLen(h int32) int32 {
	return strval.Len(a.strings.get(h))
}

func (a *abi) fnAsc(h int32) int32 {
	return strval.Asc(a.strings.get(h))
}

func (a *abi) fnChr(code int32) int32 {
	return a.strings.add(a.rt.Strings.Char(code))
}

func (a *abi) fnLeft(h, n int32) int32 {
	return a.strings.add(a.rt.Strings.Left(a.strings.get(h), n))
}

func (a *abi) fnRight(h, n int32) int32 {
	return a.strings.add(a.rt.Strings.Right(a.strings.get(h), n))
}

func (a *abi) fnMid(h, start, n int32) int32 {
	return a.strings.add(a.rt.Strings.Mid(a.strings.get(h), start, n))
}

func (a *abi) fnInstr(h, findH int32) int32 {
	return strval.Index(a.strings.get(h), a.strings.get(findH))
}

func (a *abi) fnStr(value float32) int32 {
	return a.strings.add(a.rt.Strings.FromFloat(value))
}

func (a *abi) fnVal(h int32) float32 {
	return strval.Val(a.strings.get(h))
}

func (a *abi) fnUcase(h int32) int32 {
	return a.strings.add(a.rt.Strings.Upper(a.strings.get(h)))
}

func (a *abi) fnLcase(h int32) int32 {
	return a.strings.add(a.rt.Strings.Lower(a.strings.get(h)))
}

func (a *abi) fnTrim(h int32) int32 {
	return a.strings.add(a.rt.Strings.Trim(a.strings.get(h)))
}
