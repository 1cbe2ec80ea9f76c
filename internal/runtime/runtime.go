// Package runtime owns the live state a compiled program executes
// against: the tape, the current tape index, and the function dispatch
// table. It also hosts the lazy-compilation trampoline that bridges a
// not-yet-compiled table entry back into the JIT driver.
package runtime

import (
	"encoding/binary"
	"unsafe"

	"bfjit/internal/core"
)

// Compiler compiles a function on demand. The JIT driver implements
// this; the runtime package depends only on the interface, not on the
// driver package, to avoid an import cycle (the driver needs a
// *Runtime to install compiled code into).
type Compiler interface {
	Compile(id uint32) error
}

// Runtime holds the pinned, address-stable state that compiled code
// bakes absolute addresses to. A Runtime must never be copied by value
// and must never be moved once constructed — every compiled function
// references Tape/TapeIndex/FunctionTable by their addresses at
// compile time, and those addresses must remain valid for the life of
// the process.
type Runtime struct {
	tape          [core.TapeSize]int32
	tapeIndex     int64
	functionTable [core.MaxFunctions]uintptr

	compiler Compiler
}

// singleton is the process-wide Runtime the assembly trampoline
// dispatches through. There is exactly one Runtime per process: the
// trampoline is a fixed-address routine with no way to carry a
// receiver, so it must reach its Runtime through a package-level cell
// set up once before the program starts executing.
var singleton *Runtime

// New constructs a Runtime with every function table slot pointing at
// the lazy-compilation trampoline, and registers it as the
// process-wide singleton the trampoline dispatches through.
func New() *Runtime {
	rt := &Runtime{}
	trampolineAddr := trampolineEntryAddr()
	for i := range rt.functionTable {
		rt.functionTable[i] = trampolineAddr
	}
	singleton = rt
	return rt
}

// SetCompiler registers the JIT driver that compiles functions on
// demand. Must be called before Start.
func (rt *Runtime) SetCompiler(c Compiler) {
	rt.compiler = c
}

// FunctionTableAddr returns the absolute address of table slot 0.
// Emitted Invoke code indexes from this address by id*8.
func (rt *Runtime) FunctionTableAddr() uintptr {
	return uintptr(unsafe.Pointer(&rt.functionTable[0]))
}

// TapeAddr returns the absolute address of tape cell 0. Emitted code
// indexes from this address by tapeIndex*4.
func (rt *Runtime) TapeAddr() uintptr {
	return uintptr(unsafe.Pointer(&rt.tape[0]))
}

// TapeIndexAddr returns the absolute address of the current tape index.
func (rt *Runtime) TapeIndexAddr() uintptr {
	return uintptr(unsafe.Pointer(&rt.tapeIndex))
}

// TapeSnapshot returns the tape's current contents as a little-endian
// byte slice, one 4-byte cell at a time. It copies: the returned slice
// shares no memory with the pinned tape, so it is safe to hold onto
// (for a coredump writer, say) after JITted code resumes mutating the
// tape underneath.
func (rt *Runtime) TapeSnapshot() []byte {
	out := make([]byte, 0, len(rt.tape)*4)
	for _, cell := range rt.tape {
		out = append(out, LittleEndian(cell)...)
	}
	return out
}

// Install rewrites function table slot id to point at freshly compiled
// native code. Called exactly once per function, by the JIT driver.
func (rt *Runtime) Install(id uint32, codeAddr uintptr) {
	rt.functionTable[id] = codeAddr
}

// Start invokes function id through the table, following the same
// entry protocol JITted Invoke code uses: the function id arrives in
// the RDI register of whatever the table slot currently points at
// (the trampoline, on first call; native code thereafter).
func (rt *Runtime) Start(id uint32) {
	callEntry(rt.functionTable[id], id)
}

// LittleEndian returns v's little-endian byte representation, for any
// of the fixed-width integer types the emitter bakes into immediates.
func LittleEndian[T ~int32 | ~uint32 | ~int64 | ~uint64 | ~uintptr](v T) []byte {
	switch x := any(v).(type) {
	case int32:
		return binary.LittleEndian.AppendUint32(nil, uint32(x))
	case uint32:
		return binary.LittleEndian.AppendUint32(nil, x)
	default:
		return binary.LittleEndian.AppendUint64(nil, uint64(v))
	}
}

// dispatchCompileAndEnter is called by the assembly trampoline when a
// not-yet-compiled function is invoked. It compiles the function, then
// re-enters through the table: Compile has just installed native code
// into slot id, so this Start call runs the function for real.
func dispatchCompileAndEnter(id uint32) {
	if err := singleton.compiler.Compile(id); err != nil {
		panic(err)
	}
	singleton.Start(id)
}
