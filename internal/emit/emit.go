// Package emit produces x86_64 machine code for each primitive tape
// operation. Every emitted sequence uses only RAX/RBX/RCX/RSI/RDI/RDX
// as scratch, preserves none of them across a primitive, and leaves
// RSP as it found it except transiently within Output/Input.
package emit

import (
	"bfjit/internal/core"
	"bfjit/pkg/amd64"
	"bfjit/pkg/codebuf"
)

// Addresses is the set of absolute addresses emitted code bakes in as
// immediates. It is satisfied by *runtime.Runtime.
type Addresses interface {
	TapeAddr() uintptr
	TapeIndexAddr() uintptr
	FunctionTableAddr() uintptr
}

// Function assembles one function body into buf, ending with a ret.
func Function(fn core.Function, addrs Addresses, buf *codebuf.Buffer) {
	for _, op := range fn.Ops {
		switch op.Kind {
		case core.OpMove:
			Move(op.Arg, addrs, buf)
		case core.OpUpdateCell:
			UpdateCell(op.Arg, addrs, buf)
		case core.OpOutput:
			Output(addrs, buf)
		case core.OpInput:
			Input(addrs, buf)
		case core.OpInvoke:
			Invoke(addrs, buf)
		}
	}
	buf.Emit(amd64.Ret())
}

// loadTapeIndexInto emits: movabs rbx, tapeIndexAddr; mov dst, [rbx].
// Leaves rbx holding the tape index address, dst holding its value.
func loadTapeIndexInto(dst amd64.Reg, addrs Addresses, buf *codebuf.Buffer) {
	buf.Emit(
		amd64.MovabsImm64(amd64.RBX, uint64(addrs.TapeIndexAddr())),
		amd64.MovRegFromBase(dst, amd64.RBX),
	)
}

// loadCellInto emits the common prologue shared by UpdateCell, Output
// and Invoke: load the tape index, then the current cell's 32-bit
// value, leaving it in ecx (the low 32 bits of RCX).
func loadCellInto(buf *codebuf.Buffer, addrs Addresses) {
	loadTapeIndexInto(amd64.RAX, addrs, buf)
	buf.Emit(amd64.MovabsImm64(amd64.RBX, uint64(addrs.TapeAddr())))
	buf.Emit(amd64.MovReg32SIB(amd64.RCX, amd64.RBX, amd64.RAX, 4))
}

// Move emits: movabs rbx, tapeIndexAddr; mov rax, [rbx]; add rax, delta; mov [rbx], rax.
func Move(delta int32, addrs Addresses, buf *codebuf.Buffer) {
	loadTapeIndexInto(amd64.RAX, addrs, buf)
	buf.Emit(
		amd64.AddRegImm32(amd64.RAX, delta),
		amd64.MovBaseFromReg(amd64.RBX, amd64.RAX),
	)
}

// UpdateCell emits a 32-bit load/add/store of exactly one cell — no
// REX.W, so a 64-bit op never touches the adjacent cell.
func UpdateCell(delta int32, addrs Addresses, buf *codebuf.Buffer) {
	loadCellInto(buf, addrs)
	buf.Emit(
		amd64.AddReg32Imm32(amd64.RCX, delta),
		amd64.MovSIB32FromReg(amd64.RBX, amd64.RAX, 4, amd64.RCX),
	)
}

// Output emits a two-byte write(1, ..., 2) of "<cell><newline>". The
// pushed immediate 0x00000A00 places 0x00 at [rsp] and 0x0A at
// [rsp+1]; overwriting [rsp] with the cell's low byte then yields
// exactly "<cell>\n" on the stack, written out in one syscall.
func Output(addrs Addresses, buf *codebuf.Buffer) {
	loadCellInto(buf, addrs)
	buf.Emit(
		amd64.PushImm32(0x00000A00),
		amd64.MovRSPByteFromReg8Low(amd64.RCX),
		amd64.MovqImm32RAX(1), // sys_write
		amd64.MovqImm32RDI(1), // fd 1 (stdout)
		amd64.MovRegReg64(amd64.RSI, amd64.RSP),
		amd64.MovqImm32RDX(2), // count
		amd64.Syscall(),
		amd64.AddRSPImm8(8),
	)
}

// Input emits a one-byte read(0, ..., 1) into a scratch stack slot,
// then stores the byte into the current cell (zero-extended, 32-bit).
func Input(addrs Addresses, buf *codebuf.Buffer) {
	buf.Emit(
		amd64.SubRSPImm8(1),
		amd64.MovqImm32RAX(0), // sys_read
		amd64.MovqImm32RDI(0), // fd 0 (stdin)
		amd64.LeaRegFromRSP(amd64.RSI),
		amd64.MovqImm32RDX(1), // count
		amd64.Syscall(),
	)
	loadTapeIndexInto(amd64.RCX, addrs, buf)
	buf.Emit(
		amd64.MovzxRegFromRSPByte(amd64.RAX),
		amd64.MovabsImm64(amd64.RBX, uint64(addrs.TapeAddr())),
		amd64.MovSIB32FromReg(amd64.RBX, amd64.RCX, 4, amd64.RAX),
		amd64.AddRSPImm8(1),
	)
}

// Invoke emits an indirect call through the function table, with the
// callee's function id passed in RDI per the entry protocol every
// table slot (trampoline or compiled code) expects.
func Invoke(addrs Addresses, buf *codebuf.Buffer) {
	loadCellInto(buf, addrs)
	buf.Emit(
		amd64.MovabsImm64(amd64.RAX, uint64(addrs.FunctionTableAddr())),
		amd64.MovReg64SIB(amd64.RBX, amd64.RAX, amd64.RCX, 8),
		amd64.MovRegReg64(amd64.RDI, amd64.RCX),
		amd64.CallReg(amd64.RBX),
	)
}
