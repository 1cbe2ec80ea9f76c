// Package amd64 provides x86_64 (AMD64) machine code encoding utilities.
// This package has no dependencies on compiler internals and can be used
// standalone for generating x86_64 machine code.
//
// This file contains x86_64 instruction encoders, generalized over the
// general-purpose registers RAX/RCX/RDX/RBX/RSP/RSI/RDI (the only ones
// this encoder ever needs to address; none of them require a REX.B/R/X
// extension bit, which keeps every encoding below a plain REX.W prefix).
// Immediates are appended with encoding/binary's AppendUint32/AppendUint64
// rather than written into a preallocated buffer by index, so an
// encoder's byte count follows directly from what it appends instead of
// needing an upfront make([]byte, N) sized by hand.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB
// bytes), see: https://wiki.osdev.org/X86-64_Instruction_Encoding
package amd64

import "encoding/binary"

// Reg identifies one of the eight legacy general-purpose registers by
// its 3-bit encoding.
type Reg byte

const (
	RAX Reg = 0
	RCX Reg = 1
	RDX Reg = 2
	RBX Reg = 3
	RSP Reg = 4
	RBP Reg = 5
	RSI Reg = 6
	RDI Reg = 7
)

const rexW = 0x48

// modRM packs a ModRM byte from its mod/reg/rm fields.
func modRM(mod, reg, rm byte) byte {
	return mod<<6 | (reg&0x07)<<3 | rm&0x07
}

// sib packs a SIB byte. scale is 1, 2, 4, or 8.
func sib(scale byte, index, base Reg) byte {
	var ss byte
	switch scale {
	case 1:
		ss = 0
	case 2:
		ss = 1
	case 4:
		ss = 2
	case 8:
		ss = 3
	}
	return ss<<6 | byte(index)<<3 | byte(base)
}

// MovabsImm64 encodes: movabs $imm64, dst (REX.W B8+r <imm64>)
func MovabsImm64(dst Reg, imm64 uint64) []byte {
	buf := []byte{rexW, 0xB8 + byte(dst)}
	return binary.LittleEndian.AppendUint64(buf, imm64)
}

// MovRegFromBase encodes: mov dst, [base] (REX.W 8B /r), no displacement.
// base must not be RSP/RBP (those require a SIB byte / disp8 respectively).
func MovRegFromBase(dst, base Reg) []byte {
	return []byte{rexW, 0x8B, modRM(0, byte(dst), byte(base))}
}

// MovBaseFromReg encodes: mov [base], src (REX.W 89 /r), no displacement.
func MovBaseFromReg(base, src Reg) []byte {
	return []byte{rexW, 0x89, modRM(0, byte(src), byte(base))}
}

// AddRegImm32 encodes: add dst, imm32 (REX.W 81 /0 id), 64-bit destination.
func AddRegImm32(dst Reg, imm32 int32) []byte {
	buf := []byte{rexW, 0x81, modRM(3, 0, byte(dst))}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// MovReg32SIB encodes: mov dst32, [base+index*scale] (8B /r), 32-bit.
func MovReg32SIB(dst, base, index Reg, scale byte) []byte {
	return []byte{0x8B, modRM(0, byte(dst), 0x04), sib(scale, index, base)}
}

// MovReg64SIB encodes: mov dst, [base+index*scale] (REX.W 8B /r), 64-bit.
func MovReg64SIB(dst, base, index Reg, scale byte) []byte {
	return []byte{rexW, 0x8B, modRM(0, byte(dst), 0x04), sib(scale, index, base)}
}

// MovSIB32FromReg encodes: mov [base+index*scale], src32 (89 /r), 32-bit.
func MovSIB32FromReg(base, index Reg, scale byte, src Reg) []byte {
	return []byte{0x89, modRM(0, byte(src), 0x04), sib(scale, index, base)}
}

// AddReg32Imm32 encodes: add dst32, imm32 (81 /0 id), 32-bit destination.
func AddReg32Imm32(dst Reg, imm32 int32) []byte {
	buf := []byte{0x81, modRM(3, 0, byte(dst))}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// MovRegReg64 encodes: mov dst, src (REX.W 8B /r), register to register.
func MovRegReg64(dst, src Reg) []byte {
	return []byte{rexW, 0x8B, modRM(3, byte(dst), byte(src))}
}

// PushImm32 encodes: push imm32 (68 <imm32>). The pushed qword is
// imm32 sign-extended to 64 bits; for a non-negative imm32 the low four
// bytes on the stack equal imm32's little-endian encoding exactly.
func PushImm32(imm32 int32) []byte {
	buf := []byte{0x68}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// MovRSPByteFromReg8Low encodes: mov [rsp], srcL (88 /r), where srcL is
// the low 8 bits of src (al/cl/dl/bl — no REX needed for these four).
func MovRSPByteFromReg8Low(src Reg) []byte {
	return []byte{0x88, modRM(0, byte(src), 0x04), sib(1, RSP, RSP)}
}

// LeaRegFromRSP encodes: lea dst, [rsp] (REX.W 8D /r).
func LeaRegFromRSP(dst Reg) []byte {
	return []byte{rexW, 0x8D, modRM(0, byte(dst), 0x04), sib(1, RSP, RSP)}
}

// MovzxRegFromRSPByte encodes: movzx dst, byte [rsp] (REX.W 0F B6 /r).
func MovzxRegFromRSPByte(dst Reg) []byte {
	return []byte{rexW, 0x0F, 0xB6, modRM(0, byte(dst), 0x04), sib(1, RSP, RSP)}
}

// SubRSPImm8 encodes: sub rsp, imm8 (REX.W 83 /5 ib).
func SubRSPImm8(imm8 uint8) []byte {
	return []byte{rexW, 0x83, modRM(3, 5, byte(RSP)), imm8}
}

// AddRSPImm8 encodes: add rsp, imm8 (REX.W 83 /0 ib).
func AddRSPImm8(imm8 uint8) []byte {
	return []byte{rexW, 0x83, modRM(3, 0, byte(RSP)), imm8}
}

// CallReg encodes: call dst (FF /2), near indirect call through a register.
func CallReg(dst Reg) []byte {
	return []byte{0xFF, modRM(3, 2, byte(dst))}
}

// MovqImm32RAX encodes: movq $imm32, %rax (48 C7 C0 <imm32>)
// Load 32-bit sign-extended immediate into RAX.
func MovqImm32RAX(imm32 int32) []byte {
	buf := []byte{0x48, 0xC7, 0xC0}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// MovqImm32RDI encodes: movq $imm32, %rdi (48 C7 C7 <imm32>)
// Load 32-bit sign-extended immediate into RDI.
func MovqImm32RDI(imm32 int32) []byte {
	buf := []byte{0x48, 0xC7, 0xC7}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// MovqImm32RDX encodes: movq $imm32, %rdx (48 C7 C2 <imm32>)
// Load 32-bit sign-extended immediate into RDX.
func MovqImm32RDX(imm32 int32) []byte {
	buf := []byte{0x48, 0xC7, 0xC2}
	return binary.LittleEndian.AppendUint32(buf, uint32(imm32))
}

// Ret encodes: ret (C3)
func Ret() []byte {
	return []byte{0xC3}
}

// Syscall encodes: syscall (0F 05)
func Syscall() []byte {
	return []byte{0x0F, 0x05}
}
