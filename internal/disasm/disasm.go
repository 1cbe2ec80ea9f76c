// Package disasm renders a compiled function's machine code back to
// text. It is not a general x86_64 disassembler: it only needs to
// recognize the closed set of instruction shapes pkg/amd64 ever
// emits, since that is the only code this JIT ever produces. Anything
// it can't match falls back to a raw byte dump the way a real
// disassembler falls back on data bytes it misinterpreted as opcodes.
package disasm

import (
	"fmt"
	"io"
)

var regNames = [8]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}
var reg8Names = [8]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil"}
var reg32Suffix = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}

// regName returns the name of the 64-bit register with encoding n.
func regName(n byte) string {
	return regNames[n&0x7]
}

// Instruction is one decoded instruction: its offset, the raw bytes it
// consumed, and its rendered text.
type Instruction struct {
	Offset uint
	Bytes  []byte
	Text   string
}

// Disassemble decodes code from front to back, greedily matching the
// longest known instruction shape at each position.
func Disassemble(code []byte) []Instruction {
	var out []Instruction
	i := 0
	for i < len(code) {
		n, text := decodeOne(code[i:])
		out = append(out, Instruction{
			Offset: uint(i),
			Bytes:  append([]byte(nil), code[i:i+n]...),
			Text:   text,
		})
		i += n
	}
	return out
}

// Write renders Disassemble's output in an objdump-ish column format.
func Write(w io.Writer, code []byte) {
	for _, ins := range Disassemble(code) {
		fmt.Fprintf(w, "%4d:\t% x\t%s\n", ins.Offset, ins.Bytes, ins.Text)
	}
}

func modRM(b byte) (mod, reg, rm byte) {
	return b >> 6, (b >> 3) & 0x7, b & 0x7
}

// decodeOne consumes the longest recognized instruction at the start
// of code and returns its length and mnemonic text. Falls back to a
// one-byte ".byte" pseudo-op if nothing matches.
func decodeOne(code []byte) (int, string) {
	if len(code) == 0 {
		return 0, ""
	}

	rexW := false
	i := 0
	if code[i] == 0x48 {
		rexW = true
		i++
	}
	if i >= len(code) {
		return 1, fmt.Sprintf(".byte 0x%02x", code[0])
	}

	switch op := code[i]; op {
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF: // movabs reg, imm64
		if rexW && len(code) >= i+9 {
			dst := op - 0xB8
			imm := leUint64(code[i+1 : i+9])
			return i + 9, fmt.Sprintf("movabs %s, 0x%x", regName(dst), imm)
		}
	case 0x8B: // mov reg, [base] / mov reg, [base+index*scale] / mov reg, reg
		if len(code) >= i+2 {
			mod, reg, rm := modRM(code[i+1])
			width := "e"
			if rexW {
				width = "r"
			}
			if rm == 0x04 && mod == 0 && len(code) >= i+3 { // SIB form
				scaleBits, index, base := code[i+2]>>6, (code[i+2]>>3)&0x7, code[i+2]&0x7
				scale := 1 << scaleBits
				return i + 3, fmt.Sprintf("mov %s%s, [%s+%s%s*%d]", width, reg32Suffix[reg], regName(base), width, reg32Suffix[index], scale)
			}
			if mod == 3 {
				return i + 2, fmt.Sprintf("mov %s, %s", regName(reg), regName(rm))
			}
			if mod == 0 {
				return i + 2, fmt.Sprintf("mov %s, [%s]", regName(reg), regName(rm))
			}
		}
	case 0x89: // mov [base], reg / mov [base+index*scale], reg32
		if len(code) >= i+2 {
			mod, reg, rm := modRM(code[i+1])
			if rm == 0x04 && mod == 0 && len(code) >= i+3 {
				scaleBits, index, base := code[i+2]>>6, (code[i+2]>>3)&0x7, code[i+2]&0x7
				scale := 1 << scaleBits
				return i + 3, fmt.Sprintf("mov [%s+e%s*%d], e%s", regName(base), reg32Suffix[index], scale, reg32Suffix[reg])
			}
			if mod == 0 {
				return i + 2, fmt.Sprintf("mov [%s], %s", regName(rm), regName(reg))
			}
		}
	case 0x88: // mov [rsp], r8l (always the Output byte store in this emitter)
		if len(code) >= i+3 {
			_, reg, _ := modRM(code[i+1])
			return i + 3, fmt.Sprintf("mov byte [rsp], %s", reg8Names[reg])
		}
	case 0x81: // add r/m, imm32
		if len(code) >= i+6 {
			mod, _, rm := modRM(code[i+1])
			if mod == 3 {
				width := "e"
				if rexW {
					width = "r"
				}
				imm := int32(leUint32(code[i+2 : i+6]))
				return i + 6, fmt.Sprintf("add %s%s, %d", width, reg32Suffix[rm], imm)
			}
		}
	case 0x83: // sub/add rsp, imm8
		if len(code) >= i+3 {
			_, reg, rm := modRM(code[i+1])
			mnem := "add"
			if reg == 5 {
				mnem = "sub"
			}
			return i + 3, fmt.Sprintf("%s %s, %d", mnem, regName(rm), int8(code[i+2]))
		}
	case 0xC7: // mov r/m64, imm32 (our encoder only ever targets a register)
		if rexW && len(code) >= i+6 {
			_, _, rm := modRM(code[i+1])
			imm := int32(leUint32(code[i+2 : i+6]))
			return i + 6, fmt.Sprintf("movq %s, %d", regName(rm), imm)
		}
	case 0x68: // push imm32
		if len(code) >= i+5 {
			imm := leUint32(code[i+1 : i+5])
			return i + 5, fmt.Sprintf("push 0x%08x", imm)
		}
	case 0x8D: // lea reg, [rsp]
		if rexW && len(code) >= i+3 {
			_, reg, _ := modRM(code[i+1])
			return i + 3, fmt.Sprintf("lea %s, [rsp]", regName(reg))
		}
	case 0x0F:
		if len(code) >= i+2 && code[i+1] == 0x05 {
			return i + 2, "syscall"
		}
		if rexW && len(code) >= i+4 && code[i+1] == 0xB6 { // movzx reg, byte [rsp]
			_, reg, _ := modRM(code[i+2])
			return i + 4, fmt.Sprintf("movzx %s, byte [rsp]", regName(reg))
		}
	case 0xFF: // call reg
		if len(code) >= i+2 {
			mod, reg, rm := modRM(code[i+1])
			if mod == 3 && reg == 2 {
				return i + 2, fmt.Sprintf("call %s", regName(rm))
			}
		}
	case 0xC3:
		return i + 1, "ret"
	}

	return 1, fmt.Sprintf(".byte 0x%02x", code[0])
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
