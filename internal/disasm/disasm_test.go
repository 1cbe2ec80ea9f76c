package disasm

import (
	"strings"
	"testing"

	"bfjit/internal/core"
	"bfjit/internal/emit"
	"bfjit/pkg/codebuf"
)

type fakeAddrs struct{ tape, tapeIndex, table uint64 }

func (f fakeAddrs) TapeAddr() uintptr          { return uintptr(f.tape) }
func (f fakeAddrs) TapeIndexAddr() uintptr     { return uintptr(f.tapeIndex) }
func (f fakeAddrs) FunctionTableAddr() uintptr { return uintptr(f.table) }

var addrs = fakeAddrs{tape: 0x2000, tapeIndex: 0x1000, table: 0x3000}

// assembleAll compiles one function containing every primitive, so the
// decoder sees every instruction shape the emitter can produce.
func assembleAll(t *testing.T) []byte {
	t.Helper()
	buf := codebuf.New(256)
	fn := core.Function{Ops: []core.Op{
		core.Move(3),
		core.UpdateCell(-2),
		core.Output(),
		core.Input(),
		core.Invoke(),
	}}
	emit.Function(fn, addrs, buf)
	return buf.Bytes()
}

func TestDisassembleRecognizesEveryEmittedInstruction(t *testing.T) {
	code := assembleAll(t)
	instrs := Disassemble(code)

	total := 0
	for _, ins := range instrs {
		total += len(ins.Bytes)
		if strings.HasPrefix(ins.Text, ".byte") {
			t.Errorf("unrecognized byte at offset %d: %s (raw %x)", ins.Offset, ins.Text, ins.Bytes)
		}
	}
	if total != len(code) {
		t.Fatalf("decoded %d bytes, want %d (code not fully consumed)", total, len(code))
	}
}

func TestDisassembleEndsWithRet(t *testing.T) {
	instrs := Disassemble(assembleAll(t))
	last := instrs[len(instrs)-1]
	if last.Text != "ret" {
		t.Fatalf("last instruction = %q, want \"ret\"", last.Text)
	}
}

func TestDisassembleFindsSyscallAndCall(t *testing.T) {
	text := ""
	for _, ins := range Disassemble(assembleAll(t)) {
		text += ins.Text + "\n"
	}
	for _, want := range []string{"syscall", "call rbx", "movabs"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected disassembly to contain %q, got:\n%s", want, text)
		}
	}
}
