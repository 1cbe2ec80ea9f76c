package driver

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"bfjit/internal/core"
	"bfjit/internal/runtime"
)

// captureStdout redirects fd 1 to a pipe for the duration of fn and
// returns whatever was written to it. Emitted Output primitives write
// to file descriptor 1 directly via syscall, not through Go's
// os.Stdout value, so this dup2's the pipe's write end onto fd 1 — a
// real fd swap, not a Go-level redirect — and restores the original fd
// afterward.
func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	saved, err := unix.Dup(1)
	if err != nil {
		t.Fatalf("dup(1): %v", err)
	}
	if err := unix.Dup2(int(w.Fd()), 1); err != nil {
		t.Fatalf("dup2: %v", err)
	}

	fn()

	w.Close()
	if err := unix.Dup2(saved, 1); err != nil {
		t.Fatalf("restoring fd 1: %v", err)
	}
	unix.Close(saved)

	var buf bytes.Buffer
	buf.ReadFrom(r)
	r.Close()
	return buf.Bytes()
}

func TestCompileThenStartLeafFunctionIsIdempotent(t *testing.T) {
	// A pure Output (no UpdateCell) never mutates the tape, so calling
	// it twice must print the exact same bytes both times — unlike a
	// function that accumulates into the cell it then prints.
	prog, err := core.Lower(core.Tokenize([]byte(".")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	rt := runtime.New()
	drv := New(prog, rt)
	rt.SetCompiler(drv)

	run := func() []byte {
		return captureStdout(t, func() { rt.Start(0) })
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated Start produced different output: %q vs %q", first, second)
	}
	if !bytes.Equal(first, []byte{0x00, '\n'}) {
		t.Fatalf("expected a zero byte then newline, got %q", first)
	}
}

func TestStartCompilesOnlyReachedFunctions(t *testing.T) {
	prog, err := core.Lower(core.Tokenize([]byte("@/+.")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	rt := runtime.New()
	drv := New(prog, rt)
	rt.SetCompiler(drv)

	var compiled []uint32
	drv.SetTrace(func(id uint32) { compiled = append(compiled, id) })

	captureStdout(t, func() { rt.Start(drv.MainID()) })

	if len(compiled) != 1 || compiled[0] != 1 {
		t.Fatalf("expected only function 1 (main) to compile, got %v", compiled)
	}
}

func TestCoredumpIncludesEveryCompiledPageAndTheTape(t *testing.T) {
	prog, err := core.Lower(core.Tokenize([]byte("+.")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	rt := runtime.New()
	drv := New(prog, rt)
	rt.SetCompiler(drv)
	captureStdout(t, func() { rt.Start(0) })

	dump := drv.Coredump()
	phnum := binary.LittleEndian.Uint16(dump[56:58])
	if phnum != 2 { // one code page + the tape
		t.Fatalf("e_phnum = %d, want 2", phnum)
	}
}
