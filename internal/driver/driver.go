// Package driver implements the lazy JIT driver: it assembles one
// function at a time into executable memory and installs it into the
// runtime's function table on first invocation.
package driver

import (
	"fmt"

	"golang.org/x/sys/unix"

	"bfjit/internal/core"
	"bfjit/internal/coredump"
	"bfjit/internal/emit"
	"bfjit/pkg/codebuf"
)

// codeBufSize bounds a single compiled function's machine code. A
// function whose folded op count would overflow one page is rejected
// rather than silently spanning pages — nothing here assumes a
// function's code can cross a page boundary.
const codeBufSize = 4096

// page is one executable mapping owned by the driver, backing exactly
// one compiled function.
type page struct {
	mem []byte
}

// Runtime is the subset of *runtime.Runtime the driver needs: the
// address getters emitted code bakes in, and Install to publish a
// compiled function.
type Runtime interface {
	emit.Addresses
	Install(id uint32, codeAddr uintptr)
	TapeSnapshot() []byte
}

// Driver compiles functions from a parsed program on demand.
type Driver struct {
	program *core.Program
	rt      Runtime
	pages   []*page // indexed by function id; nil until compiled
	trace   func(id uint32)
}

// SetTrace registers a callback invoked after each successful compile,
// with the id that was just compiled. Used by the CLI's -v flag to
// narrate lazy-compilation order without attaching a debugger; nil by
// default, meaning no tracing overhead.
func (d *Driver) SetTrace(fn func(id uint32)) {
	d.trace = fn
}

// New creates a Driver over prog, bound to rt. The caller must still
// call rt.SetCompiler(driver) to wire the two together (runtime
// depends only on the Compiler interface, not on this package).
func New(prog *core.Program, rt Runtime) *Driver {
	return &Driver{
		program: prog,
		rt:      rt,
		pages:   make([]*page, len(prog.Functions)),
	}
}

// MainID returns the id of the program's entry-point function.
func (d *Driver) MainID() uint32 {
	return d.program.MainID()
}

// Compile assembles function id's body, maps it executable, and
// installs it into the runtime's function table. Safe to call more
// than once for the same id only in the sense that it will recompile
// and reinstall; nothing in this system's control flow does that.
func (d *Driver) Compile(id uint32) error {
	fn := d.program.Functions[id]

	buf := codebuf.New(codeBufSize)
	emit.Function(fn, d.rt, buf)

	if buf.Len() > codeBufSize {
		return fmt.Errorf("driver: function %d assembled to %d bytes, exceeding the %d byte page budget", id, buf.Len(), codeBufSize)
	}

	pg, err := allocatePage(buf.Bytes())
	if err != nil {
		return fmt.Errorf("driver: allocating executable page for function %d: %w", id, err)
	}

	d.pages[id] = pg
	d.rt.Install(id, pageAddr(pg))
	if d.trace != nil {
		d.trace(id)
	}
	return nil
}

// Coredump renders every compiled code page plus the current tape
// contents into an ELF64-shaped post-mortem artifact (see the
// coredump package), for pointing a disassembler at after a crash.
func (d *Driver) Coredump() []byte {
	segs := make([]coredump.Segment, 0, len(d.pages)+1)
	for _, pg := range d.pages {
		if pg == nil {
			continue
		}
		segs = append(segs, coredump.Segment{
			VAddr: uint64(pageAddr(pg)),
			Data:  pg.mem,
			Flags: coredump.PermR | coredump.PermX,
		})
	}
	segs = append(segs, coredump.Segment{
		VAddr: uint64(d.rt.TapeAddr()),
		Data:  d.rt.TapeSnapshot(),
		Flags: coredump.PermR | coredump.PermW,
	})
	return coredump.Write(segs)
}

// Close unmaps every page this driver has allocated. The default
// lifecycle (a process that simply exits) never needs to call this —
// pages are retained until shutdown either way — but a host that wants
// deterministic cleanup of a driver it owns may call it once Start has
// returned.
func (d *Driver) Close() error {
	var firstErr error
	for i, pg := range d.pages {
		if pg == nil {
			continue
		}
		if err := unix.Munmap(pg.mem); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("driver: unmapping function %d's page: %w", i, err)
		}
		d.pages[i] = nil
	}
	return firstErr
}
