package driver

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// allocatePage maps code into a fresh anonymous page, W^X style: the
// mapping starts out read/write so the bytes can be copied in, then is
// switched to read/execute before anyone can call through it. This
// mirrors the mmap-then-mprotect dance the pack's own in-process JIT
// (launix-de/memcp's scm.OptimizeForValues) uses for the same
// read-write-then-execute code cache problem, via the maintained
// golang.org/x/sys/unix call surface rather than the frozen stdlib
// syscall package.
func allocatePage(code []byte) (*page, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, err
	}

	return &page{mem: mem}, nil
}

// pageAddr returns the absolute address of a page's first byte, the
// value installed into a function table slot.
func pageAddr(pg *page) uintptr {
	return uintptr(unsafe.Pointer(&pg.mem[0]))
}
