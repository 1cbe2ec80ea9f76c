// Package coredump writes a post-mortem snapshot of a run's compiled
// code pages and tape as an ELF64-shaped artifact: loadable segments
// at the addresses the pages actually lived at in the crashed process,
// suitable for pointing objdump/gdb at to disassemble what the JIT had
// produced when something went wrong. It is not a runnable executable
// — the virtual addresses are wherever the kernel happened to mmap
// each page, not a linked image layout, and there is no entry point
// that still means anything once the process that produced it is gone.
package coredump

import "encoding/binary"

// ELF64 constants, the subset a loadable-segment-only dump needs.
const (
	elfMag0     = 0x7f
	elfClass64  = 2
	elfData2LSB = 1
	evCurrent   = 1
	etCore      = 4 // ET_CORE: this is a post-mortem artifact, not ET_EXEC
	emX86_64    = 62

	ptLoad = 1

	pfX = 0x1
	pfW = 0x2
	pfR = 0x4

	headerSize = 64
	phdrSize   = 56
)

// Segment flags, aliasing the ELF program-header permission bits so
// callers don't need to import anything beyond this package.
const (
	PermR = pfR
	PermW = pfW
	PermX = pfX
)

// Segment is one piece of process memory to preserve in the dump: a
// compiled function's code page, or the tape.
type Segment struct {
	VAddr uint64 // address the bytes lived at in the dumped process
	Data  []byte
	Flags uint32 // PermR | PermW | PermX
}

// Write serializes segments into an ELF64 core-style image and returns
// its bytes. Segments are emitted in the order given; the caller
// controls that order (the driver lists code pages before the tape).
func Write(segments []Segment) []byte {
	numPhdrs := len(segments)
	fileOffset := uint64(headerSize + numPhdrs*phdrSize)

	out := make([]byte, 0, int(fileOffset)+totalLen(segments))
	out = appendHeader(out, numPhdrs)

	off := fileOffset
	for _, seg := range segments {
		out = appendPhdr(out, seg, off)
		off += uint64(len(seg.Data))
	}
	for _, seg := range segments {
		out = append(out, seg.Data...)
	}
	return out
}

func totalLen(segments []Segment) int {
	n := 0
	for _, s := range segments {
		n += len(s.Data)
	}
	return n
}

func appendHeader(out []byte, numPhdrs int) []byte {
	var ident [16]byte
	ident[0] = elfMag0
	ident[1] = 'E'
	ident[2] = 'L'
	ident[3] = 'F'
	ident[4] = elfClass64
	ident[5] = elfData2LSB
	ident[6] = evCurrent

	out = append(out, ident[:]...)
	out = le16(out, etCore)
	out = le16(out, emX86_64)
	out = le32(out, evCurrent)
	out = le64(out, 0) // e_entry: meaningless for a core-style dump
	out = le64(out, headerSize)
	out = le64(out, 0) // e_shoff: no section headers
	out = le32(out, 0) // e_flags
	out = le16(out, headerSize)
	out = le16(out, phdrSize)
	out = le16(out, uint16(numPhdrs))
	out = le16(out, 0) // e_shentsize
	out = le16(out, 0) // e_shnum
	out = le16(out, 0) // e_shstrndx
	return out
}

func appendPhdr(out []byte, seg Segment, fileOffset uint64) []byte {
	out = le32(out, ptLoad)
	out = le32(out, seg.Flags)
	out = le64(out, fileOffset)
	out = le64(out, seg.VAddr)
	out = le64(out, seg.VAddr)
	out = le64(out, uint64(len(seg.Data)))
	out = le64(out, uint64(len(seg.Data)))
	out = le64(out, 1) // p_align: bytes are verbatim, no relayout needed
	return out
}

func le16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func le32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func le64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}
