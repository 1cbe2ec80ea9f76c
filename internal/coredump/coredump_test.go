package coredump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteProducesValidELFIdent(t *testing.T) {
	out := Write([]Segment{{VAddr: 0x1000, Data: []byte{0xC3}, Flags: PermR | PermX}})
	want := []byte{0x7f, 'E', 'L', 'F', elfClass64, elfData2LSB, evCurrent}
	if !bytes.Equal(out[:len(want)], want) {
		t.Fatalf("ident = %x, want %x", out[:len(want)], want)
	}
	if got := binary.LittleEndian.Uint16(out[16:18]); got != etCore {
		t.Fatalf("e_type = %d, want %d (ET_CORE)", got, etCore)
	}
}

func TestWritePlacesOneSegmentPerPhdr(t *testing.T) {
	segs := []Segment{
		{VAddr: 0x1000, Data: []byte{0x90, 0x90}, Flags: PermR | PermX},
		{VAddr: 0x2000, Data: []byte{0x01, 0x02, 0x03}, Flags: PermR | PermW},
	}
	out := Write(segs)

	phnum := binary.LittleEndian.Uint16(out[56:58])
	if phnum != 2 {
		t.Fatalf("e_phnum = %d, want 2", phnum)
	}

	// First phdr starts right after the 64-byte header.
	phOff := uint64(64)
	vaddr := binary.LittleEndian.Uint64(out[phOff+16 : phOff+24])
	if vaddr != 0x1000 {
		t.Fatalf("phdr[0].p_vaddr = %x, want 0x1000", vaddr)
	}

	fileOff := binary.LittleEndian.Uint64(out[phOff+8 : phOff+16])
	fileSz := binary.LittleEndian.Uint64(out[phOff+32 : phOff+40])
	if !bytes.Equal(out[fileOff:fileOff+fileSz], segs[0].Data) {
		t.Fatalf("segment 0 data at file offset %d doesn't match", fileOff)
	}
}

func TestWriteNoSegments(t *testing.T) {
	out := Write(nil)
	if len(out) != headerSize {
		t.Fatalf("len = %d, want %d (bare header, no phdrs)", len(out), headerSize)
	}
}
