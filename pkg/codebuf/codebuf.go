// Package codebuf provides an append-only machine code accumulator.
// It has no dependency on compiler internals and can be used standalone
// to assemble a sequence of raw instruction bytes.
package codebuf

// Buffer accumulates raw machine code bytes in emission order.
type Buffer struct {
	bytes []byte
}

// New creates an empty Buffer with room for size bytes before its first
// reallocation.
func New(size int) *Buffer {
	return &Buffer{bytes: make([]byte, 0, size)}
}

// Emit appends one or more instruction encodings to the buffer.
func (b *Buffer) Emit(instrs ...[]byte) {
	for _, ins := range instrs {
		b.bytes = append(b.bytes, ins...)
	}
}

// Len returns the number of bytes emitted so far.
func (b *Buffer) Len() int {
	return len(b.bytes)
}

// Bytes returns the buffer's contiguous backing bytes.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}
