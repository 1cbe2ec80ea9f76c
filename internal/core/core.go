// Package core provides the fundamental types and functions for the
// lazy-JIT tape compiler.
//
// This package includes:
//   - Tokenizer: converts source text into a stream of tokens
//   - IR: intermediate representation of one primitive operation per
//     tagged union variant, grouped into functions
//
// The language has seven commands, each a single character:
//   - > : move the tape pointer right
//   - < : move the tape pointer left
//   - + : add one to the current cell
//   - - : subtract one from the current cell
//   - . : output the current cell's low byte, followed by a newline
//   - , : read one byte from stdin into the current cell
//   - @ : invoke the function whose id is the current cell's value
//
// A function ends at a `/` character or at end of input. `/` has no
// other meaning and is not itself one of the seven primitives above.
//
// All other bytes are treated as comments and ignored.
package core

// TapeSize is the number of 32-bit cells on the tape.
const TapeSize = 30000

// MaxFunctions is the maximum number of functions a program may declare.
const MaxFunctions = 128

// Position represents a location in the source file.
type Position struct {
	Offset int // byte offset from start of file
	Line   int // 1-based line number
	Column int // 1-based column number
}
