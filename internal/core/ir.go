package core

import (
	"fmt"
	"strings"
)

// OpKind identifies the kind of primitive operation.
type OpKind int

const (
	OpMove       OpKind = iota // MOVE delta
	OpUpdateCell               // UPDATECELL delta
	OpOutput                   // OUTPUT
	OpInput                    // INPUT
	OpInvoke                   // INVOKE
)

// opNames maps each OpKind to its string representation for debugging.
var opNames = [...]string{
	OpMove:       "MOVE",
	OpUpdateCell: "UPDATECELL",
	OpOutput:     "OUTPUT",
	OpInput:      "INPUT",
	OpInvoke:     "INVOKE",
}

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	return opNames[k]
}

// Op represents one primitive tape operation. Move and UpdateCell carry
// a signed delta in Arg; the other three variants ignore it.
type Op struct {
	Kind OpKind
	Arg  int32
	Pos  *Position // optional source metadata for diagnostics
}

func Move(delta int32) Op       { return Op{Kind: OpMove, Arg: delta} }
func UpdateCell(delta int32) Op { return Op{Kind: OpUpdateCell, Arg: delta} }
func Output() Op                { return Op{Kind: OpOutput} }
func Input() Op                 { return Op{Kind: OpInput} }
func Invoke() Op                { return Op{Kind: OpInvoke} }

// Function is an ordered sequence of primitive operations.
type Function struct {
	Ops []Op
}

// Program is an ordered sequence of functions. By convention the last
// function in a program is its entry point.
type Program struct {
	Functions []Function
}

// MainID returns the index of the program's entry-point function, the
// last function in source order.
func (p *Program) MainID() uint32 {
	return uint32(len(p.Functions) - 1)
}

// Dump returns a formatted string representation of one function's op
// stream, in the style of a disassembly listing.
func Dump(ops []Op) string {
	var out strings.Builder

	for i, op := range ops {
		switch op.Kind {
		case OpMove:
			fmt.Fprintf(&out, "%03d: MOVE       %+d\n", i, op.Arg)
		case OpUpdateCell:
			fmt.Fprintf(&out, "%03d: UPDATECELL %+d\n", i, op.Arg)
		case OpOutput:
			fmt.Fprintf(&out, "%03d: OUTPUT\n", i)
		case OpInput:
			fmt.Fprintf(&out, "%03d: INPUT\n", i)
		case OpInvoke:
			fmt.Fprintf(&out, "%03d: INVOKE\n", i)
		}
	}
	return out.String()
}

// DumpProgram renders every function in a program, each headed by its id.
func DumpProgram(p *Program) string {
	var out strings.Builder
	for id, fn := range p.Functions {
		fmt.Fprintf(&out, "func %d:\n", id)
		out.WriteString(Dump(fn.Ops))
	}
	return out.String()
}
