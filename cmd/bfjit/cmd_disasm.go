package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"bfjit/internal/core"
	"bfjit/internal/disasm"
	"bfjit/internal/emit"
	"bfjit/internal/runtime"
	"bfjit/pkg/codebuf"
)

var disasmCommand = &cli.Command{
	Name:      "disasm",
	Usage:     "assemble a function's machine code and print it back as text",
	ArgsUsage: "<file> [function-id]",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 1 || c.Args().Len() > 2 {
			return cli.Exit("usage: bfjit disasm <file> [function-id]", 1)
		}

		prog, err := loadProgram(c.Args().First())
		if err != nil {
			return cli.Exit(err, 1)
		}

		rt := runtime.New()

		if c.Args().Len() == 2 {
			id, err := strconv.ParseUint(c.Args().Get(1), 10, 32)
			if err != nil || id >= uint64(len(prog.Functions)) {
				return cli.Exit(fmt.Sprintf("function id %q out of range (0..%d)", c.Args().Get(1), len(prog.Functions)-1), 1)
			}
			disassembleFunction(rt, prog.Functions[id], uint32(id))
			return nil
		}

		for id, fn := range prog.Functions {
			disassembleFunction(rt, fn, uint32(id))
		}
		return nil
	},
}

// disassembleFunction assembles fn the same way the driver would for
// installation, but against a scratch runtime whose pages never get
// mapped executable. Disassembly only needs the absolute addresses fn's
// body bakes in as movabs immediates, not a live process to run it in.
func disassembleFunction(rt *runtime.Runtime, fn core.Function, id uint32) {
	buf := codebuf.New(4096)
	emit.Function(fn, rt, buf)

	fmt.Printf("function %d:\n", id)
	disasm.Write(os.Stdout, buf.Bytes())
	fmt.Println()
}
