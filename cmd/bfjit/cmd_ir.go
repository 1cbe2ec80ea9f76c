package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"bfjit/internal/core"
)

var irCommand = &cli.Command{
	Name:      "ir",
	Usage:     "dump the lowered op stream for every function in a source file",
	ArgsUsage: "<file>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("usage: bfjit ir <file>", 1)
		}

		prog, err := loadProgram(c.Args().First())
		if err != nil {
			return cli.Exit(err, 1)
		}

		fmt.Print(core.DumpProgram(prog))
		return nil
	},
}
