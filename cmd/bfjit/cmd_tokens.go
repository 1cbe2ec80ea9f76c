package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"bfjit/internal/core"
)

var tokensCommand = &cli.Command{
	Name:      "tokens",
	Usage:     "dump the tokenizer's output for a source file",
	ArgsUsage: "<file>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("usage: bfjit tokens <file>", 1)
		}

		src, err := os.ReadFile(c.Args().First())
		if err != nil {
			return cli.Exit(fmt.Errorf("reading %s: %w", c.Args().First(), err), 1)
		}

		for _, tok := range core.Tokenize(src) {
			fmt.Printf("%d:%d\t%v\n", tok.Pos.Line, tok.Pos.Column, tok.Kind)
		}
		return nil
	},
}
