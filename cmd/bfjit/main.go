// Command bfjit is the host process for the lazy-JIT tape language:
// it parses a source file, builds a Runtime and Driver, and starts
// execution at the program's main function. Subcommands below also
// expose the tokenizer and lowering passes standalone, in the style of
// the pack's own multi-command compiler driver.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var log zerolog.Logger

func main() {
	app := &cli.App{
		Name:  "bfjit",
		Usage: "lazy just-in-time compiler for the tape language",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "trace lazy-compile events as they happen",
			},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.WarnLevel
			if c.Bool("verbose") {
				level = zerolog.TraceLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).
				With().Timestamp().Logger()
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			tokensCommand,
			irCommand,
			disasmCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
