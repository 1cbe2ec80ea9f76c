package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"bfjit/internal/core"
	"bfjit/internal/driver"
	"bfjit/internal/runtime"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "run a source file, lazily compiling each function on first call",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "coredump",
			Usage: "on a fatal compile/allocation error, write a post-mortem dump of compiled pages to this path",
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("usage: bfjit run <file>", 1)
		}
		file := c.Args().First()

		prog, err := loadProgram(file)
		if err != nil {
			return cli.Exit(err, 1)
		}

		rt := runtime.New()
		drv := driver.New(prog, rt)
		rt.SetCompiler(drv)
		if c.Bool("verbose") {
			drv.SetTrace(func(id uint32) {
				log.Trace().Uint32("function", id).Msg("compiled")
			})
		}

		mainID := drv.MainID()
		log.Debug().Uint32("main", mainID).Int("functions", len(prog.Functions)).Msg("starting")

		if err := runGuarded(rt, drv, mainID, c.String("coredump")); err != nil {
			return cli.Exit(err, 1)
		}

		fmt.Println()
		return nil
	},
}

// loadProgram reads and parses a source file. A read failure is an I/O
// error (§7); a Lower failure is the program exceeding MaxFunctions,
// surfaced as a *core.Error carrying the offending Position.
func loadProgram(file string) (*core.Program, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	prog, err := core.Lower(core.Tokenize(src))
	if err != nil {
		var lowerErr *core.Error
		if errors.As(err, &lowerErr) {
			return nil, fmt.Errorf("%s: %w", file, lowerErr)
		}
		return nil, err
	}
	return prog, nil
}

// runGuarded starts the program, recovering a fatal compile error that
// dispatchCompileAndEnter panics with (JITted code has no error
// channel back to the host per §7, so the trampoline's only way to
// surface a failed Compile is a panic the host recovers at this
// outermost frame). On recovery, if coredumpPath is set, it writes
// whatever pages did compile before the failure for post-mortem
// disassembly.
func runGuarded(rt *runtime.Runtime, drv *driver.Driver, mainID uint32, coredumpPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if coredumpPath != "" {
				if dumpErr := os.WriteFile(coredumpPath, drv.Coredump(), 0o644); dumpErr != nil {
					log.Error().Err(dumpErr).Msg("failed to write coredump")
				} else {
					log.Warn().Str("path", coredumpPath).Msg("wrote coredump")
				}
			}
			err = fmt.Errorf("fatal error compiling or running function %d: %v", mainID, r)
		}
	}()
	rt.Start(mainID)
	return nil
}
