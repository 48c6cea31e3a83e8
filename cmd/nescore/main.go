// Command nescore runs a cartridge image against the CPU core, optionally
// (--trace) tracing each instruction to stdout in the nestest.log style,
// until BRK halts the program or a step limit is hit.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"
	"gopkg.in/urfave/cli.v2"

	"nescore/cpu"
	"nescore/ines"
	"nescore/mem"
)

func main() {
	defer glog.Flush()

	app := &cli.App{
		Name:    "nescore",
		Usage:   "run an iNES ROM against the 6502 core",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "steps",
				Aliases: []string{"n"},
				Usage:   "maximum number of instructions to execute (0 = unlimited)",
				Value:   0,
			},
			&cli.BoolFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "print a trace line before every instruction",
			},
		},
		Action: run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		glog.Errorf("nescore: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("a ROM path is required", 86)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("nescore: reading %s: %w", path, err)
	}

	_, rom, err := ines.Parse(raw)
	if err != nil {
		return fmt.Errorf("nescore: parsing %s: %w", path, err)
	}
	glog.Infof("nescore: loaded %s: mapper=%s mirroring=%s prg=%d chr=%d",
		path, rom.Header.RomMapper, rom.Header.Mirroring, rom.Header.LenPRGROM, rom.Header.LenCHRROM)

	bus := mem.NewWithROM(rom)
	machine := cpu.NewWithROM(bus)
	machine.Reset()

	trace := c.Bool("trace")
	limit := c.Int("steps")
	steps := 0

	return machine.RunWithCallback(func(m *cpu.CPU) bool {
		if trace {
			fmt.Println(m.Trace())
		}
		steps++
		if limit > 0 && steps > limit {
			return false
		}
		return true
	})
}
