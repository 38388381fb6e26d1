package main

import (
	"encoding/hex"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/cmd/twowire/console"
)

var readCmd = cli.Command{
	Name:      "read",
	Usage:     "read bytes from a device register",
	ArgsUsage: "<addr> <reg> [len]",
	Flags:     busFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 || c.NArg() > 3 {
			return console.Exit(1, "expected 2 or 3 arguments, got %d", c.NArg())
		}
		addr, err := parseByte(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "could not decode address: %v", err)
		}
		reg, err := parseByte(c.Args().Get(1))
		if err != nil {
			return console.Exit(1, "could not decode register: %v", err)
		}
		length := 1
		if c.NArg() == 3 {
			length, err = strconv.Atoi(c.Args().Get(2))
			if err != nil || length < 0 || length > 255 {
				return console.Exit(1, "invalid length %q", c.Args().Get(2))
			}
		}
		bus, check, err := openBus(c)
		if err != nil {
			return console.Exit(1, "bus error: %s", console.Red(err))
		}
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))

		buf := make([]byte, length)
		err = bus.ReadReg(ctx, twowire.Addr(addr), reg, buf)
		if terr := check(); terr != nil {
			return console.Exit(1, "transport error: %s", console.Red(terr))
		}
		if err != nil {
			return console.Exit(1, "read error: %s", console.Red(err))
		}
		console.Printf("%s", hex.Dump(buf))
		return nil
	},
}
