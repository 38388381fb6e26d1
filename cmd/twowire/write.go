package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/cmd/twowire/console"
)

var writeCmd = cli.Command{
	Name:      "write",
	Usage:     "write bytes to a device register",
	ArgsUsage: "<addr> <reg> [payload-hex]",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	}, busFlags...),
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
		var payload []byte
		if c.NArg() == 3 {
			payload, err = hex.DecodeString(c.Args().Get(2))
			if err != nil {
				return console.Exit(1, "could not decode payload: %v", err)
			}
			if len(payload) > 255 {
				return console.Exit(1, "payload too long: %d bytes", len(payload))
			}
		}
		if !c.Bool("yes") {
			answer, err := console.YesOrNo(fmt.Sprintf("write %d byte(s) to register 0x%02x at 0x%02x?", len(payload), reg, addr))
			if err != nil {
				return console.Exit(1, "prompt error: %v", err)
			}
			if answer != console.Yes {
				console.Info("aborted")
				return nil
			}
		}
		bus, check, err := openBus(c)
		if err != nil {
			return console.Exit(1, "bus error: %s", console.Red(err))
		}
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))

		err = bus.WriteReg(ctx, twowire.Addr(addr), reg, payload)
		if terr := check(); terr != nil {
			return console.Exit(1, "transport error: %s", console.Red(terr))
		}
		if err != nil {
			return console.Exit(1, "write error: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "wrote %s byte(s)", console.White(len(payload)))
		return nil
	},
}
