package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/cmd/twowire/console"
)

var pingCmd = cli.Command{
	Name:      "ping",
	Usage:     "probe a device for presence",
	ArgsUsage: "<addr>",
	Flags:     busFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		addr, err := parseByte(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "could not decode address: %v", err)
		}
		bus, check, err := openBus(c)
		if err != nil {
			return console.Exit(1, "bus error: %s", console.Red(err))
		}
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))

		err = bus.Ping(ctx, twowire.Addr(addr))
		if terr := check(); terr != nil {
			return console.Exit(1, "transport error: %s", console.Red(terr))
		}
		switch {
		case err == nil:
			console.PInfof(console.PictoPlug, "device %s responded", console.White(fmt.Sprintf("0x%02x", addr)))
		case errors.Is(err, twowire.ErrNack):
			console.PInfof(console.PictoStop, "no response from %s", console.Yellow(fmt.Sprintf("0x%02x", addr)))
		default:
			return console.Exit(1, "bus error: %s", console.Red(err))
		}
		return nil
	},
}
