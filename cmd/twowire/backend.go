package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/cmd/twowire/console"
	"github.com/mklimuk/twowire/driver"
	"github.com/mklimuk/twowire/hostbus"
	"github.com/mklimuk/twowire/probe"
	"github.com/mklimuk/twowire/sim"
)

type busConn interface {
	twowire.Bus
	twowire.Scanner
}

var busFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Value:   "probe",
		Usage:   "bus backend: probe, host or sim",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Value:   "1",
		Usage:   "host bus to open (host backend only)",
	},
	&cli.UintFlag{
		Name:  "clock",
		Value: 100_000,
		Usage: "bus clock rate in Hz (probe and sim backends)",
	},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
}

// openBus builds the selected transport. The returned check func surfaces
// transport errors the register surface had to swallow; call it after the
// transaction.
func openBus(c *cli.Context) (busConn, func() error, error) {
	noop := func() error { return nil }
	switch c.String("backend") {
	case "probe":
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))
		link := probe.NewWCHLink(ctx)
		ctl := driver.New(link)
		if err := ctl.Init(uint32(c.Uint("clock"))); err != nil {
			return nil, nil, fmt.Errorf("controller init failed: %w", err)
		}
		if err := link.Err(); err != nil {
			return nil, nil, fmt.Errorf("probe communication error: %w", err)
		}
		return ctl, link.Err, nil
	case "host":
		bus, err := hostbus.NewGenericBus(c.String("device"))
		if err != nil {
			return nil, nil, err
		}
		return bus, noop, nil
	case "sim":
		bus := demoBus()
		ctl := driver.New(bus)
		if err := ctl.Init(uint32(c.Uint("clock"))); err != nil {
			return nil, nil, err
		}
		return ctl, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", c.String("backend"))
	}
}

// demoBus wires a few simulated devices so the cli can be exercised without
// hardware: a temperature-sensor-like device at 0x48, a display-like one at
// 0x3C and a clock-like one at 0x68.
func demoBus() *sim.Bus {
	bus := sim.NewBus()
	bus.Attach(0x48, sim.NewDevice().Preload(0x00, 0x19, 0x40))
	bus.Attach(0x3C, sim.NewDevice())
	bus.Attach(0x68, sim.NewDevice().Preload(0x00, 0x55, 0x30, 0x12))
	return bus
}

// parseByte accepts bare ("3c") and 0x-prefixed ("0x3c") hex. Addresses and
// register numbers are conventionally written in hex, so bare input is never
// read as decimal.
func parseByte(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 8)
		return byte(v), err
	}
	v, err := strconv.ParseUint(s, 16, 8)
	return byte(v), err
}
