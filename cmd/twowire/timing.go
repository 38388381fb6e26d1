package main

import (
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/twowire/cmd/twowire/console"
	"github.com/mklimuk/twowire/driver"
)

var timingCmd = cli.Command{
	Name:      "timing",
	Usage:     "show the timing values computed for a bus clock rate",
	ArgsUsage: "<rate-hz>",
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  "core-clock",
			Value: uint(driver.DefaultCoreClock),
			Usage: "system core clock in Hz",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		rate, err := strconv.ParseUint(c.Args().Get(0), 10, 32)
		if err != nil || rate == 0 {
			return console.Exit(1, "invalid clock rate %q", c.Args().Get(0))
		}
		timing := driver.ComputeTiming(uint32(c.Uint("core-clock")), driver.DefaultPrescaleRef, uint32(rate))
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(timing); err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
