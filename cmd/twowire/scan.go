package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/twowire/cmd/twowire/console"
)

type scanReport struct {
	Addresses []string `yaml:"addresses"`
}

var scanCmd = cli.Command{
	Name:  "scan",
	Usage: "enumerate responding devices on the bus",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "yaml", Usage: "emit the report as yaml"},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		bus, check, err := openBus(c)
		if err != nil {
			return console.Exit(1, "bus error: %s", console.Red(err))
		}
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))

		found := bus.Scan(ctx)
		if err := check(); err != nil {
			return console.Exit(1, "transport error: %s", console.Red(err))
		}
		if c.Bool("yaml") {
			report := scanReport{}
			for _, addr := range found {
				report.Addresses = append(report.Addresses, fmt.Sprintf("0x%02x", addr>>1))
			}
			enc := yaml.NewEncoder(os.Stdout)
			if err := enc.Encode(report); err != nil {
				return console.Exit(1, "encoding error: %s", console.Red(err))
			}
			return nil
		}
		console.Infof("scanning bus")
		for _, addr := range found {
			console.PInfof(console.PictoPlug, "device %s responded", console.White(fmt.Sprintf("0x%02x", addr>>1)))
		}
		console.Infof("done, %d device(s) found", len(found))
		return nil
	},
}
