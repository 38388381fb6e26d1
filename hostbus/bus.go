// Package hostbus exposes a Linux kernel bus as a twowire.Bus, for running
// the same CLI and device tooling against a host adapter instead of the
// register-level engine.
package hostbus

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/twowire"
)

var _ twowire.Bus = &GenericBus{}
var _ twowire.Scanner = &GenericBus{}

type GenericBus struct {
	bus i2c.BusCloser
}

func NewGenericBus(dev string) (*GenericBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open bus %q: %w", dev, err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

// Ping issues a zero-length write-direction transaction; a kernel error is
// reported as twowire.ErrNack since the host driver does not distinguish a
// missing acknowledge from other address-phase faults either.
func (b *GenericBus) Ping(ctx context.Context, addr byte) error {
	if err := b.bus.Tx(uint16(addr>>1), nil, nil); err != nil {
		return fmt.Errorf("%w: %s", twowire.ErrNack, err)
	}
	return nil
}

func (b *GenericBus) Scan(ctx context.Context) []byte {
	var found []byte
	for addr7 := byte(0x00); addr7 < 0x7F; addr7++ {
		if b.Ping(ctx, twowire.Addr(addr7)) == nil {
			found = append(found, twowire.Addr(addr7))
		}
	}
	return found
}

func (b *GenericBus) ReadReg(ctx context.Context, addr, reg byte, buffer []byte) error {
	if err := b.bus.Tx(uint16(addr>>1), []byte{reg}, buffer); err != nil {
		return fmt.Errorf("could not read register %#02x at %#02x: %w", reg, addr>>1, err)
	}
	return nil
}

func (b *GenericBus) WriteReg(ctx context.Context, addr, reg byte, buffer []byte) error {
	frame := make([]byte, 0, len(buffer)+1)
	frame = append(frame, reg)
	frame = append(frame, buffer...)
	if err := b.bus.Tx(uint16(addr>>1), frame, nil); err != nil {
		return fmt.Errorf("could not write register %#02x at %#02x: %w", reg, addr>>1, err)
	}
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
