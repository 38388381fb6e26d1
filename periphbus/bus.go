// Package periphbus exposes a driver.Controller as a periph.io i2c.Bus so
// existing periph device drivers can run on top of the register-level
// transaction engine.
package periphbus

import (
	"context"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/driver"
)

var _ i2c.Bus = &Bus{}

// Bus adapts a Controller to the periph transfer model. The controller
// itself supports a single in-flight transaction, so the adapter carries the
// required external mutual exclusion.
type Bus struct {
	mx   sync.Mutex
	ctl  *driver.Controller
	name string
}

func New(name string, ctl *driver.Controller) *Bus {
	return &Bus{ctl: ctl, name: name}
}

func (b *Bus) String() string {
	return b.name
}

// Tx maps periph's write-then-read transfer onto register transactions:
// a one-byte write followed by a read is a register read, a write of two or
// more bytes is a register write with the first byte selecting the
// register, and an empty transfer is a presence probe. Plain reads have no
// register-transaction equivalent and are rejected.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	ctx := context.Background()
	wire := twowire.Addr(byte(addr))
	switch {
	case len(w) == 0 && len(r) == 0:
		return b.ctl.Ping(ctx, wire)
	case len(w) == 1 && len(r) > 0:
		return b.ctl.ReadReg(ctx, wire, w[0], r)
	case len(w) > 0 && len(r) == 0:
		return b.ctl.WriteReg(ctx, wire, w[0], w[1:])
	default:
		return fmt.Errorf("%w: %d write / %d read", twowire.ErrRawTransferUnsupported, len(w), len(r))
	}
}

func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("invalid bus speed %s", f)
	}
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.ctl.Init(uint32(f / physic.Hertz))
}
