// Package gobotio adapts a twowire.Bus to the gobot i2c connector model so
// gobot device drivers can be started on top of it.
package gobotio

import (
	"context"
	"encoding/binary"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/twowire"
)

var _ i2c.Connector = &Adaptor{}
var _ i2c.Connection = &Connection{}

// Adaptor hands out connections bound to a device address. There is a
// single underlying bus, so only bus number 0 (or i2c.BusNotInitialized)
// is accepted.
type Adaptor struct {
	name string
	bus  twowire.Bus
}

func NewAdaptor(bus twowire.Bus) *Adaptor {
	return &Adaptor{name: "twowire", bus: bus}
}

func (a *Adaptor) Name() string        { return a.name }
func (a *Adaptor) SetName(name string) { a.name = name }

func (a *Adaptor) Connect() error  { return nil }
func (a *Adaptor) Finalize() error { return nil }

func (a *Adaptor) DefaultI2cBus() int { return 0 }

func (a *Adaptor) GetI2cConnection(address int, busNr int) (i2c.Connection, error) {
	if busNr != 0 && busNr != i2c.BusNotInitialized {
		return nil, fmt.Errorf("unknown bus number %d, the adaptor drives a single bus", busNr)
	}
	if address < 0 || address > 0x7F {
		return nil, fmt.Errorf("invalid device address %#x", address)
	}
	return &Connection{bus: a.bus, addr: twowire.Addr(byte(address))}, nil
}

// Connection implements gobot's register-oriented operations over register
// transactions. Plain reads have no register-transaction equivalent and
// report twowire.ErrRawTransferUnsupported. Word data is little-endian, as
// in the rest of the gobot i2c stack.
type Connection struct {
	bus  twowire.Bus
	addr byte
}

func (c *Connection) Read(p []byte) (int, error) {
	return 0, twowire.ErrRawTransferUnsupported
}

// Write forwards the usual register-first frame: the first byte selects the
// register, the rest is payload. An empty frame degrades to a presence
// probe.
func (c *Connection) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, c.bus.Ping(context.Background(), c.addr)
	}
	if err := c.bus.WriteReg(context.Background(), c.addr, p[0], p[1:]); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Connection) Close() error { return nil }

func (c *Connection) ReadByte() (byte, error) {
	return 0, twowire.ErrRawTransferUnsupported
}

func (c *Connection) ReadByteData(reg uint8) (uint8, error) {
	var b [1]byte
	if err := c.bus.ReadReg(context.Background(), c.addr, reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Connection) ReadWordData(reg uint8) (uint16, error) {
	var b [2]byte
	if err := c.bus.ReadReg(context.Background(), c.addr, reg, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (c *Connection) ReadBlockData(reg uint8, b []byte) error {
	return c.bus.ReadReg(context.Background(), c.addr, reg, b)
}

// WriteByte sends a lone command byte: address phase, register-select byte,
// stop.
func (c *Connection) WriteByte(val byte) error {
	return c.bus.WriteReg(context.Background(), c.addr, val, nil)
}

func (c *Connection) WriteByteData(reg uint8, val uint8) error {
	return c.bus.WriteReg(context.Background(), c.addr, reg, []byte{val})
}

func (c *Connection) WriteWordData(reg uint8, val uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], val)
	return c.bus.WriteReg(context.Background(), c.addr, reg, b[:])
}

func (c *Connection) WriteBlockData(reg uint8, b []byte) error {
	return c.bus.WriteReg(context.Background(), c.addr, reg, b)
}

func (c *Connection) WriteBytes(b []byte) error {
	_, err := c.Write(b)
	return err
}
