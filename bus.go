package twowire

import (
	"context"
	"fmt"
)

// ErrBusTimeout is returned when the bus never reaches the state a bounded
// wait was polling for (typically a bus that never goes idle).
var ErrBusTimeout = fmt.Errorf("bus wait timed out (line stuck or transfer stalled)")

// ErrNack is returned when the address phase of a transaction is not
// acknowledged. A missing device and any other address-phase stall are
// indistinguishable at this level and both report as ErrNack.
var ErrNack = fmt.Errorf("address not acknowledged")

// ErrRawTransferUnsupported is returned by adapters when asked for a plain
// (register-less) transfer the underlying transaction engine cannot express.
var ErrRawTransferUnsupported = fmt.Errorf("raw transfer not supported by this bus")

// Pinger probes for device presence. addr is in wire format: the 7-bit
// device address pre-shifted into bits 1-7; bit 0 is ignored.
type Pinger interface {
	Ping(ctx context.Context, addr byte) error
}

// RegisterReader reads len(buffer) bytes from an 8-bit device register.
type RegisterReader interface {
	ReadReg(ctx context.Context, addr, reg byte, buffer []byte) error
}

// RegisterWriter writes buffer into an 8-bit device register.
type RegisterWriter interface {
	WriteReg(ctx context.Context, addr, reg byte, buffer []byte) error
}

// Scanner enumerates responding wire-format addresses in ascending order.
type Scanner interface {
	Scan(ctx context.Context) []byte
}

type Bus interface {
	Pinger
	RegisterReader
	RegisterWriter
}

// Addr shifts a bare 7-bit device address into wire format.
func Addr(addr7 byte) byte {
	return (addr7 & 0x7F) << 1
}
