// Package driver implements the master-mode transaction engine for a
// two-wire synchronous serial bus controller with 8-bit device addresses and
// 8-bit device registers.
//
// The engine is purely polling: every wait busy-loops on a status flag with
// a fresh, bounded iteration budget and blocks the calling goroutine until
// the flag changes or the budget runs out. There is no internal locking; a
// Controller supports one in-flight transaction at a time and callers that
// share one across goroutines must serialize access themselves.
package driver

import (
	"context"

	"github.com/mklimuk/twowire"
)

var _ twowire.Bus = &Controller{}
var _ twowire.Scanner = &Controller{}

// Controller drives a single bus controller peripheral through its
// Registers surface. Init must be called once before any transaction.
type Controller struct {
	regs        Registers
	coreClock   uint32
	prescaleRef uint32
	budget      int
}

func New(regs Registers, opts ...Option) *Controller {
	c := &Controller{
		regs:        regs,
		coreClock:   DefaultCoreClock,
		prescaleRef: DefaultPrescaleRef,
		budget:      DefaultTimeoutBudget,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init configures and enables the controller for the requested bus clock
// rate (in Hz). It can be called again to change the rate; the resulting
// register state depends only on the rate. Hardware is assumed present, so
// Init has no failure path.
func (c *Controller) Init(clockRate uint32) error {
	c.regs.EnableClocks()
	c.regs.ConfigurePins()
	c.regs.PulseReset()

	freq := c.regs.Control2() &^ Ctl2FreqMask
	freq |= uint16(c.coreClock/c.prescaleRef) & Ctl2FreqMask
	c.regs.WriteControl2(freq)

	c.regs.WriteClockConfig(clockConfig(c.coreClock, clockRate))

	c.regs.SetControl1(Ctl1Enable)
	return nil
}

// Ping probes addr (wire format, direction bit ignored) with an address-only
// transaction: start, write-direction address phase, stop. It returns nil if
// the device acknowledged, twowire.ErrNack if it did not, and
// twowire.ErrBusTimeout if the bus never went idle.
func (c *Controller) Ping(ctx context.Context, addr byte) error {
	if err := c.waitIdle(); err != nil {
		return err
	}
	err := c.open(addr &^ 1)
	c.stop()
	return err
}

// Scan probes every 7-bit address and returns the wire-format addresses
// that acknowledged, in ascending order. Enumeration is strictly
// sequential; a bus with no devices yields an empty result.
func (c *Controller) Scan(ctx context.Context) []byte {
	var found []byte
	for addr7 := byte(0x00); addr7 < 0x7F; addr7++ {
		if c.Ping(ctx, twowire.Addr(addr7)) == nil {
			found = append(found, twowire.Addr(addr7))
		}
	}
	return found
}

// ReadReg reads len(buffer) bytes from device register reg: write-direction
// address phase, register-select byte, repeated start, read-direction
// address phase, then one byte per wait on the receive flag. Acknowledgment
// is generated for multi-byte reads and withheld on the final byte so the
// device releases the bus. A stop condition is issued on every path that
// generated a start.
func (c *Controller) ReadReg(ctx context.Context, addr, reg byte, buffer []byte) error {
	if err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.open(addr &^ 1); err != nil {
		c.stop()
		return err
	}

	c.regs.WriteData(reg)
	if !c.waitStatus1(Sta1TxEmpty) {
		c.stop()
		return twowire.ErrBusTimeout
	}

	if len(buffer) > 1 {
		c.regs.SetControl1(Ctl1Ack)
	}

	// Repeated start to switch the transfer direction.
	if err := c.open(addr | 1); err != nil {
		c.stop()
		return err
	}

	for i := range buffer {
		if i == len(buffer)-1 {
			c.regs.ClearControl1(Ctl1Ack)
		}
		if !c.waitStatus1(Sta1RxNotEmpty) {
			c.stop()
			return twowire.ErrBusTimeout
		}
		buffer[i] = c.regs.ReadData()
	}

	c.stop()
	return nil
}

// WriteReg writes buffer into device register reg: write-direction address
// phase, register-select byte, one byte per wait on the transmit flag, then
// a wait for the final byte (and its acknowledge bit) to fully shift out
// before the stop condition.
func (c *Controller) WriteReg(ctx context.Context, addr, reg byte, buffer []byte) error {
	if err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.open(addr &^ 1); err != nil {
		c.stop()
		return err
	}

	c.regs.WriteData(reg)
	if !c.waitStatus1(Sta1TxEmpty) {
		c.stop()
		return twowire.ErrBusTimeout
	}

	for _, b := range buffer {
		if !c.waitStatus1(Sta1TxEmpty) {
			c.stop()
			return twowire.ErrBusTimeout
		}
		c.regs.WriteData(b)
	}

	if !c.waitEvent(EvByteTransmitted) {
		c.stop()
		return twowire.ErrBusTimeout
	}

	c.stop()
	return nil
}

// open generates a start condition and runs the address phase. Bit 0 of
// addr selects the direction and with it the event that confirms the phase.
// Used both for the initial start (after waitIdle) and for repeated starts.
func (c *Controller) open(addr byte) error {
	c.regs.SetControl1(Ctl1Start)
	if !c.waitEvent(EvMasterModeSelected) {
		return twowire.ErrBusTimeout
	}

	expect := EvTransmitterSelected
	if addr&1 != 0 {
		expect = EvReceiverSelected
	}
	c.regs.WriteData(addr)
	if !c.waitEvent(expect) {
		return twowire.ErrNack
	}
	return nil
}

func (c *Controller) stop() {
	c.regs.SetControl1(Ctl1Stop)
}

// waitIdle polls the busy flag until the bus is free. Failing here means no
// signaling was sent at all.
func (c *Controller) waitIdle() error {
	for budget := c.budget; budget > 0; budget-- {
		if c.regs.Status2()&Sta2Busy == 0 {
			return nil
		}
	}
	return twowire.ErrBusTimeout
}

func (c *Controller) waitStatus1(mask uint16) bool {
	for budget := c.budget; budget > 0; budget-- {
		if c.regs.Status1()&mask != 0 {
			return true
		}
	}
	return false
}

// waitEvent polls for a combined master event: status word 2 in the high
// half, status word 1 in the low half, all bits required at once.
func (c *Controller) waitEvent(event uint32) bool {
	for budget := c.budget; budget > 0; budget-- {
		status := uint32(c.regs.Status1()) | uint32(c.regs.Status2())<<16
		if status&event == event {
			return true
		}
	}
	return false
}
