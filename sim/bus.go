// Package sim provides a simulated register file for the bus controller,
// with attachable peripheral devices and fault injection. It exists so the
// transaction engine in package driver can be exercised without silicon:
// the unit tests and the CLI's sim backend both run on it.
package sim

import (
	"fmt"

	"github.com/mklimuk/twowire/driver"
)

var _ driver.Registers = &Bus{}

type phase int

const (
	phaseIdle phase = iota
	phaseOpening
	phaseSelecting
	phaseWriting
	phaseReading
)

// Bus emulates the controller peripheral and the devices wired to it. It
// reacts to register accesses the way the silicon does: setting the start
// bit raises the master-mode event, writing an address byte raises the
// matching address-phase event if a device is attached at that address, and
// so on. Every bus-level action is appended to a journal so tests can
// assert on signaling order.
type Bus struct {
	// StuckBusy keeps the busy flag permanently set, simulating a held
	// line. DeadBus swallows start conditions so the master-mode event
	// never appears. NackReads withholds acknowledgment of read-direction
	// address phases only, simulating a device that answers writes but
	// drops off before the repeated start.
	StuckBusy bool
	DeadBus   bool
	NackReads bool

	devices map[byte]*Device

	ctl1  uint16
	ctl2  uint16
	clock uint16
	sta1  uint16
	sta2  uint16
	data  byte

	phase   phase
	target  *Device
	journal []string
}

func NewBus() *Bus {
	return &Bus{devices: make(map[byte]*Device)}
}

// Attach wires dev at the given 7-bit address and returns it.
func (b *Bus) Attach(addr7 byte, dev *Device) *Device {
	b.devices[addr7&0x7F] = dev
	return dev
}

// Journal returns the recorded bus-level actions in order.
func (b *Bus) Journal() []string {
	return b.journal
}

func (b *Bus) ResetJournal() {
	b.journal = nil
}

// ClockConfig returns the last value written to the timing register.
func (b *Bus) ClockConfig() uint16 {
	return b.clock
}

func (b *Bus) record(format string, args ...interface{}) {
	b.journal = append(b.journal, fmt.Sprintf(format, args...))
}

func (b *Bus) Status1() uint16 {
	return b.sta1
}

func (b *Bus) Status2() uint16 {
	if b.StuckBusy {
		return b.sta2 | driver.Sta2Busy
	}
	return b.sta2
}

func (b *Bus) Control1() uint16 {
	return b.ctl1
}

func (b *Bus) SetControl1(mask uint16) {
	b.ctl1 |= mask
	if mask&driver.Ctl1Start != 0 {
		b.startCondition()
	}
	if mask&driver.Ctl1Stop != 0 {
		b.stopCondition()
	}
}

func (b *Bus) ClearControl1(mask uint16) {
	b.ctl1 &^= mask
}

func (b *Bus) Control2() uint16 {
	return b.ctl2
}

func (b *Bus) WriteControl2(value uint16) {
	b.ctl2 = value
}

func (b *Bus) WriteClockConfig(value uint16) {
	b.clock = value
}

func (b *Bus) EnableClocks() {
	b.record("clocks")
}

func (b *Bus) ConfigurePins() {
	b.record("pins")
}

func (b *Bus) PulseReset() {
	b.ctl1, b.ctl2, b.clock = 0, 0, 0
	b.sta1, b.sta2 = 0, 0
	b.phase = phaseIdle
	b.target = nil
	b.record("reset")
}

func (b *Bus) startCondition() {
	b.ctl1 &^= driver.Ctl1Start
	if b.ctl1&driver.Ctl1Enable == 0 || b.DeadBus {
		return
	}
	b.record("start")
	b.sta1 |= driver.Sta1StartSent
	b.sta2 |= driver.Sta2Busy | driver.Sta2MasterMode
	b.phase = phaseOpening
}

func (b *Bus) stopCondition() {
	b.ctl1 &^= driver.Ctl1Stop
	b.record("stop")
	b.sta1 = 0
	b.sta2 = 0
	b.phase = phaseIdle
	b.target = nil
}

func (b *Bus) WriteData(v byte) {
	switch b.phase {
	case phaseOpening:
		b.addressPhase(v)
	case phaseSelecting:
		b.record("reg 0x%02x", v)
		if b.target != nil {
			b.target.selectReg(v)
		}
		b.sta1 |= driver.Sta1TxEmpty | driver.Sta1ByteDone
		b.phase = phaseWriting
	case phaseWriting:
		b.record("write 0x%02x", v)
		if b.target != nil {
			b.target.writeNext(v)
		}
		b.sta1 |= driver.Sta1TxEmpty | driver.Sta1ByteDone
	}
}

func (b *Bus) addressPhase(frame byte) {
	dev, present := b.devices[frame>>1]
	if frame&1 == 0 {
		b.record("addr 0x%02x w", frame>>1)
	} else {
		b.record("addr 0x%02x r", frame>>1)
	}
	// A new address phase invalidates everything left over from the
	// previous one; only a fresh acknowledgment may raise AddrSent.
	b.sta1 &^= driver.Sta1StartSent | driver.Sta1AddrSent | driver.Sta1TxEmpty | driver.Sta1ByteDone | driver.Sta1RxNotEmpty
	if frame&1 != 0 && b.NackReads {
		present = false
	}
	if !present {
		// No acknowledgment: the address-phase event never forms and
		// the caller's wait budget runs out.
		return
	}
	b.target = dev
	b.sta1 |= driver.Sta1AddrSent
	if frame&1 == 0 {
		b.sta2 |= driver.Sta2Transmitting
		b.sta1 |= driver.Sta1TxEmpty
		b.phase = phaseSelecting
	} else {
		b.sta2 &^= driver.Sta2Transmitting
		b.data = dev.readNext()
		b.sta1 |= driver.Sta1RxNotEmpty
		b.phase = phaseReading
	}
}

func (b *Bus) ReadData() byte {
	if b.phase != phaseReading {
		return b.data
	}
	v := b.data
	b.record("read 0x%02x", v)
	if b.ctl1&driver.Ctl1Ack != 0 && b.target != nil {
		// Acknowledged: the device shifts out the next register.
		b.data = b.target.readNext()
	} else {
		// Not acknowledged: this was the final byte.
		b.sta1 &^= driver.Sta1RxNotEmpty
	}
	return v
}
