// Package probe drives the bus controller's register file through a
// WCH-Link-style USB debug probe, so the transaction engine in package
// driver can run against real silicon from a host machine. The probe
// exposes 32-bit memory access over 64-byte HID reports.
package probe

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/twowire/cmd/twowire/console"
	"github.com/mklimuk/twowire/driver"
)

const VendorID = 0x1A86
const ProductID = 0x8010

const (
	cmdReadWord  = 0xD1
	cmdWriteWord = 0xD2
)

// Controller peripheral register map.
const (
	regCtl1   = 0x4000_5400
	regCtl2   = 0x4000_5404
	regData   = 0x4000_5410
	regSta1   = 0x4000_5414
	regSta2   = 0x4000_5418
	regClock  = 0x4000_541C
	regClkPB1 = 0x4002_101C // peripheral clock enable, bridge domain
	regClkPB2 = 0x4002_1018 // port + alternate function clock enable
	regRstPB1 = 0x4002_1010 // peripheral reset
	regPinCfg = 0x4001_1000 // port configuration, low half
)

const (
	clkPeripheral = 1 << 21
	clkPort       = 1 << 4
	clkAltFunc    = 1 << 0

	pinClockLine = 2 // SCL
	pinDataLine  = 1 // SDA

	// 10 MHz output, alternate-function open-drain.
	pinModeAFOpenDrain = 0xD
)

var ErrProbeNotFound = errors.New("debug probe not found")
var ErrCommandFailed = errors.New("probe command failed")

var _ driver.Registers = &WCHLink{}

// WCHLink implements driver.Registers over a USB HID debug probe. Register
// accesses have no error return by design of that interface; transport
// failures are retained and reported by Err, and failed status reads return
// zero so a broken probe degrades into wait timeouts instead of a hang.
type WCHLink struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
	ctx          context.Context
	err          error
}

func NewWCHLink(ctx context.Context) *WCHLink {
	return &WCHLink{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 5 * time.Millisecond,
		ctx:          ctx,
	}
}

// Err returns the first transport error encountered since the last call,
// and clears it.
func (p *WCHLink) Err() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	err := p.err
	p.err = nil
	return err
}

func (p *WCHLink) Status1() uint16 { return uint16(p.readWord(regSta1)) }
func (p *WCHLink) Status2() uint16 { return uint16(p.readWord(regSta2)) }

func (p *WCHLink) Control1() uint16 { return uint16(p.readWord(regCtl1)) }

func (p *WCHLink) SetControl1(mask uint16) {
	p.writeWord(regCtl1, p.readWord(regCtl1)|uint32(mask))
}

func (p *WCHLink) ClearControl1(mask uint16) {
	p.writeWord(regCtl1, p.readWord(regCtl1)&^uint32(mask))
}

func (p *WCHLink) Control2() uint16 { return uint16(p.readWord(regCtl2)) }

func (p *WCHLink) WriteControl2(value uint16) { p.writeWord(regCtl2, uint32(value)) }

func (p *WCHLink) WriteClockConfig(value uint16) { p.writeWord(regClock, uint32(value)) }

func (p *WCHLink) WriteData(b byte) { p.writeWord(regData, uint32(b)) }

func (p *WCHLink) ReadData() byte { return byte(p.readWord(regData)) }

func (p *WCHLink) EnableClocks() {
	p.writeWord(regClkPB2, p.readWord(regClkPB2)|clkPort|clkAltFunc)
	p.writeWord(regClkPB1, p.readWord(regClkPB1)|clkPeripheral)
}

func (p *WCHLink) ConfigurePins() {
	cfg := p.readWord(regPinCfg)
	cfg &^= 0xF << (4 * pinDataLine)
	cfg |= pinModeAFOpenDrain << (4 * pinDataLine)
	cfg &^= 0xF << (4 * pinClockLine)
	cfg |= pinModeAFOpenDrain << (4 * pinClockLine)
	p.writeWord(regPinCfg, cfg)
}

func (p *WCHLink) PulseReset() {
	p.writeWord(regRstPB1, p.readWord(regRstPB1)|clkPeripheral)
	p.writeWord(regRstPB1, p.readWord(regRstPB1)&^uint32(clkPeripheral))
}

func (p *WCHLink) readWord(addr uint32) uint32 {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.resetBuffers()
	p.request[0] = cmdReadWord
	binary.LittleEndian.PutUint32(p.request[1:5], addr)
	err := p.send(p.ctx)
	if err != nil {
		p.keep(fmt.Errorf("register read at %#08x failed: %w", addr, err))
		return 0
	}
	if p.response[1] != 0x00 {
		p.keep(fmt.Errorf("register read at %#08x: %w", addr, ErrCommandFailed))
		return 0
	}
	return binary.LittleEndian.Uint32(p.response[2:6])
}

func (p *WCHLink) writeWord(addr, value uint32) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.resetBuffers()
	p.request[0] = cmdWriteWord
	binary.LittleEndian.PutUint32(p.request[1:5], addr)
	binary.LittleEndian.PutUint32(p.request[5:9], value)
	err := p.send(p.ctx)
	if err != nil {
		p.keep(fmt.Errorf("register write at %#08x failed: %w", addr, err))
		return
	}
	if p.response[1] != 0x00 {
		p.keep(fmt.Errorf("register write at %#08x: %w", addr, ErrCommandFailed))
	}
}

// keep retains the first error of a sequence; later ones are usually
// consequences of the first.
func (p *WCHLink) keep(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *WCHLink) send(ctx context.Context) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return ErrProbeNotFound
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening probe: %w", err)
	}
	defer func() {
		_ = dev.Close()
	}()
	verbose := console.IsVerbose(ctx)
	if verbose {
		console.Printf("sending frame to probe:\n%s\n", hex.Dump(p.request))
	}
	n, err := dev.Write(p.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	time.Sleep(p.responseWait)
	n, err = dev.Read(p.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		console.Printf("read frame from probe:\n%s\n", hex.Dump(p.response))
	}
	return nil
}

func (p *WCHLink) resetBuffers() {
	resetBuffer(p.request)
	resetBuffer(p.response)
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
