package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/driver"
	"github.com/mklimuk/twowire/sim"
)

func newController(t *testing.T) (*driver.Controller, *sim.Bus) {
	t.Helper()
	bus := sim.NewBus()
	ctl := driver.New(bus, driver.WithTimeoutBudget(16))
	require.NoError(t, ctl.Init(100_000))
	bus.ResetJournal()
	return ctl, bus
}

func TestPing(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x3C, sim.NewDevice())

	assert.NoError(t, ctl.Ping(context.Background(), twowire.Addr(0x3C)))
	assert.ErrorIs(t, ctl.Ping(context.Background(), twowire.Addr(0x42)), twowire.ErrNack)
}

func TestPing_ForcesWriteDirection(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x3C, sim.NewDevice())

	// Direction bit set by the caller must be ignored.
	require.NoError(t, ctl.Ping(context.Background(), twowire.Addr(0x3C)|1))
	assert.Contains(t, bus.Journal(), "addr 0x3c w")
	assert.NotContains(t, bus.Journal(), "addr 0x3c r")
}

func TestPing_ReleasesBusAfterNack(t *testing.T) {
	ctl, bus := newController(t)

	require.ErrorIs(t, ctl.Ping(context.Background(), twowire.Addr(0x42)), twowire.ErrNack)
	journal := bus.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, "stop", journal[len(journal)-1])
}

func TestScan(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x0A, sim.NewDevice())
	bus.Attach(0x3C, sim.NewDevice())
	bus.Attach(0x50, sim.NewDevice())

	found := ctl.Scan(context.Background())
	assert.Equal(t, []byte{twowire.Addr(0x0A), twowire.Addr(0x3C), twowire.Addr(0x50)}, found)

	// Scan reports exactly the set of addresses ping acknowledges.
	for _, addr := range found {
		assert.NoError(t, ctl.Ping(context.Background(), addr))
	}
}

func TestScan_EmptyBus(t *testing.T) {
	ctl, _ := newController(t)
	assert.Empty(t, ctl.Scan(context.Background()))
}

func TestReadReg(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x48, sim.NewDevice().Preload(0x10, 0xDE, 0xAD, 0xBE, 0xEF))

	buf := make([]byte, 4)
	require.NoError(t, ctl.ReadReg(context.Background(), twowire.Addr(0x48), 0x10, buf))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, buf)

	journal := bus.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, "stop", journal[len(journal)-1])
}

func TestReadReg_SingleByte(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x48, sim.NewDevice().Preload(0x00, 0x2A))

	buf := make([]byte, 1)
	require.NoError(t, ctl.ReadReg(context.Background(), twowire.Addr(0x48), 0x00, buf))
	assert.Equal(t, byte(0x2A), buf[0])
}

func TestReadReg_ZeroLength(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x48, sim.NewDevice())

	require.NoError(t, ctl.ReadReg(context.Background(), twowire.Addr(0x48), 0x05, nil))
	journal := bus.Journal()
	assert.Contains(t, journal, "reg 0x05")
	assert.Equal(t, "stop", journal[len(journal)-1])
	assert.NotContains(t, journal, "read 0x00")
}

func TestReadReg_NackBeforeDataPhase(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x48, sim.NewDevice().Preload(0x00, 0x2A))
	bus.NackReads = true

	// The device acknowledges the write-direction phase but drops off
	// before the repeated start: the call must fail without touching the
	// destination buffer.
	buf := []byte{0xFF, 0xFF}
	err := ctl.ReadReg(context.Background(), twowire.Addr(0x48), 0x00, buf)
	require.ErrorIs(t, err, twowire.ErrNack)
	assert.Equal(t, []byte{0xFF, 0xFF}, buf)

	journal := bus.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, "stop", journal[len(journal)-1])
}

func TestWriteReg(t *testing.T) {
	ctl, bus := newController(t)
	dev := bus.Attach(0x68, sim.NewDevice())

	require.NoError(t, ctl.WriteReg(context.Background(), twowire.Addr(0x68), 0x20, []byte{0x01, 0x02, 0x03}))
	assert.Equal(t, byte(0x01), dev.Mem(0x20))
	assert.Equal(t, byte(0x02), dev.Mem(0x21))
	assert.Equal(t, byte(0x03), dev.Mem(0x22))

	// The stop condition comes only after the final byte went out.
	journal := bus.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, []string{"write 0x03", "stop"}, journal[len(journal)-2:])
}

func TestWriteReg_ZeroLength(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x68, sim.NewDevice())

	require.NoError(t, ctl.WriteReg(context.Background(), twowire.Addr(0x68), 0x20, nil))
	journal := bus.Journal()
	assert.Contains(t, journal, "reg 0x20")
	assert.Equal(t, "stop", journal[len(journal)-1])
}

func TestWriteReg_Nack(t *testing.T) {
	ctl, bus := newController(t)

	err := ctl.WriteReg(context.Background(), twowire.Addr(0x42), 0x00, []byte{0x01})
	require.ErrorIs(t, err, twowire.ErrNack)
	journal := bus.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, "stop", journal[len(journal)-1])
}

func TestStuckBusy(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x3C, sim.NewDevice())
	bus.StuckBusy = true

	assert.ErrorIs(t, ctl.Ping(context.Background(), twowire.Addr(0x3C)), twowire.ErrBusTimeout)
	assert.ErrorIs(t, ctl.ReadReg(context.Background(), twowire.Addr(0x3C), 0x00, make([]byte, 1)), twowire.ErrBusTimeout)
	assert.ErrorIs(t, ctl.WriteReg(context.Background(), twowire.Addr(0x3C), 0x00, []byte{0x01}), twowire.ErrBusTimeout)

	// No start condition may be generated when the bus never goes idle.
	assert.NotContains(t, bus.Journal(), "start")
}

func TestDeadBus(t *testing.T) {
	ctl, bus := newController(t)
	bus.Attach(0x3C, sim.NewDevice())
	bus.DeadBus = true

	assert.ErrorIs(t, ctl.Ping(context.Background(), twowire.Addr(0x3C)), twowire.ErrBusTimeout)
}

func TestInit_Idempotent(t *testing.T) {
	bus := sim.NewBus()
	ctl := driver.New(bus)

	require.NoError(t, ctl.Init(400_000))
	ctl2 := bus.Control2()
	clock := bus.ClockConfig()

	require.NoError(t, ctl.Init(400_000))
	assert.Equal(t, ctl2, bus.Control2())
	assert.Equal(t, clock, bus.ClockConfig())
	assert.NotZero(t, bus.Control1()&driver.Ctl1Enable)
}
