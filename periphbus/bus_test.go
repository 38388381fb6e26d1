package periphbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/driver"
	"github.com/mklimuk/twowire/sim"
)

func newBus(t *testing.T) (*Bus, *sim.Bus) {
	t.Helper()
	regs := sim.NewBus()
	ctl := driver.New(regs, driver.WithTimeoutBudget(16))
	require.NoError(t, ctl.Init(100_000))
	return New("twowire0", ctl), regs
}

func TestBus_TxMapping(t *testing.T) {
	bus, regs := newBus(t)
	dev := regs.Attach(0x48, sim.NewDevice().Preload(0x01, 0x7F))

	// Empty transfer is a probe.
	assert.NoError(t, bus.Tx(0x48, nil, nil))
	assert.ErrorIs(t, bus.Tx(0x42, nil, nil), twowire.ErrNack)

	// One-byte write + read is a register read.
	r := make([]byte, 1)
	require.NoError(t, bus.Tx(0x48, []byte{0x01}, r))
	assert.Equal(t, byte(0x7F), r[0])

	// Multi-byte write is a register write.
	require.NoError(t, bus.Tx(0x48, []byte{0x10, 0xAA}, nil))
	assert.Equal(t, byte(0xAA), dev.Mem(0x10))

	// Plain reads cannot be expressed as a register transaction.
	assert.ErrorIs(t, bus.Tx(0x48, nil, r), twowire.ErrRawTransferUnsupported)
	assert.ErrorIs(t, bus.Tx(0x48, []byte{0x01, 0x02}, r), twowire.ErrRawTransferUnsupported)
}

func TestBus_SetSpeed(t *testing.T) {
	bus, regs := newBus(t)

	require.NoError(t, bus.SetSpeed(400*physic.KiloHertz))
	assert.NotZero(t, regs.ClockConfig()&driver.ClockFastMode)

	require.NoError(t, bus.SetSpeed(100*physic.KiloHertz))
	assert.Zero(t, regs.ClockConfig()&driver.ClockFastMode)

	assert.Error(t, bus.SetSpeed(0))
}

func TestBus_String(t *testing.T) {
	bus, _ := newBus(t)
	assert.Equal(t, "twowire0", bus.String())
}
