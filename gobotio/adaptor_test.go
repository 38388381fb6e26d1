package gobotio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/twowire"
	"github.com/mklimuk/twowire/driver"
	"github.com/mklimuk/twowire/sim"
)

func newAdaptor(t *testing.T) (*Adaptor, *sim.Bus) {
	t.Helper()
	bus := sim.NewBus()
	ctl := driver.New(bus, driver.WithTimeoutBudget(16))
	require.NoError(t, ctl.Init(100_000))
	return NewAdaptor(ctl), bus
}

func TestAdaptor_GetI2cConnection(t *testing.T) {
	a, _ := newAdaptor(t)

	_, err := a.GetI2cConnection(0x48, 0)
	assert.NoError(t, err)
	_, err = a.GetI2cConnection(0x48, 3)
	assert.Error(t, err)
	_, err = a.GetI2cConnection(0x180, 0)
	assert.Error(t, err)
}

func TestConnection_RegisterData(t *testing.T) {
	a, bus := newAdaptor(t)
	dev := bus.Attach(0x48, sim.NewDevice().Preload(0x02, 0x34, 0x12))

	conn, err := a.GetI2cConnection(0x48, 0)
	require.NoError(t, err)

	word, err := conn.ReadWordData(0x02)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), word)

	require.NoError(t, conn.WriteByteData(0x10, 0xAB))
	assert.Equal(t, byte(0xAB), dev.Mem(0x10))

	require.NoError(t, conn.WriteWordData(0x20, 0xBEEF))
	assert.Equal(t, byte(0xEF), dev.Mem(0x20))
	assert.Equal(t, byte(0xBE), dev.Mem(0x21))

	block := make([]byte, 2)
	require.NoError(t, conn.ReadBlockData(0x20, block))
	assert.Equal(t, []byte{0xEF, 0xBE}, block)
}

func TestConnection_RawTransfersRejected(t *testing.T) {
	a, bus := newAdaptor(t)
	bus.Attach(0x48, sim.NewDevice())

	conn, err := a.GetI2cConnection(0x48, 0)
	require.NoError(t, err)

	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, twowire.ErrRawTransferUnsupported)
	_, err = conn.ReadByte()
	assert.ErrorIs(t, err, twowire.ErrRawTransferUnsupported)
}

func TestConnection_WriteFrame(t *testing.T) {
	a, bus := newAdaptor(t)
	dev := bus.Attach(0x68, sim.NewDevice())

	conn, err := a.GetI2cConnection(0x68, 0)
	require.NoError(t, err)

	n, err := conn.Write([]byte{0x05, 0x11, 0x22})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, byte(0x11), dev.Mem(0x05))
	assert.Equal(t, byte(0x22), dev.Mem(0x06))
}
