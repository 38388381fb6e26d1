package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockConfig(t *testing.T) {
	tests := []struct {
		coreClock uint32
		rate      uint32
		expected  uint16
	}{
		{48_000_000, 100_000, 240},
		{48_000_000, 50_000, 480},
		{48_000_000, 400_000, 40 | ClockFastMode},
		{48_000_000, 1_000_000, 16 | ClockFastMode},
		{24_000_000, 100_000, 120},
		{24_000_000, 400_000, 20 | ClockFastMode},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d@%d", test.rate, test.coreClock), func(t *testing.T) {
			assert.Equal(t, test.expected, clockConfig(test.coreClock, test.rate))
		})
	}
}

func TestClockConfig_ModeBoundary(t *testing.T) {
	// 100 kHz is still standard mode, anything above is fast mode.
	assert.Zero(t, clockConfig(48_000_000, 100_000)&ClockFastMode)
	assert.NotZero(t, clockConfig(48_000_000, 100_001)&ClockFastMode)
}

func TestOptions(t *testing.T) {
	c := New(nil, WithCoreClock(24_000_000), WithPrescaleRef(2_000_000), WithTimeoutBudget(10))
	assert.Equal(t, uint32(24_000_000), c.coreClock)
	assert.Equal(t, uint32(2_000_000), c.prescaleRef)
	assert.Equal(t, 10, c.budget)
}

func TestDefaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, DefaultCoreClock, c.coreClock)
	assert.Equal(t, DefaultPrescaleRef, c.prescaleRef)
	assert.Equal(t, DefaultTimeoutBudget, c.budget)
}
