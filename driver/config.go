package driver

// Defaults match the reference silicon: a 48 MHz core clock, a 1 MHz
// prescale reference for the input clock divider, and 2000 polling
// iterations per wait point.
const (
	DefaultCoreClock     uint32 = 48_000_000
	DefaultPrescaleRef   uint32 = 1_000_000
	DefaultTimeoutBudget        = 2000

	// StandardModeMax is the highest bus clock still driven in standard
	// mode; anything above switches to fast mode with a 33% duty cycle.
	StandardModeMax uint32 = 100_000
)

type Option func(*Controller)

// WithCoreClock overrides the system core clock the timing dividers are
// derived from.
func WithCoreClock(hz uint32) Option {
	return func(c *Controller) {
		c.coreClock = hz
	}
}

// WithPrescaleRef overrides the internal prescale reference frequency.
func WithPrescaleRef(hz uint32) Option {
	return func(c *Controller) {
		c.prescaleRef = hz
	}
}

// WithTimeoutBudget sets the number of polling iterations each bounded wait
// is allowed before it reports failure.
func WithTimeoutBudget(iterations int) Option {
	return func(c *Controller) {
		c.budget = iterations
	}
}

// Timing describes the values Init derives for a bus clock rate.
type Timing struct {
	FastMode      bool   `yaml:"fast_mode"`
	Divider       uint16 `yaml:"divider"`
	InputClockMHz uint32 `yaml:"input_clock_mhz"`
}

// ComputeTiming reports the timing Init would program for the given core
// clock, prescale reference and bus clock rate.
func ComputeTiming(coreClock, prescaleRef, rate uint32) Timing {
	raw := clockConfig(coreClock, rate)
	return Timing{
		FastMode:      raw&ClockFastMode != 0,
		Divider:       raw & ClockDividerMask,
		InputClockMHz: coreClock / prescaleRef,
	}
}

// clockConfig computes the bus timing register value for the requested bus
// clock: standard mode divides the core clock by twice the rate, fast mode
// by three times the rate with the duty flag set.
func clockConfig(coreClock, rate uint32) uint16 {
	if rate <= StandardModeMax {
		return uint16(coreClock/(2*rate)) & ClockDividerMask
	}
	return uint16(coreClock/(3*rate))&ClockDividerMask | ClockFastMode
}
