package driver

// Registers is the control/status/data surface of the bus controller
// peripheral. The state machine in Controller only ever touches the hardware
// through this interface, so the same engine runs against memory-mapped
// silicon (see package probe) or a simulated register file (see package sim).
//
// Status words follow the usual two-register split of this controller
// family: status word 1 carries the transfer flags, status word 2 the bus
// and mode flags.
type Registers interface {
	Status1() uint16
	Status2() uint16

	Control1() uint16
	SetControl1(mask uint16)
	ClearControl1(mask uint16)

	Control2() uint16
	WriteControl2(value uint16)

	// WriteClockConfig sets the bus timing register (divider + mode bits).
	WriteClockConfig(value uint16)

	WriteData(b byte)
	ReadData() byte

	// One-time setup hooks. These correspond to the straight-line
	// configuration the controller needs before it can be enabled: clock
	// gating for the peripheral and its port, the two lines muxed as
	// open-drain alternate-function outputs, and a reset pulse to bring
	// the register file to its power-on state.
	EnableClocks()
	ConfigurePins()
	PulseReset()
}

// Control word 1 bits.
const (
	Ctl1Enable uint16 = 1 << 0  // peripheral enable
	Ctl1Start  uint16 = 1 << 8  // generate start condition
	Ctl1Stop   uint16 = 1 << 9  // generate stop condition
	Ctl1Ack    uint16 = 1 << 10 // acknowledge received bytes
)

// Status word 1 bits.
const (
	Sta1StartSent  uint16 = 1 << 0 // start condition generated
	Sta1AddrSent   uint16 = 1 << 1 // address phase complete
	Sta1ByteDone   uint16 = 1 << 2 // byte transfer finished (incl. ack bit)
	Sta1RxNotEmpty uint16 = 1 << 6 // receive data register holds a byte
	Sta1TxEmpty    uint16 = 1 << 7 // transmit data register free
)

// Status word 2 bits.
const (
	Sta2MasterMode   uint16 = 1 << 0 // controller is bus master
	Sta2Busy         uint16 = 1 << 1 // bus busy
	Sta2Transmitting uint16 = 1 << 2 // data direction is outbound
)

// Control word 2 and clock config fields.
const (
	Ctl2FreqMask     uint16 = 0x003F // input clock divider, MHz
	ClockDividerMask uint16 = 0x0FFF // bus timing divider
	ClockFastMode    uint16 = 1 << 15
)

// Master events, as the silicon documents them: status word 2 in the high
// half, status word 1 in the low half. An event has occurred when all of its
// bits are set at once.
const (
	EvMasterModeSelected  uint32 = 0x0003_0001 // busy, master | start sent
	EvTransmitterSelected uint32 = 0x0007_0082 // busy, master, tx | addr sent, tx empty
	EvReceiverSelected    uint32 = 0x0003_0002 // busy, master | addr sent
	EvByteTransmitted     uint32 = 0x0007_0084 // busy, master, tx | byte done, tx empty
)
