package sim

// Device models a peripheral with 256 8-bit registers and the usual
// auto-incrementing register pointer: a write transaction selects the
// pointer with its first byte, and subsequent reads or writes move it
// forward one register at a time.
type Device struct {
	mem     [256]byte
	pointer byte
}

func NewDevice() *Device {
	return &Device{}
}

// Preload stores data starting at register reg, without moving the pointer.
func (d *Device) Preload(reg byte, data ...byte) *Device {
	p := reg
	for _, b := range data {
		d.mem[p] = b
		p++
	}
	return d
}

// Mem returns the current content of register reg.
func (d *Device) Mem(reg byte) byte {
	return d.mem[reg]
}

func (d *Device) selectReg(reg byte) {
	d.pointer = reg
}

func (d *Device) readNext() byte {
	b := d.mem[d.pointer]
	d.pointer++
	return b
}

func (d *Device) writeNext(b byte) {
	d.mem[d.pointer] = b
	d.pointer++
}
