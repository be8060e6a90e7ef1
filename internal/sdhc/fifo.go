package sdhc

import "encoding/binary"

// readFIFOLocked implements the PIO FIFO read path (§4.6). With no
// data ready this is a guest-misuse condition: log and return 0
// without touching any state, rather than blocking or erroring.
func (d *Device) readFIFOLocked() uint32 {
	if !d.bus.DataReady() {
		d.errLog.fifoNotReady()
		return 0
	}

	var buf [4]byte
	for i := range buf {
		buf[i] = d.bus.ReadByte()
	}
	value := binary.LittleEndian.Uint32(buf[:])

	d.updateTransferCountLocked(4)
	d.autoStopLocked()
	d.updateInterruptLocked()
	return value
}

// writeFIFOLocked implements the PIO FIFO write path (§4.6):
// unconditional, unlike the read side — the guest is always allowed to
// push bytes toward the card.
func (d *Device) writeFIFOLocked(value uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	for _, b := range buf {
		d.bus.WriteByte(b)
	}

	d.updateTransferCountLocked(4)
	d.autoStopLocked()
	d.updateInterruptLocked()
}
