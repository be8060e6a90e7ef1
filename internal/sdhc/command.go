package sdhc

import (
	"encoding/binary"

	"github.com/sdhcore/ah3sdhc/internal/sdbus"
)

// dispatchCommandLocked implements the Command Engine's on-LOAD
// sequence (§4.4). The LOAD bit is always cleared first — a command
// load is a one-shot strobe, never readable back as set. A CLKCHANGE
// command never touches the bus at all; everything else is built into
// an sdbus.Request and submitted, with the response (if any) unpacked
// into the four response registers.
func (d *Device) dispatchCommandLocked() {
	d.command &^= CMDRLoad

	if d.command&CMDRClkChange == 0 {
		req := sdbus.Request{
			Cmd: uint8(d.command & CMDRCommandIDMask),
			Arg: d.commandArg,
		}
		resp, err := d.bus.SubmitCommand(req)
		if err != nil {
			d.irqStatus |= RISRNoResponse
			return
		}
		if d.command&CMDRResponse != 0 {
			if !d.storeResponseLocked(resp) {
				d.irqStatus |= RISRNoResponse
				return
			}
		}
	}

	d.irqStatus |= RISRCmdComplete
}

// storeResponseLocked validates the response length against the
// RESPONSE_LONG bit and, on success, unpacks the big-endian wire bytes
// into the little-endian response registers (§4.4). Returns false on
// any length mismatch, leaving the response registers untouched.
func (d *Device) storeResponseLocked(resp []byte) bool {
	long := d.command&CMDRResponseLong != 0

	switch {
	case len(resp) == 0:
		d.errLog.responseMismatch(uint8(d.command&CMDRCommandIDMask), len(resp))
		return false
	case long && len(resp) != 16:
		d.errLog.responseMismatch(uint8(d.command&CMDRCommandIDMask), len(resp))
		return false
	case !long && len(resp) != 4:
		d.errLog.responseMismatch(uint8(d.command&CMDRCommandIDMask), len(resp))
		return false
	}

	if len(resp) == 4 {
		d.response[0] = binary.BigEndian.Uint32(resp[0:4])
		d.response[1] = 0
		d.response[2] = 0
		d.response[3] = 0
		return true
	}

	// Long (16-byte) response: words land in reverse wire order.
	d.response[0] = binary.BigEndian.Uint32(resp[12:16])
	d.response[1] = binary.BigEndian.Uint32(resp[8:12])
	d.response[2] = binary.BigEndian.Uint32(resp[4:8])
	d.response[3] = binary.BigEndian.Uint32(resp[0:4])
	return true
}

// autoStopLocked implements §4.4's automatic CMD12 injection: once a
// multi-block transfer's residual count reaches zero, a STOP_TRANSMISSION
// is issued on the guest's behalf, using the stack to save and restore
// command/command_arg rather than any shared lock — auto-stop re-enters
// the same dispatch path it was called from.
func (d *Device) autoStopLocked() {
	if d.command&CMDRAutoStop == 0 || d.transferCnt != 0 {
		return
	}

	savedCommand := d.command
	savedArg := d.commandArg

	d.command = (d.command &^ CMDRCommandIDMask) | 12
	d.commandArg = 0
	d.dispatchCommandLocked()

	d.command = savedCommand
	d.commandArg = savedArg
}
