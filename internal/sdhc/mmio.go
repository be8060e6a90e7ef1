package sdhc

import (
	"encoding/binary"
	"fmt"

	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// ReadMMIO implements chipset.MmioHandler. It serves naturally-aligned
// 32-bit accesses only (§4.1); anything else is a bounds/size error
// the caller should never produce in practice, since the surrounding
// bus layer is responsible for refusing unaligned and non-32-bit
// accesses before they reach a device.
func (d *Device) ReadMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	offset, err := d.checkedOffset(addr, len(data))
	if err != nil {
		return err
	}

	d.mu.Lock()
	value := d.readRegisterLocked(offset)
	d.mu.Unlock()

	binary.LittleEndian.PutUint32(data, value)
	return nil
}

// WriteMMIO implements chipset.MmioHandler.
func (d *Device) WriteMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	offset, err := d.checkedOffset(addr, len(data))
	if err != nil {
		return err
	}
	value := binary.LittleEndian.Uint32(data)

	d.mu.Lock()
	d.applyWriteLocked(offset, value)
	d.mu.Unlock()
	return nil
}

func (d *Device) checkedOffset(addr uint64, length int) (uint64, error) {
	if addr < d.base || addr+uint64(length) > d.base+d.size {
		return 0, fmt.Errorf("sdhc: address 0x%x out of bounds", addr)
	}
	if length != 4 {
		d.errLog.badAccessSize(addr-d.base, length)
		return 0, fmt.Errorf("sdhc: unsupported access size %d at 0x%x", length, addr)
	}
	return addr - d.base, nil
}

// readRegisterLocked dispatches a 32-bit register read by offset,
// per §4.1's table. Unrecognized offsets log a guest-error and read
// as 0.
func (d *Device) readRegisterLocked(offset uint64) uint32 {
	switch offset {
	case RegGCTL:
		return d.globalCtl
	case RegCKCR:
		return d.clockCtl
	case RegTMOR:
		return d.timeout
	case RegBWDR:
		return d.busWidth
	case RegBKSR:
		return d.blockSize
	case RegBYCR:
		return d.byteCount
	case RegCMDR:
		return d.command
	case RegCAGR:
		return d.commandArg
	case RegRESP0:
		return d.response[0]
	case RegRESP1:
		return d.response[1]
	case RegRESP2:
		return d.response[2]
	case RegRESP3:
		return d.response[3]
	case RegIMKR:
		return d.irqMask
	case RegMISR:
		return d.irqStatus & d.irqMask
	case RegRISR:
		return d.irqStatus
	case RegSTAR:
		return d.status
	case RegFWLR:
		return d.fifoWLevel
	case RegFUNS:
		return d.fifoFuncSel
	case RegDBGC:
		return d.debugEnable
	case RegA12A:
		return d.auto12Arg
	case RegNTSR:
		return d.newTiming
	case RegSDBG:
		return d.newTimingDbg
	case RegHWRST:
		return d.hardwareRst
	case RegDMAC:
		return d.dmac
	case RegDLBA:
		return d.descBase
	case RegIDST:
		return d.dmacStatus
	case RegIDIE:
		return d.dmacIRQ
	case RegTHLDC:
		return d.cardThold
	case RegDSBD:
		return d.ddrStartBit
	case RegResponseCRC:
		return d.responseCRC
	case RegData7CRC, RegData6CRC, RegData5CRC, RegData4CRC,
		RegData3CRC, RegData2CRC, RegData1CRC, RegData0CRC:
		return d.dataCRC[crcIndex(offset)]
	case RegStatusCRC:
		return d.statusCRC
	case RegFIFO:
		return d.readFIFOLocked()
	default:
		d.errLog.badOffset(offset, "read")
		return 0
	}
}

// applyWriteLocked stores value at offset and runs whatever side
// effect the write table (§4.1) attaches to that register: GCTL's
// reset strobes self-clear, CMDR's LOAD bit triggers the command and
// DMA pipeline, and the W1C registers (MISR/RISR/STAR/IDST) clear
// bits rather than overwrite them.
func (d *Device) applyWriteLocked(offset uint64, value uint32) {
	switch offset {
	case RegGCTL:
		d.globalCtl = value &^ gctlSelfClearMask
		d.updateInterruptLocked()
	case RegCKCR:
		d.clockCtl = value
	case RegTMOR:
		d.timeout = value
	case RegBWDR:
		d.busWidth = value
	case RegBKSR:
		d.blockSize = value
	case RegBYCR:
		d.byteCount = value
		d.transferCnt = value
	case RegCMDR:
		d.command = value
		if value&CMDRLoad != 0 {
			d.dispatchCommandLocked()
			d.runDMALocked()
			d.autoStopLocked()
		}
		d.updateInterruptLocked()
	case RegCAGR:
		d.commandArg = value
	case RegRESP0:
		d.response[0] = value
	case RegRESP1:
		d.response[1] = value
	case RegRESP2:
		d.response[2] = value
	case RegRESP3:
		d.response[3] = value
	case RegIMKR:
		d.irqMask = value
		d.updateInterruptLocked()
	case RegMISR, RegRISR:
		d.irqStatus &^= value
		d.updateInterruptLocked()
	case RegSTAR:
		d.status &^= value
		d.updateInterruptLocked()
	case RegFWLR:
		d.fifoWLevel = value
	case RegFUNS:
		d.fifoFuncSel = value
	case RegDBGC:
		d.debugEnable = value
	case RegA12A:
		d.auto12Arg = value
	case RegNTSR:
		d.newTiming = value
	case RegSDBG:
		d.newTimingDbg = value
	case RegHWRST:
		d.hardwareRst = value
	case RegDMAC:
		d.dmac = value
		d.updateInterruptLocked()
	case RegDLBA:
		d.descBase = value
	case RegIDST:
		// W1C under mask 0x3FF (§9's open question): clear only the
		// bits set in value within the write mask, leave the rest
		// (and anything outside the mask) untouched.
		d.dmacStatus &^= value & idstWriteMask
		d.updateInterruptLocked()
	case RegIDIE:
		d.dmacIRQ = value
		d.updateInterruptLocked()
	case RegTHLDC:
		d.cardThold = value
	case RegDSBD:
		d.ddrStartBit = value
	case RegResponseCRC, RegData7CRC, RegData6CRC, RegData5CRC, RegData4CRC,
		RegData3CRC, RegData2CRC, RegData1CRC, RegData0CRC, RegStatusCRC:
		// CRC family: writes ignored, per §4.1.
	case RegFIFO:
		d.writeFIFOLocked(value)
	default:
		d.errLog.badOffset(offset, "write")
	}
}

func crcIndex(offset uint64) int {
	return int((offset - RegData7CRC) / 4)
}
