// Package ccu models the Allwinner H3 Clock Control Unit: a flat
// register-file peripheral that the SDHC core runs alongside in the
// same device layout but never talks to directly. It is included as a
// register-file-shaped companion — same MMIO decode shape as sdhc, far
// simpler semantics.
package ccu

import (
	"encoding/binary"
	"sync"

	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/guestlog"
	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// Register offsets, in bytes from the base of the MMIO window.
const (
	RegPLLCPUX        = 0x0000
	RegPLLAudio       = 0x0008
	RegPLLVideo       = 0x0010
	RegPLLVE          = 0x0018
	RegPLLDDR         = 0x0020
	RegPLLPeriph0     = 0x0028
	RegPLLGPU         = 0x0038
	RegPLLPeriph1     = 0x0044
	RegPLLDE          = 0x0048
	RegCPUXAXI        = 0x0050
	RegAPB1           = 0x0054
	RegAPB2           = 0x0058
	RegMBUS           = 0x00FC
	RegPLLTime0       = 0x0200
	RegPLLTime1       = 0x0204
	RegPLLCPUXBias    = 0x0220
	RegPLLAudioBias   = 0x0224
	RegPLLVideoBias   = 0x0228
	RegPLLVEBias      = 0x022C
	RegPLLDDRBias     = 0x0230
	RegPLLPeriph0Bias = 0x0234
	RegPLLGPUBias     = 0x023C
	RegPLLPeriph1Bias = 0x0244
	RegPLLDEBias      = 0x0248
	RegPLLCPUXTuning  = 0x0250
	RegPLLDDRTuning   = 0x0260

	// MMIOSize is the fixed window this device occupies.
	MMIOSize = 1024
)

// PLL register flags.
const (
	PLLEnable = 1 << 31
	PLLLock   = 1 << 28
)

// isPLLControl reports whether offset names one of the PLL control
// registers subject to the ENABLE->LOCK invariant, as opposed to a
// bias/tuning/bus-config register that is plain storage.
func isPLLControl(offset uint64) bool {
	switch offset {
	case RegPLLCPUX, RegPLLAudio, RegPLLVideo, RegPLLVE, RegPLLDDR,
		RegPLLPeriph0, RegPLLGPU, RegPLLPeriph1, RegPLLDE:
		return true
	default:
		return false
	}
}

// isKnownOffset reports whether offset names one of this device's
// addressable registers. Anything else is a guest error (§7's policy,
// applied here the same way it is in the SDHC core).
func isKnownOffset(offset uint64) bool {
	switch offset {
	case RegPLLCPUX, RegPLLAudio, RegPLLVideo, RegPLLVE, RegPLLDDR,
		RegPLLPeriph0, RegPLLGPU, RegPLLPeriph1, RegPLLDE,
		RegCPUXAXI, RegAPB1, RegAPB2, RegMBUS,
		RegPLLTime0, RegPLLTime1,
		RegPLLCPUXBias, RegPLLAudioBias, RegPLLVideoBias, RegPLLVEBias, RegPLLDDRBias,
		RegPLLPeriph0Bias, RegPLLGPUBias, RegPLLPeriph1Bias, RegPLLDEBias,
		RegPLLCPUXTuning, RegPLLDDRTuning:
		return true
	default:
		return false
	}
}

// Device is the CCU register file. Unlike sdhc.Device it has no
// side-effecting operations beyond the PLL lock invariant: reads and
// writes are otherwise plain array storage.
type Device struct {
	mu sync.Mutex

	base uint64
	size uint64

	regs   map[uint64]uint32
	errLog *guestlog.Log
}

// Config collects construction-time parameters for a Device.
type Config struct {
	Base uint64
}

// New creates a Device at its reset values.
func New(cfg Config) *Device {
	d := &Device{
		base:   cfg.Base,
		size:   MMIOSize,
		regs:   make(map[uint64]uint32),
		errLog: guestlog.New("ccu"),
	}
	d.resetLocked()
	return d
}

func (d *Device) resetLocked() {
	d.regs = map[uint64]uint32{
		RegPLLCPUX:        0x00001000,
		RegPLLAudio:       0x00035514,
		RegPLLVideo:       0x03006207,
		RegPLLVE:          0x03006207,
		RegPLLDDR:         0x00001000,
		RegPLLPeriph0:     0x00041811,
		RegPLLGPU:         0x03006207,
		RegPLLPeriph1:     0x00041811,
		RegPLLDE:          0x03006207,
		RegCPUXAXI:        0x00010000,
		RegAPB1:           0x00001010,
		RegAPB2:           0x01000000,
		RegMBUS:           0x80000000,
		RegPLLTime0:       0x000000FF,
		RegPLLTime1:       0x000000FF,
		RegPLLCPUXBias:    0x08100200,
		RegPLLAudioBias:   0x10100000,
		RegPLLVideoBias:   0x10100000,
		RegPLLVEBias:      0x10100000,
		RegPLLDDRBias:     0x81104000,
		RegPLLPeriph0Bias: 0x10100010,
		RegPLLGPUBias:     0x10100000,
		RegPLLPeriph1Bias: 0x10100010,
		RegPLLDEBias:      0x10100000,
		RegPLLCPUXTuning:  0x0A101000,
		RegPLLDDRTuning:   0x14880000,
	}
}

// Init implements hv.Device.
func (d *Device) Init(vm hv.VirtualMachine) error { return nil }

// Start, Stop, Reset implement chipset.ChangeDeviceState.
func (d *Device) Start() error { return nil }
func (d *Device) Stop() error  { return nil }
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	return nil
}

// SupportsMmio implements chipset.ChipsetDevice.
func (d *Device) SupportsMmio() *chipset.MmioIntercept {
	return &chipset.MmioIntercept{
		Regions: []hv.MMIORegion{{Address: d.base, Size: d.size}},
		Handler: d,
	}
}

// ReadMMIO implements chipset.MmioHandler. An offset outside the
// register table logs a guest-error and reads as 0, matching the
// core's own unrecognized-offset policy.
func (d *Device) ReadMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	offset := addr - d.base
	d.mu.Lock()
	defer d.mu.Unlock()
	if !isKnownOffset(offset) {
		d.errLog.BadOffset(offset, "read")
		binary.LittleEndian.PutUint32(data, 0)
		return nil
	}
	binary.LittleEndian.PutUint32(data, d.regs[offset])
	return nil
}

// WriteMMIO implements chipset.MmioHandler. A write to a PLL control
// register that sets ENABLE also sets LOCK in the same write, per the
// invariant every PLL/clock-family register obeys once its ENABLE bit
// is set. An offset outside the register table logs a guest-error and
// is otherwise dropped.
func (d *Device) WriteMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	offset := addr - d.base
	value := binary.LittleEndian.Uint32(data)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !isKnownOffset(offset) {
		d.errLog.BadOffset(offset, "write")
		return nil
	}
	if isPLLControl(offset) && value&PLLEnable != 0 {
		value |= PLLLock
	}
	d.regs[offset] = value
	return nil
}

var (
	_ hv.Device             = (*Device)(nil)
	_ chipset.ChipsetDevice = (*Device)(nil)
	_ chipset.MmioHandler   = (*Device)(nil)
)
