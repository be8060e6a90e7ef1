// Package syscon models the Allwinner H3 System Controller: a small
// register file alongside the SDHC core, included for the same
// register-file-shaped-companion reason as internal/ccu.
package syscon

import (
	"encoding/binary"
	"sync"

	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/guestlog"
	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// Register offsets.
const (
	RegVER        = 0x24
	RegEMACPHYClk = 0x30

	// MMIOSize is the fixed window this device occupies.
	MMIOSize = 4096
)

// Reset values.
const (
	resetVER        = 0x00000000
	resetEMACPHYClk = 0x00058000
)

// isKnownOffset reports whether offset names one of this device's two
// addressable registers. Anything else is a guest error (§7's policy),
// applied here the same way it is in the SDHC core.
func isKnownOffset(offset uint64) bool {
	switch offset {
	case RegVER, RegEMACPHYClk:
		return true
	default:
		return false
	}
}

// Device is the SYSCON register file.
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
		errLog: guestlog.New("syscon"),
	}
	d.resetLocked()
	return d
}

func (d *Device) resetLocked() {
	d.regs = map[uint64]uint32{
		RegVER:        resetVER,
		RegEMACPHYClk: resetEMACPHYClk,
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
// register table logs a guest-error and reads as 0.
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

// WriteMMIO implements chipset.MmioHandler. VER is write-ignored, every
// other known offset is plain storage, and anything outside the
// register table logs a guest-error and is dropped.
func (d *Device) WriteMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	offset := addr - d.base

	d.mu.Lock()
	defer d.mu.Unlock()
	if !isKnownOffset(offset) {
		d.errLog.BadOffset(offset, "write")
		return nil
	}
	if offset == RegVER {
		return nil
	}
	d.regs[offset] = binary.LittleEndian.Uint32(data)
	return nil
}

var (
	_ hv.Device             = (*Device)(nil)
	_ chipset.ChipsetDevice = (*Device)(nil)
	_ chipset.MmioHandler   = (*Device)(nil)
)
