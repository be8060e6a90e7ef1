package chipset

import (
	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// MmioHandler handles reads and writes to a memory-mapped register window.
type MmioHandler interface {
	ReadMMIO(ctx hv.ExitContext, addr uint64, data []byte) error
	WriteMMIO(ctx hv.ExitContext, addr uint64, data []byte) error
}

// MmioIntercept describes the MMIO region(s) a device serves and the
// handler for them. SDHC, CCU, and SYSCON each claim exactly one region.
type MmioIntercept struct {
	Regions []hv.MMIORegion
	Handler MmioHandler
}

// LineInterrupt models the single level-sensitive interrupt line a
// register-file peripheral drives. There is no vectored interrupt
// controller in this board model, so a line is just a level signal
// forwarded to whatever the platform wired it to.
type LineInterrupt interface {
	SetLevel(high bool)
	PulseInterrupt()
}

type noopLineInterrupt struct{}

func (noopLineInterrupt) SetLevel(bool)   {}
func (noopLineInterrupt) PulseInterrupt() {}

// LineInterruptDetached returns a LineInterrupt that drops all signals,
// for a device instantiated without a wired-up IRQ line.
func LineInterruptDetached() LineInterrupt {
	return noopLineInterrupt{}
}

// LineInterruptFromFunc adapts a simple level function to LineInterrupt.
func LineInterruptFromFunc(fn func(bool)) LineInterrupt {
	return lineInterruptFunc(fn)
}

type lineInterruptFunc func(bool)

func (f lineInterruptFunc) SetLevel(level bool) {
	if f != nil {
		f(level)
	}
}

func (f lineInterruptFunc) PulseInterrupt() {
	if f != nil {
		f(true)
		f(false)
	}
}

// ChangeDeviceState exposes lifecycle hooks for chipset devices.
type ChangeDeviceState interface {
	Start() error
	Stop() error
	Reset() error
}

// ChipsetDevice is what a register-file peripheral implements to be
// wired onto a Chipset's MMIO dispatch table. There is no port I/O or
// polling concept in this board model, so the interface is limited to
// what SDHC, CCU, and SYSCON actually use.
type ChipsetDevice interface {
	hv.Device
	ChangeDeviceState

	SupportsMmio() *MmioIntercept
}
