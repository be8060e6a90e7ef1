package chipset

import (
	"fmt"

	"github.com/sdhcore/ah3sdhc/internal/hv"
)

type mmioBinding struct {
	region  hv.MMIORegion
	handler MmioHandler
}

// ChipsetBuilder accumulates the MMIO-mapped devices for a run before
// Build fixes the dispatch table. This board has three fixed-address
// peripherals (SDHC, CCU, SYSCON) rather than an open-ended device
// catalog, so registration only needs to track MMIO regions and each
// device's lifecycle hooks.
type ChipsetBuilder struct {
	mmio    []mmioBinding
	devices []ChipsetDevice
}

// NewBuilder returns an empty ChipsetBuilder.
func NewBuilder() *ChipsetBuilder {
	return &ChipsetBuilder{}
}

// RegisterDevice adds a chipset device and claims its MMIO region.
func (b *ChipsetBuilder) RegisterDevice(dev ChipsetDevice) error {
	if dev == nil {
		return fmt.Errorf("chipset: device is nil")
	}

	intercept := dev.SupportsMmio()
	if intercept == nil || intercept.Handler == nil {
		return fmt.Errorf("chipset: device provided no MMIO handler")
	}
	for _, region := range intercept.Regions {
		if err := b.WithMmioRegion(region.Address, region.Size, intercept.Handler); err != nil {
			return err
		}
	}

	b.devices = append(b.devices, dev)
	return nil
}

// WithMmioRegion registers a memory-mapped region handler directly,
// rejecting a region that overlaps one already claimed.
func (b *ChipsetBuilder) WithMmioRegion(base, size uint64, handler MmioHandler) error {
	if handler == nil {
		return fmt.Errorf("MMIO handler for region 0x%x size 0x%x is nil", base, size)
	}
	if size == 0 {
		return fmt.Errorf("MMIO region at 0x%x has zero size", base)
	}
	if base+size < base {
		return fmt.Errorf("MMIO region at 0x%x with size 0x%x overflows", base, size)
	}
	for _, existing := range b.mmio {
		if regionsOverlap(base, size, existing.region.Address, existing.region.Size) {
			return fmt.Errorf(
				"MMIO region 0x%x-0x%x overlaps existing region 0x%x-0x%x",
				base, base+size-1, existing.region.Address, existing.region.Address+existing.region.Size-1)
		}
	}

	b.mmio = append(b.mmio, mmioBinding{
		region:  hv.MMIORegion{Address: base, Size: size},
		handler: handler,
	})
	return nil
}

// Build finalizes the chipset layout and returns the constructed Chipset.
func (b *ChipsetBuilder) Build() (*Chipset, error) {
	mmio := make([]mmioBinding, len(b.mmio))
	copy(mmio, b.mmio)

	devices := make([]ChipsetDevice, len(b.devices))
	copy(devices, b.devices)

	return &Chipset{mmio: mmio, devices: devices}, nil
}

func regionsOverlap(baseA, sizeA, baseB, sizeB uint64) bool {
	endA := baseA + sizeA
	endB := baseB + sizeB
	return baseA < endB && baseB < endA
}

// Chipset is the finalized MMIO dispatch table for the SDHC core and
// its CCU/SYSCON companions.
type Chipset struct {
	mmio    []mmioBinding
	devices []ChipsetDevice
}
