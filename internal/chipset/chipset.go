package chipset

import (
	"fmt"

	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// Start activates all registered devices, in registration order.
func (c *Chipset) Start() error {
	for _, dev := range c.devices {
		if err := dev.Start(); err != nil {
			return fmt.Errorf("chipset: start: %w", err)
		}
	}
	return nil
}

// Stop deactivates all registered devices, in registration order.
func (c *Chipset) Stop() error {
	for _, dev := range c.devices {
		if err := dev.Stop(); err != nil {
			return fmt.Errorf("chipset: stop: %w", err)
		}
	}
	return nil
}

// Reset resets all registered devices, in registration order.
func (c *Chipset) Reset() error {
	for _, dev := range c.devices {
		if err := dev.Reset(); err != nil {
			return fmt.Errorf("chipset: reset: %w", err)
		}
	}
	return nil
}

// HandleMMIO dispatches an MMIO access to whichever registered region
// contains addr.
func (c *Chipset) HandleMMIO(ctx hv.ExitContext, addr uint64, data []byte, isWrite bool) error {
	accessEnd := addr + uint64(len(data))
	if accessEnd < addr {
		return fmt.Errorf("chipset: MMIO access overflow at 0x%016x", addr)
	}

	for _, binding := range c.mmio {
		start := binding.region.Address
		end := start + binding.region.Size
		if addr >= start && accessEnd <= end {
			if isWrite {
				return binding.handler.WriteMMIO(ctx, addr, data)
			}
			return binding.handler.ReadMMIO(ctx, addr, data)
		}
	}

	return fmt.Errorf("chipset: no handler for MMIO address 0x%016x", addr)
}
