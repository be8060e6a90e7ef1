// Package config loads the device-layout configuration for a run of
// the SDHC core and its register-file companions: base addresses, IRQ
// lines, and the backing card image, read from a YAML file the way
// site-config.yml is loaded for the wider platform.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sdhcore/ah3sdhc/internal/ccu"
	"github.com/sdhcore/ah3sdhc/internal/hv"
	"github.com/sdhcore/ah3sdhc/internal/sdhc"
	"github.com/sdhcore/ah3sdhc/internal/syscon"
)

// Device describes one memory-mapped peripheral's placement in the
// guest address space. Size defaults to the peripheral's own register
// footprint (see deviceSize) when left at zero, so existing layouts
// that never set it keep working.
type Device struct {
	Base    uint64 `yaml:"base"`
	Size    uint64 `yaml:"size"`
	IRQLine uint32 `yaml:"irq_line"`

	// DescriptorChainLimit overrides the SDHC core's DMA descriptor
	// walk cap (sdhc.DefaultMaxDescriptorChain) when non-zero. Ignored
	// by the ccu and syscon slots, which have no DMA engine.
	DescriptorChainLimit int `yaml:"descriptor_chain_limit"`
}

// footprint reports the minimum MMIO window a device's own register
// file requires, keyed by the same name Validate's placements table
// uses.
func footprint(name string) uint64 {
	switch name {
	case "sdhc":
		return sdhc.MMIOSize
	case "ccu":
		return ccu.MMIOSize
	case "syscon":
		return syscon.MMIOSize
	default:
		return 0
	}
}

// Card describes the backing storage for the virtual SD card behind
// the host controller.
type Card struct {
	Image    string `yaml:"image"`
	Size     int64  `yaml:"size"`
	ReadOnly bool   `yaml:"read_only"`
}

// Config is the top-level document cmd/sdhcinspect and cmd/sdhcreplay
// both load to assemble a device layout.
type Config struct {
	SDHC   Device `yaml:"sdhc"`
	CCU    Device `yaml:"ccu"`
	Syscon Device `yaml:"syscon"`
	Card   Card   `yaml:"card"`
}

// Load reads and parses a Config from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the three device placements don't overlap and
// that a card image was specified. The overlap check is delegated to
// hv.AddressSpace rather than a hand-rolled pairwise loop, the same
// fixed-region bookkeeping a board wiring uses to reject a datasheet
// layout that doesn't actually fit together.
func (c Config) Validate() error {
	if c.Card.Image == "" {
		return fmt.Errorf("card.image is required")
	}
	if c.Card.Size <= 0 {
		return fmt.Errorf("card.size must be positive")
	}

	addrs := hv.NewAddressSpace(hv.ArchitectureARM64, 0, 0)
	placements := []struct {
		name string
		base uint64
		size uint64
	}{
		{"sdhc", c.SDHC.Base, deviceSize(c.SDHC, "sdhc")},
		{"ccu", c.CCU.Base, deviceSize(c.CCU, "ccu")},
		{"syscon", c.Syscon.Base, deviceSize(c.Syscon, "syscon")},
	}
	for _, p := range placements {
		if p.base == 0 {
			return fmt.Errorf("%s.base must not be zero", p.name)
		}
		if p.size < footprint(p.name) {
			return fmt.Errorf("%s.size (%d) is smaller than the register file's footprint (%d)",
				p.name, p.size, footprint(p.name))
		}
		if err := addrs.RegisterFixed(p.name, p.base, p.size); err != nil {
			return err
		}
	}
	return nil
}

// deviceSize returns d.Size, defaulting to the named peripheral's own
// register footprint when the layout left it unset.
func deviceSize(d Device, name string) uint64 {
	if d.Size != 0 {
		return d.Size
	}
	return footprint(name)
}
