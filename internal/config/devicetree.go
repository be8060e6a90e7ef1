package config

import (
	"fmt"

	"github.com/sdhcore/ah3sdhc/internal/fdt"
)

// DeviceTree renders the device layout as a flattened device tree,
// the same node shape a real board's DTB would carry for the SDHC
// core and its register-file companions.
func (c Config) DeviceTree() fdt.Node {
	return fdt.Node{
		Name: "",
		Properties: map[string]fdt.Property{
			"#address-cells": {U32: []uint32{1}},
			"#size-cells":    {U32: []uint32{1}},
			"model":          {Strings: []string{"sdhcore,ah3-sdhc-standalone"}},
			"compatible":     {Strings: []string{"allwinner,sun8i-h3"}},
		},
		Children: []fdt.Node{
			{
				Name: nodeName("mmc", c.SDHC.Base),
				Properties: map[string]fdt.Property{
					"compatible": {Strings: []string{"allwinner,sun50i-a64-mmc"}},
					"reg":        {U64: []uint64{c.SDHC.Base, deviceSize(c.SDHC, "sdhc")}},
					"interrupts": {U32: []uint32{c.SDHC.IRQLine}},
				},
			},
			{
				Name: nodeName("clock-controller", c.CCU.Base),
				Properties: map[string]fdt.Property{
					"compatible": {Strings: []string{"allwinner,sun8i-h3-ccu"}},
					"reg":        {U64: []uint64{c.CCU.Base, deviceSize(c.CCU, "ccu")}},
					"#clock-cells": {U32: []uint32{1}},
				},
			},
			{
				Name: nodeName("syscon", c.Syscon.Base),
				Properties: map[string]fdt.Property{
					"compatible": {Strings: []string{"allwinner,sun8i-h3-system-controller", "syscon"}},
					"reg":        {U64: []uint64{c.Syscon.Base, deviceSize(c.Syscon, "syscon")}},
				},
			},
		},
	}
}

func nodeName(label string, addr uint64) string {
	return fmt.Sprintf("%s@%x", label, addr)
}
