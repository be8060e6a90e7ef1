package fdt

// Property describes a single device-tree property in a JSON-friendly
// form. A board's compatible/reg/clock-cells properties only ever need
// a string list, a 32-bit cell list, or a 64-bit cell list (reg pairs
// an address with a size under #address-cells/#size-cells = 1), so
// those are the only three kinds this type carries. Exactly one of the
// typed fields should be populated for a given property.
type Property struct {
	Strings []string `json:"strings,omitempty"`
	U32     []uint32 `json:"u32,omitempty"`
	U64     []uint64 `json:"u64,omitempty"`
}

// Kind returns the name of the populated field or an empty string if none are set.
func (p Property) Kind() string {
	switch {
	case len(p.Strings) > 0:
		return "strings"
	case len(p.U32) > 0:
		return "u32"
	case len(p.U64) > 0:
		return "u64"
	default:
		return ""
	}
}

// DefinedCount reports how many distinct fields on the property are populated.
func (p Property) DefinedCount() int {
	count := 0
	if len(p.Strings) > 0 {
		count++
	}
	if len(p.U32) > 0 {
		count++
	}
	if len(p.U64) > 0 {
		count++
	}
	return count
}

// Node describes a device-tree node using JSON-friendly structures. It
// maps directly onto the handful of nodes Config.DeviceTree builds: the
// root plus one child per register-file peripheral, each carrying a
// compatible string, a reg pair, and occasionally an interrupts or
// clock-cells property.
type Node struct {
	Name       string              `json:"name"`
	Properties map[string]Property `json:"properties,omitempty"`
	Children   []Node              `json:"children,omitempty"`
}
