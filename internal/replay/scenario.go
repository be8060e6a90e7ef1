// Package replay loads YAML scenario fixtures and drives them through
// an assembled machine.Machine one register access at a time, giving
// the S1-S7 register-level test scenarios a form runnable outside
// `go test` by cmd/sdhcreplay.
package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one register access in a scenario: a write, or a read with
// an optional expected value to check against.
type Step struct {
	Name   string  `yaml:"name"`
	Device string  `yaml:"device"` // "sdhc" (default), "ccu", or "syscon"
	Offset uint64  `yaml:"offset"`
	Write  *uint32 `yaml:"write,omitempty"`
	Expect *uint32 `yaml:"expect,omitempty"`
}

// Scenario is an ordered list of register accesses.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Load reads and parses a Scenario from path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("replay: read %s: %w", path, err)
	}
	var scn Scenario
	if err := yaml.Unmarshal(data, &scn); err != nil {
		return Scenario{}, fmt.Errorf("replay: parse %s: %w", path, err)
	}
	return scn, nil
}

// deviceOf returns the configured device name, defaulting to sdhc.
func (s Step) deviceOf() string {
	if s.Device == "" {
		return "sdhc"
	}
	return s.Device
}
