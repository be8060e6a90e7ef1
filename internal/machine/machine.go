// Package machine assembles a standalone hv.VirtualMachine out of
// guestmem.Region and a chipset.Chipset, the way a real hypervisor
// backend (kvm, hvf, rv64) pairs a Bus/MMU with physical RAM. It exists
// so cmd/sdhcinspect and cmd/sdhcreplay have something concrete to add
// sdhc.Device, ccu.Device, and syscon.Device onto without pulling in
// any real hypervisor backend.
package machine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/guestmem"
	"github.com/sdhcore/ah3sdhc/internal/hv"
)

// Machine is a software-only VirtualMachine: guest memory backed by an
// mmap'd region, interrupt lines tracked in-process, and a chipset
// dispatch table built up as devices are added.
type Machine struct {
	mem *guestmem.Region

	mu      sync.Mutex
	irq     map[uint32]bool
	builder *chipset.ChipsetBuilder
	built   *chipset.Chipset
	devices []hv.Device
}

// New creates a Machine backed by mem. mem's lifetime is owned by the
// caller; Close does not unmap it.
func New(mem *guestmem.Region) *Machine {
	return &Machine{
		mem:     mem,
		irq:     make(map[uint32]bool),
		builder: chipset.NewBuilder(),
	}
}

// AddDevice implements hv.Device registration for hv.VirtualMachine. If
// dev also implements chipset.ChipsetDevice, its MMIO region is
// registered with the chipset builder; Init is then called with this
// Machine.
func (m *Machine) AddDevice(dev hv.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.built != nil {
		return fmt.Errorf("machine: cannot add device after Build")
	}

	if cd, ok := dev.(chipset.ChipsetDevice); ok {
		if err := m.builder.RegisterDevice(cd); err != nil {
			return fmt.Errorf("machine: register device: %w", err)
		}
	}

	m.devices = append(m.devices, dev)
	return dev.Init(m)
}

// Build finalizes the chipset dispatch table. It must be called once
// all devices have been added and before any MMIO access is
// dispatched.
func (m *Machine) Build() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	built, err := m.builder.Build()
	if err != nil {
		return fmt.Errorf("machine: build chipset: %w", err)
	}
	m.built = built
	return nil
}

// DispatchMMIO routes a guest MMIO access to whichever device claimed
// the address range, the way a real VM exit handler would. Callers
// (cmd/sdhcinspect, cmd/sdhcreplay) drive register accesses through
// this rather than calling a device directly, so the same code path
// exercises the chipset's region lookup.
func (m *Machine) DispatchMMIO(addr uint64, data []byte, isWrite bool) error {
	m.mu.Lock()
	built := m.built
	m.mu.Unlock()
	if built == nil {
		return fmt.Errorf("machine: Build was never called")
	}
	return built.HandleMMIO(hv.NoopExitContext{}, addr, data, isWrite)
}

// Hypervisor implements hv.VirtualMachine. There is no real backend
// here, so it returns a stub that only reports its architecture.
func (m *Machine) Hypervisor() hv.Hypervisor { return stubHypervisor{} }

// MemorySize implements hv.VirtualMachine.
func (m *Machine) MemorySize() uint64 { return m.mem.Size() }

// MemoryBase implements hv.VirtualMachine. Guest memory starts at 0 in
// this software-only machine; there is no separate device/RAM split.
func (m *Machine) MemoryBase() uint64 { return 0 }

// ReadAt implements io.ReaderAt over guest memory.
func (m *Machine) ReadAt(p []byte, off int64) (int, error) { return m.mem.ReadAt(p, off) }

// WriteAt implements io.WriterAt over guest memory.
func (m *Machine) WriteAt(p []byte, off int64) (int, error) { return m.mem.WriteAt(p, off) }

// Close implements io.Closer. Memory is owned by the caller, so Close
// has nothing to release and always returns nil.
func (m *Machine) Close() error { return nil }

// SetIRQ implements hv.VirtualMachine. There is no interrupt
// controller to forward to, so the line's level is recorded and
// logged; cmd/sdhcinspect reads it back to show aggregated interrupt
// state.
func (m *Machine) SetIRQ(line uint32, level bool) error {
	m.mu.Lock()
	changed := m.irq[line] != level
	m.irq[line] = level
	m.mu.Unlock()

	if changed {
		slog.Debug("irq line changed", "line", line, "level", level)
	}
	return nil
}

// IRQLevel reports the last level SetIRQ recorded for line.
func (m *Machine) IRQLevel(line uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.irq[line]
}

type stubHypervisor struct{}

func (stubHypervisor) Close() error                     { return nil }
func (stubHypervisor) Architecture() hv.CpuArchitecture { return hv.ArchitectureARM64 }

var _ hv.VirtualMachine = (*Machine)(nil)
