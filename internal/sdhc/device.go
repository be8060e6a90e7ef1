// Package sdhc implements the Allwinner H3 SD/MMC host controller
// core: register decode, command dispatch, the PIO FIFO path, the
// internal DMA descriptor engine, and interrupt aggregation. It sits
// between a guest CPU (via MMIO) and an abstract SD bus (via
// internal/sdbus), translating register writes and in-memory DMA
// descriptor chains into card commands and byte streams.
package sdhc

import (
	"sync"

	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/hv"
	"github.com/sdhcore/ah3sdhc/internal/sdbus"
)

// DefaultMaxDescriptorChain bounds how many descriptors a single DMA
// walk will follow before giving up, when a Config doesn't override
// it. The real hardware's chain is unbounded and terminates only on
// the LAST flag or byte_count reaching zero; a malformed guest that
// never sets LAST on a chain of size-0 (65536 byte) descriptors would
// otherwise force an enormous walk. This cap is not datasheet behavior
// — it is a defensive limit documented here because the original is
// silent on it.
const DefaultMaxDescriptorChain = 4096

// Device is one SD/MMC host controller instance: one card slot's
// worth of register state, wired to one sdbus.Bus and one guest
// memory space. It runs under a big-device-lock model — every MMIO
// entry point executes to completion before another access can
// observe the device's state — so all mutable state is guarded by a
// single mutex rather than finer-grained synchronization.
type Device struct {
	mu sync.Mutex

	base uint64
	size uint64

	vm       hv.VirtualMachine
	bus      sdbus.Bus
	irqLine  chipset.LineInterrupt
	irqHigh  bool
	irqKnown bool

	errLog *guestErrorLog

	// maxDescriptorChain bounds a single DMA walk; see
	// DefaultMaxDescriptorChain for why it exists at all.
	maxDescriptorChain int

	// placementHash ties a captured snapshot to the placement it was
	// taken under, so RestoreSnapshot can reject state captured for a
	// device mapped at a different base/size rather than silently
	// misapplying it.
	placementHash placementHash

	// Register file (§3 of the controller's data model). Field names
	// spell out each register's role; the datasheet mnemonics are the
	// Reg* offset constants in registers.go.
	globalCtl   uint32
	clockCtl    uint32
	timeout     uint32
	busWidth    uint32
	blockSize   uint32
	byteCount   uint32
	transferCnt uint32
	command     uint32
	commandArg  uint32
	response    [4]uint32
	irqMask     uint32
	irqStatus   uint32
	status      uint32
	fifoWLevel  uint32
	fifoFuncSel uint32
	debugEnable uint32
	auto12Arg   uint32
	newTiming   uint32
	newTimingDbg uint32
	hardwareRst uint32
	dmac        uint32
	descBase    uint32
	dmacStatus  uint32
	dmacIRQ     uint32
	cardThold   uint32
	ddrStartBit uint32

	// CRC family: read-only opaque storage, per the Non-goals — CRC
	// computation itself is out of scope, these registers just hold
	// whatever value a real transfer would have left there.
	responseCRC uint32
	dataCRC     [8]uint32
	statusCRC   uint32
}

// Config collects the construction-time parameters for a Device.
type Config struct {
	Base    uint64
	IRQLine chipset.LineInterrupt
	Bus     sdbus.Bus

	// MaxDescriptorChain overrides DefaultMaxDescriptorChain when
	// non-zero, letting a deployment tighten or loosen the DMA walk's
	// defensive cap per device slot.
	MaxDescriptorChain int
}

// New creates a Device at rest (post-reset register values), wired to
// the given card bus and interrupt line.
func New(cfg Config) *Device {
	irqLine := cfg.IRQLine
	if irqLine == nil {
		irqLine = chipset.LineInterruptDetached()
	}
	maxChain := cfg.MaxDescriptorChain
	if maxChain <= 0 {
		maxChain = DefaultMaxDescriptorChain
	}
	d := &Device{
		base:               cfg.Base,
		size:               MMIOSize,
		bus:                cfg.Bus,
		irqLine:            irqLine,
		errLog:             newGuestErrorLog(),
		maxDescriptorChain: maxChain,
	}
	d.placementHash = computePlacementHash(d.base, d.size)
	d.resetLocked()
	return d
}

// Init implements hv.Device.
func (d *Device) Init(vm hv.VirtualMachine) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vm = vm
	return nil
}

// Start implements chipset.ChangeDeviceState.
func (d *Device) Start() error { return nil }

// Stop implements chipset.ChangeDeviceState.
func (d *Device) Stop() error { return nil }

// Reset implements chipset.ChangeDeviceState and spec §4.8: every
// field returns to its reset constant, including transfer_cnt, which
// resets to 0 regardless of BYCR's own (non-zero) reset value.
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	return nil
}

func (d *Device) resetLocked() {
	d.globalCtl = resetGCTL
	d.clockCtl = resetCKCR
	d.timeout = resetTMOR
	d.busWidth = resetBWDR
	d.blockSize = resetBKSR
	d.byteCount = resetBYCR
	d.transferCnt = 0
	d.command = 0
	d.commandArg = 0
	d.response = [4]uint32{}
	d.irqMask = 0
	d.irqStatus = 0
	d.status = resetSTAR
	d.fifoWLevel = resetFWLR
	d.fifoFuncSel = 0
	d.debugEnable = 0
	d.auto12Arg = resetA12A
	d.newTiming = resetNTSR
	d.newTimingDbg = 0
	d.hardwareRst = resetHWRST
	d.dmac = 0
	d.descBase = 0
	d.dmacStatus = 0
	d.dmacIRQ = 0
	d.cardThold = 0
	d.ddrStartBit = 0
	d.responseCRC = 0
	d.dataCRC = [8]uint32{}
	d.statusCRC = 0
}

// SupportsMmio implements chipset.ChipsetDevice.
func (d *Device) SupportsMmio() *chipset.MmioIntercept {
	return &chipset.MmioIntercept{
		Regions: []hv.MMIORegion{{Address: d.base, Size: d.size}},
		Handler: d,
	}
}

// SetInserted implements the card-insertion callback (§4.7): external
// SD-bus events notify the controller directly through this method
// rather than through a register write, since the guest has no write
// path that models physically inserting a card.
func (d *Device) SetInserted(inserted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if inserted {
		d.irqStatus |= RISRCardInsert
		d.irqStatus &^= RISRCardRemove
		d.status |= STARCardPresent
	} else {
		d.irqStatus &^= RISRCardInsert
		d.irqStatus |= RISRCardRemove
		d.status &^= STARCardPresent
	}
	d.updateInterruptLocked()
}

var (
	_ hv.Device                 = (*Device)(nil)
	_ chipset.ChipsetDevice     = (*Device)(nil)
	_ chipset.MmioHandler       = (*Device)(nil)
	_ chipset.ChangeDeviceState = (*Device)(nil)
	_ sdbus.InsertionSink       = (*Device)(nil)
)
