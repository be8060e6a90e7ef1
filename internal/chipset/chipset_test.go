package chipset

import (
	"testing"

	"github.com/sdhcore/ah3sdhc/internal/hv"
)

type fakeMmioDevice struct {
	regs map[uint64]uint32
}

func (d *fakeMmioDevice) ReadMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	v := d.regs[addr]
	data[0] = byte(v)
	data[1] = byte(v >> 8)
	data[2] = byte(v >> 16)
	data[3] = byte(v >> 24)
	return nil
}

func (d *fakeMmioDevice) WriteMMIO(ctx hv.ExitContext, addr uint64, data []byte) error {
	d.regs[addr] = uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return nil
}

func TestHandleMMIORoutesToRegisteredRegion(t *testing.T) {
	b := NewBuilder()
	dev := &fakeMmioDevice{regs: make(map[uint64]uint32)}
	if err := b.WithMmioRegion(0x1000, 0x100, dev); err != nil {
		t.Fatal(err)
	}
	cs, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	write := []byte{0xef, 0xbe, 0xad, 0xde}
	if err := cs.HandleMMIO(hv.NoopExitContext{}, 0x1010, write, true); err != nil {
		t.Fatal(err)
	}

	read := make([]byte, 4)
	if err := cs.HandleMMIO(hv.NoopExitContext{}, 0x1010, read, false); err != nil {
		t.Fatal(err)
	}
	if string(read) != string(write) {
		t.Errorf("read back %v, want %v", read, write)
	}
}

func TestHandleMMIOUnmappedAddressErrors(t *testing.T) {
	b := NewBuilder()
	cs, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if err := cs.HandleMMIO(hv.NoopExitContext{}, 0x5000, make([]byte, 4), false); err == nil {
		t.Error("expected error for unmapped MMIO address")
	}
}

func TestWithMmioRegionRejectsOverlap(t *testing.T) {
	b := NewBuilder()
	dev := &fakeMmioDevice{regs: make(map[uint64]uint32)}
	if err := b.WithMmioRegion(0x1000, 0x100, dev); err != nil {
		t.Fatal(err)
	}
	if err := b.WithMmioRegion(0x1080, 0x100, dev); err == nil {
		t.Error("expected error registering an overlapping MMIO region")
	}
}

type fakeChipsetDevice struct {
	fakeMmioDevice
	base    uint64
	started bool
	stopped bool
	reset   bool
}

func (d *fakeChipsetDevice) Init(hv.VirtualMachine) error { return nil }
func (d *fakeChipsetDevice) Start() error                 { d.started = true; return nil }
func (d *fakeChipsetDevice) Stop() error                  { d.stopped = true; return nil }
func (d *fakeChipsetDevice) Reset() error                 { d.reset = true; return nil }
func (d *fakeChipsetDevice) SupportsMmio() *MmioIntercept {
	return &MmioIntercept{
		Regions: []hv.MMIORegion{{Address: d.base, Size: 0x100}},
		Handler: d,
	}
}

func TestChipsetDriveDeviceLifecycle(t *testing.T) {
	b := NewBuilder()
	dev := &fakeChipsetDevice{fakeMmioDevice: fakeMmioDevice{regs: make(map[uint64]uint32)}, base: 0x2000}
	if err := b.RegisterDevice(dev); err != nil {
		t.Fatal(err)
	}
	cs, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if err := cs.Start(); err != nil {
		t.Fatal(err)
	}
	if err := cs.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := cs.Reset(); err != nil {
		t.Fatal(err)
	}
	if !dev.started || !dev.stopped || !dev.reset {
		t.Errorf("lifecycle hooks not all invoked: %+v", dev)
	}

	if err := cs.HandleMMIO(hv.NoopExitContext{}, 0x2010, make([]byte, 4), false); err != nil {
		t.Errorf("HandleMMIO via RegisterDevice's claimed region: %v", err)
	}
}

func TestLineInterruptFromFuncForwardsLevel(t *testing.T) {
	var levels []bool
	line := LineInterruptFromFunc(func(level bool) { levels = append(levels, level) })

	line.SetLevel(true)
	line.SetLevel(false)

	if len(levels) != 2 || levels[0] != true || levels[1] != false {
		t.Errorf("levels = %v, want [true false]", levels)
	}
}
