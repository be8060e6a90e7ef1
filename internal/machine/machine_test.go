package machine

import (
	"os"
	"testing"

	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/guestmem"
	"github.com/sdhcore/ah3sdhc/internal/sdbus"
	"github.com/sdhcore/ah3sdhc/internal/sdhc"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	f, err := os.CreateTemp("", "machine-test-*")
	if err != nil {
		t.Fatal(err)
	}
	name := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(name) })

	mem, err := guestmem.New(name, 64*1024)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mem.Close() })

	return New(mem)
}

func TestMachineDispatchesToRegisteredDevice(t *testing.T) {
	m := newTestMachine(t)

	card := sdbus.NewMemCard(1 << 20)
	dev := sdhc.New(sdhc.Config{Base: 0x1000, Bus: card, IRQLine: chipset.LineInterruptDetached()})
	if err := m.AddDevice(dev); err != nil {
		t.Fatal(err)
	}
	if err := m.Build(); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4)
	if err := m.DispatchMMIO(0x1000+0x3c, buf, false); err != nil { // STAR
		t.Fatal(err)
	}
	got := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if got != 0x100 { // resetSTAR
		t.Errorf("STAR reset value = 0x%x, want 0x100", got)
	}

	if err := m.DispatchMMIO(0x2000, buf, false); err == nil {
		t.Error("expected error dispatching to unregistered address")
	}
}

func TestMachineSetIRQTracksLevel(t *testing.T) {
	m := newTestMachine(t)

	if m.IRQLevel(7) {
		t.Error("line 7 should start low")
	}
	if err := m.SetIRQ(7, true); err != nil {
		t.Fatal(err)
	}
	if !m.IRQLevel(7) {
		t.Error("line 7 should be high after SetIRQ(7, true)")
	}
}

func TestMachineMemoryReadWrite(t *testing.T) {
	m := newTestMachine(t)

	want := []byte{1, 2, 3, 4}
	if _, err := m.WriteAt(want, 100); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 4)
	if _, err := m.ReadAt(got, 100); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadAt = %v, want %v", got, want)
	}
	if m.MemorySize() != 64*1024 {
		t.Errorf("MemorySize = %d, want %d", m.MemorySize(), 64*1024)
	}
}

func TestMachineAddDeviceAfterBuildFails(t *testing.T) {
	m := newTestMachine(t)
	if err := m.Build(); err != nil {
		t.Fatal(err)
	}

	card := sdbus.NewMemCard(1 << 20)
	dev := sdhc.New(sdhc.Config{Base: 0x1000, Bus: card})
	if err := m.AddDevice(dev); err == nil {
		t.Error("expected AddDevice after Build to fail")
	}
}
