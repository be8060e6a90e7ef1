package ccu

import (
	"encoding/binary"
	"testing"

	"github.com/sdhcore/ah3sdhc/internal/hv"
)

func readReg(t *testing.T, d *Device, offset uint64) uint32 {
	t.Helper()
	buf := make([]byte, 4)
	if err := d.ReadMMIO(hv.NoopExitContext{}, d.base+offset, buf); err != nil {
		t.Fatal(err)
	}
	return binary.LittleEndian.Uint32(buf)
}

func writeReg(t *testing.T, d *Device, offset uint64, value uint32) {
	t.Helper()
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	if err := d.WriteMMIO(hv.NoopExitContext{}, d.base+offset, buf); err != nil {
		t.Fatal(err)
	}
}

func TestResetValues(t *testing.T) {
	d := New(Config{Base: 0x1000})

	if got := readReg(t, d, RegPLLCPUX); got != 0x00001000 {
		t.Errorf("RegPLLCPUX = 0x%x, want 0x1000", got)
	}
	if got := readReg(t, d, RegMBUS); got != 0x80000000 {
		t.Errorf("RegMBUS = 0x%x, want 0x80000000", got)
	}
}

func TestPLLEnableSetsLock(t *testing.T) {
	d := New(Config{Base: 0x1000})

	writeReg(t, d, RegPLLCPUX, PLLEnable|0x1000)

	got := readReg(t, d, RegPLLCPUX)
	if got&PLLLock == 0 {
		t.Errorf("RegPLLCPUX = 0x%x, expected LOCK bit set alongside ENABLE", got)
	}
}

func TestNonPLLRegisterIsPlainStorage(t *testing.T) {
	d := New(Config{Base: 0x1000})

	writeReg(t, d, RegAPB1, 0xdeadbeef)
	if got := readReg(t, d, RegAPB1); got != 0xdeadbeef {
		t.Errorf("RegAPB1 = 0x%x, want 0xdeadbeef", got)
	}
}

func TestUnknownOffsetReadsZero(t *testing.T) {
	d := New(Config{Base: 0x1000})

	const unknownOffset = 0x0004 // between RegPLLCPUX and RegPLLAudio
	if got := readReg(t, d, unknownOffset); got != 0 {
		t.Errorf("unknown offset read = 0x%x, want 0", got)
	}
}

func TestUnknownOffsetWriteIsDropped(t *testing.T) {
	d := New(Config{Base: 0x1000})

	const unknownOffset = 0x0004
	writeReg(t, d, unknownOffset, 0xdeadbeef)
	if got := readReg(t, d, unknownOffset); got != 0 {
		t.Errorf("unknown offset after write = 0x%x, want 0 (write must be dropped)", got)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	d := New(Config{Base: 0x1000})
	writeReg(t, d, RegPLLCPUX, 0xffffffff)

	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if got := readReg(t, d, RegPLLCPUX); got != 0x00001000 {
		t.Errorf("RegPLLCPUX after reset = 0x%x, want 0x1000", got)
	}
}
