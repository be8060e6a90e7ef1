package syscon

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

	if got := readReg(t, d, RegVER); got != resetVER {
		t.Errorf("RegVER = 0x%x, want 0x%x", got, resetVER)
	}
	if got := readReg(t, d, RegEMACPHYClk); got != resetEMACPHYClk {
		t.Errorf("RegEMACPHYClk = 0x%x, want 0x%x", got, resetEMACPHYClk)
	}
}

func TestVERWriteIsIgnored(t *testing.T) {
	d := New(Config{Base: 0x1000})

	writeReg(t, d, RegVER, 0xdeadbeef)
	if got := readReg(t, d, RegVER); got != resetVER {
		t.Errorf("RegVER after write = 0x%x, want unchanged 0x%x", got, resetVER)
	}
}

func TestOtherRegistersAreWritable(t *testing.T) {
	d := New(Config{Base: 0x1000})

	writeReg(t, d, RegEMACPHYClk, 0x12345678)
	if got := readReg(t, d, RegEMACPHYClk); got != 0x12345678 {
		t.Errorf("RegEMACPHYClk = 0x%x, want 0x12345678", got)
	}
}

func TestUnknownOffsetReadsZero(t *testing.T) {
	d := New(Config{Base: 0x1000})

	const unknownOffset = 0x10 // not RegVER or RegEMACPHYClk
	if got := readReg(t, d, unknownOffset); got != 0 {
		t.Errorf("unknown offset read = 0x%x, want 0", got)
	}
}

func TestUnknownOffsetWriteIsDropped(t *testing.T) {
	d := New(Config{Base: 0x1000})

	const unknownOffset = 0x10
	writeReg(t, d, unknownOffset, 0xdeadbeef)
	if got := readReg(t, d, unknownOffset); got != 0 {
		t.Errorf("unknown offset after write = 0x%x, want 0 (write must be dropped)", got)
	}
}
