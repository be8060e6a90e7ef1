package sdhc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// snapshotVersion tags the wire format of deviceSnapshot. Bump this
// whenever a field is added, removed, or reinterpreted so that a
// version mismatch is detected rather than silently misread.
const snapshotVersion = 2

// placementHash identifies the base/size a snapshot was captured
// under, so a snapshot taken against one device placement can't be
// restored onto a device mapped somewhere else.
type placementHash [32]byte

func (h placementHash) String() string {
	const hexChars = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[i*2] = hexChars[b>>4]
		out[i*2+1] = hexChars[b&0x0f]
	}
	return string(out)
}

// computePlacementHash hashes the MMIO base/size a Device was
// constructed with; RestoreSnapshot rejects a snapshot whose hash
// doesn't match the hash of the device restoring it.
func computePlacementHash(base, size uint64) placementHash {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], base)
	binary.LittleEndian.PutUint64(buf[8:16], size)
	return placementHash(sha256.Sum256(buf[:]))
}

// deviceSnapshot is the Persistence View (§6): every field of the
// register file and counters, plus a version tag, flat enough to
// round-trip through gob with no custom (de)serialization logic.
type deviceSnapshot struct {
	Version       uint32
	PlacementHash placementHash

	GlobalCtl   uint32
	ClockCtl    uint32
	Timeout     uint32
	BusWidth    uint32
	BlockSize   uint32
	ByteCount   uint32
	TransferCnt uint32
	Command     uint32
	CommandArg  uint32
	Response    [4]uint32
	IrqMask     uint32
	IrqStatus   uint32
	Status      uint32
	FifoWLevel  uint32
	FifoFuncSel uint32
	DebugEnable uint32
	Auto12Arg   uint32
	NewTiming   uint32
	NewTimingDbg uint32
	HardwareRst uint32
	Dmac        uint32
	DescBase    uint32
	DmacStatus  uint32
	DmacIRQ     uint32
	CardThold   uint32
	DDRStartBit uint32

	ResponseCRC uint32
	DataCRC     [8]uint32
	StatusCRC   uint32
}

func init() {
	gob.Register(&deviceSnapshot{})
}

// DeviceId identifies this device's snapshot format to the surrounding
// platform, which keys saved state by device rather than by type.
func (d *Device) DeviceId() string { return "sdhc" }

// CaptureSnapshot implements the Persistence View: it serializes every
// register and counter in §3's data model plus a version tag.
func (d *Device) CaptureSnapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := &deviceSnapshot{
		Version:       snapshotVersion,
		PlacementHash: d.placementHash,
		GlobalCtl:     d.globalCtl,
		ClockCtl:     d.clockCtl,
		Timeout:      d.timeout,
		BusWidth:     d.busWidth,
		BlockSize:    d.blockSize,
		ByteCount:    d.byteCount,
		TransferCnt:  d.transferCnt,
		Command:      d.command,
		CommandArg:   d.commandArg,
		Response:     d.response,
		IrqMask:      d.irqMask,
		IrqStatus:    d.irqStatus,
		Status:       d.status,
		FifoWLevel:   d.fifoWLevel,
		FifoFuncSel:  d.fifoFuncSel,
		DebugEnable:  d.debugEnable,
		Auto12Arg:    d.auto12Arg,
		NewTiming:    d.newTiming,
		NewTimingDbg: d.newTimingDbg,
		HardwareRst:  d.hardwareRst,
		Dmac:         d.dmac,
		DescBase:     d.descBase,
		DmacStatus:   d.dmacStatus,
		DmacIRQ:      d.dmacIRQ,
		CardThold:    d.cardThold,
		DDRStartBit:  d.ddrStartBit,
		ResponseCRC:  d.responseCRC,
		DataCRC:      d.dataCRC,
		StatusCRC:    d.statusCRC,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("sdhc: capture snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreSnapshot implements the Persistence View's replay half: the
// full state returns with no device re-initialization, and the
// interrupt line is re-asserted from the restored inputs rather than
// trusted to match whatever it was before the restore.
func (d *Device) RestoreSnapshot(data []byte) error {
	var snap deviceSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("sdhc: restore snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("sdhc: snapshot version %d unsupported (want %d)", snap.Version, snapshotVersion)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if snap.PlacementHash != d.placementHash {
		return fmt.Errorf("sdhc: snapshot taken under a different device placement (hash %s, want %s)",
			snap.PlacementHash, d.placementHash)
	}

	d.globalCtl = snap.GlobalCtl
	d.clockCtl = snap.ClockCtl
	d.timeout = snap.Timeout
	d.busWidth = snap.BusWidth
	d.blockSize = snap.BlockSize
	d.byteCount = snap.ByteCount
	d.transferCnt = snap.TransferCnt
	d.command = snap.Command
	d.commandArg = snap.CommandArg
	d.response = snap.Response
	d.irqMask = snap.IrqMask
	d.irqStatus = snap.IrqStatus
	d.status = snap.Status
	d.fifoWLevel = snap.FifoWLevel
	d.fifoFuncSel = snap.FifoFuncSel
	d.debugEnable = snap.DebugEnable
	d.auto12Arg = snap.Auto12Arg
	d.newTiming = snap.NewTiming
	d.newTimingDbg = snap.NewTimingDbg
	d.hardwareRst = snap.HardwareRst
	d.dmac = snap.Dmac
	d.descBase = snap.DescBase
	d.dmacStatus = snap.DmacStatus
	d.dmacIRQ = snap.DmacIRQ
	d.cardThold = snap.CardThold
	d.ddrStartBit = snap.DDRStartBit
	d.responseCRC = snap.ResponseCRC
	d.dataCRC = snap.DataCRC
	d.statusCRC = snap.StatusCRC

	// Force a re-evaluation rather than trusting the restored edge
	// state: updateInterruptLocked only skips the line call when
	// irqKnown already agrees with the computed level.
	d.irqKnown = false
	d.updateInterruptLocked()
	return nil
}
