package sdhc

// Register offsets, as exposed on the device's MMIO window. Names
// follow the datasheet abbreviations rather than spelled-out English,
// matching how the rest of this codebase names hardware registers
// (virtio's VIRTIO_MMIO_* constants are the same style, one level of
// abstraction up).
const (
	RegGCTL  = 0x00 // Global Control
	RegCKCR  = 0x04 // Clock Control
	RegTMOR  = 0x08 // Timeout
	RegBWDR  = 0x0C // Bus Width
	RegBKSR  = 0x10 // Block Size
	RegBYCR  = 0x14 // Byte Count
	RegCMDR  = 0x18 // Command
	RegCAGR  = 0x1C // Command Argument
	RegRESP0 = 0x20
	RegRESP1 = 0x24
	RegRESP2 = 0x28
	RegRESP3 = 0x2C
	RegIMKR  = 0x30 // Interrupt Mask
	RegMISR  = 0x34 // Masked Interrupt Status
	RegRISR  = 0x38 // Raw Interrupt Status
	RegSTAR  = 0x3C // Status
	RegFWLR  = 0x40 // FIFO Water Level
	RegFUNS  = 0x44 // FIFO Function Select
	RegDBGC  = 0x50 // Debug Enable
	RegA12A  = 0x58 // Auto command 12 Argument
	RegNTSR  = 0x5C // New Timing Set
	RegSDBG  = 0x60 // New Timing Set Debug
	RegHWRST = 0x78 // Hardware Reset
	RegDMAC  = 0x80 // Internal DMA Controller Control
	RegDLBA  = 0x84 // Descriptor List Base Address
	RegIDST  = 0x88 // Internal DMA Controller Status
	RegIDIE  = 0x8C // Internal DMA Controller IRQ Enable
	RegTHLDC = 0x100
	RegDSBD  = 0x10C

	RegResponseCRC = 0x110
	RegData7CRC    = 0x114
	RegData6CRC    = 0x118
	RegData5CRC    = 0x11C
	RegData4CRC    = 0x120
	RegData3CRC    = 0x124
	RegData2CRC    = 0x128
	RegData1CRC    = 0x12C
	RegData0CRC    = 0x130
	RegStatusCRC   = 0x134

	RegFIFO = 0x200

	// MMIOSize is the fixed MMIO window this device occupies.
	MMIOSize = 0x1000
)

// GCTL (Global Control) bits.
const (
	GCTLFifoACMod  = 1 << 31
	GCTLDDRModSel  = 1 << 10
	GCTLCardDBCEnb = 1 << 8
	GCTLDMAEnb     = 1 << 5
	GCTLIntEnb     = 1 << 4
	GCTLDMARst     = 1 << 2
	GCTLFifoRst    = 1 << 1
	GCTLSoftRst    = 1 << 0

	// gctlSelfClearMask covers the three self-clearing reset strobes;
	// they always read back as 0 regardless of what the guest wrote.
	gctlSelfClearMask = GCTLDMARst | GCTLFifoRst | GCTLSoftRst
)

// CMDR (Command) bits.
const (
	CMDRLoad           = 1 << 31
	CMDRClkChange      = 1 << 21
	CMDRAutoStop       = 1 << 12
	CMDRWrite          = 1 << 10
	CMDRData           = 1 << 9
	CMDRResponseLong   = 1 << 7
	CMDRResponse       = 1 << 6
	CMDRCommandIDMask  = 0x3f
)

// RISR / MISR (Interrupt Status) bits.
const (
	RISRCardRemove   = 1 << 31
	RISRCardInsert   = 1 << 30
	RISRAutoCmdDone  = 1 << 14
	RISRDataComplete = 1 << 3
	RISRCmdComplete  = 1 << 2
	RISRNoResponse   = 1 << 1
)

// STAR (Status) bits.
const (
	STARCardPresent = 1 << 8
)

// IDST (Internal DMA Controller Status) bits.
const (
	IDSTSumReceiveIRQ = 1 << 8
	IDSTReceiveIRQ    = 1 << 1
	IDSTTransmitIRQ   = 1 << 0

	// idstWriteMask is the set of IDST bits a guest write can clear
	// (write-one-to-clear); bits outside this mask are read-only from
	// the guest's perspective.
	idstWriteMask = 0x3ff
)

// Reset values, bit-exact with the hardware datasheet and the original
// model this core was distilled from.
const (
	resetGCTL = 0x00000300
	resetCKCR = 0x00000000
	resetTMOR = 0xFFFFFF40
	resetBWDR = 0x00000000
	resetBKSR = 0x00000200
	resetBYCR = 0x00000200
	resetSTAR = 0x00000100
	resetFWLR = 0x000F0000
	resetA12A = 0x0000FFFF
	resetNTSR = 0x00000001
	resetHWRST = 0x00000001
)
