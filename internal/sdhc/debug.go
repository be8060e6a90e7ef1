package sdhc

// NamedRegister pairs a register's datasheet abbreviation with its
// offset, for tools that want to print the register file rather than
// poke at one offset.
type NamedRegister struct {
	Name   string
	Offset uint64
}

// NamedRegisters lists every addressable register in offset order.
// cmd/sdhcinspect walks this to print a full register dump without
// duplicating the offset table.
func NamedRegisters() []NamedRegister {
	return []NamedRegister{
		{"GCTL", RegGCTL},
		{"CKCR", RegCKCR},
		{"TMOR", RegTMOR},
		{"BWDR", RegBWDR},
		{"BKSR", RegBKSR},
		{"BYCR", RegBYCR},
		{"CMDR", RegCMDR},
		{"CAGR", RegCAGR},
		{"RESP0", RegRESP0},
		{"RESP1", RegRESP1},
		{"RESP2", RegRESP2},
		{"RESP3", RegRESP3},
		{"IMKR", RegIMKR},
		{"MISR", RegMISR},
		{"RISR", RegRISR},
		{"STAR", RegSTAR},
		{"FWLR", RegFWLR},
		{"FUNS", RegFUNS},
		{"DBGC", RegDBGC},
		{"A12A", RegA12A},
		{"NTSR", RegNTSR},
		{"SDBG", RegSDBG},
		{"HWRST", RegHWRST},
		{"DMAC", RegDMAC},
		{"DLBA", RegDLBA},
		{"IDST", RegIDST},
		{"IDIE", RegIDIE},
		{"THLDC", RegTHLDC},
		{"DSBD", RegDSBD},
		{"RESPONSE_CRC", RegResponseCRC},
		{"DATA7_CRC", RegData7CRC},
		{"DATA6_CRC", RegData6CRC},
		{"DATA5_CRC", RegData5CRC},
		{"DATA4_CRC", RegData4CRC},
		{"DATA3_CRC", RegData3CRC},
		{"DATA2_CRC", RegData2CRC},
		{"DATA1_CRC", RegData1CRC},
		{"DATA0_CRC", RegData0CRC},
		{"STATUS_CRC", RegStatusCRC},
	}
}
