package sdhc

// updateTransferCountLocked implements the Transfer Counter (§4.3): a
// saturating subtract of bytes from transfer_cnt, raising
// DATA_COMPLETE and AUTOCMD_DONE the moment the residual count hits
// zero. Called once per 4-byte PIO access and once per DMA descriptor
// segment.
func (d *Device) updateTransferCountLocked(bytes uint32) {
	if d.transferCnt > bytes {
		d.transferCnt -= bytes
	} else {
		d.transferCnt = 0
	}
	if d.transferCnt == 0 {
		d.irqStatus |= RISRDataComplete | RISRAutoCmdDone
	}
}
