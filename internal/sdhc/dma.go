package sdhc

// chunkSize is the size of the intermediate buffer the walker copies
// through on each guest-memory/CBI round trip inside a descriptor
// segment (§4.5). Chunking keeps per-transfer memory bounded while
// still amortizing the per-descriptor guest-memory fetch cost; 1 KiB
// matches the original model's buffer size exactly.
const chunkSize = 1024

// runDMALocked implements the DMA Descriptor Walker (§4.5). Entry
// conditions are checked up front and a failed check is a silent
// no-op, never an error surfaced to the guest: byte_count and
// block_size must both be non-zero and DMA_ENB must be set, and for a
// read-direction transfer the card must have data ready.
func (d *Device) runDMALocked() {
	if d.byteCount == 0 || d.blockSize == 0 || d.globalCtl&GCTLDMAEnb == 0 {
		return
	}

	isWrite := d.command&CMDRWrite != 0
	if !isWrite && !d.bus.DataReady() {
		return
	}

	descAddr := d.descBase
	remaining := d.byteCount

	for i := 0; i < d.maxDescriptorChain && remaining > 0; i++ {
		buf, err := d.guestRead(descAddr, descriptorSize)
		if err != nil {
			return
		}
		desc := decodeDescriptor(buf)

		seg := desc.segmentSize()
		if seg > remaining {
			seg = remaining
		}

		if err := d.transferSegmentLocked(desc, isWrite, seg); err != nil {
			return
		}

		d.updateTransferCountLocked(seg)
		remaining -= seg
		d.byteCount = remaining

		desc.status &^= descStatusHold
		desc.encode(buf)
		if err := d.guestWrite(descAddr, buf); err != nil {
			return
		}

		if desc.status&descStatusLast != 0 {
			break
		}
		descAddr = desc.next
	}

	d.irqStatus |= RISRDataComplete | RISRAutoCmdDone
	if isWrite {
		d.dmacStatus |= IDSTTransmitIRQ
	} else {
		d.dmacStatus |= IDSTSumReceiveIRQ | IDSTReceiveIRQ
	}
}

// transferSegmentLocked moves seg bytes for one descriptor, chunked
// through a bounded intermediate buffer, between guest memory at the
// descriptor's buffer address and the card bus.
func (d *Device) transferSegmentLocked(desc descriptor, isWrite bool, seg uint32) error {
	bufAddr := desc.bufferAddr()
	var done uint32
	for done < seg {
		chunk := seg - done
		if chunk > chunkSize {
			chunk = chunkSize
		}

		if isWrite {
			buf, err := d.guestRead(bufAddr+done, int(chunk))
			if err != nil {
				return err
			}
			for _, b := range buf {
				d.bus.WriteByte(b)
			}
		} else {
			buf := make([]byte, chunk)
			for i := range buf {
				buf[i] = d.bus.ReadByte()
			}
			if err := d.guestWrite(bufAddr+done, buf); err != nil {
				return err
			}
		}
		done += chunk
	}
	return nil
}
