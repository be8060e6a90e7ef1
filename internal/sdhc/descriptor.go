package sdhc

import "encoding/binary"

// descriptorSize is the on-the-wire size of one transfer descriptor in
// guest memory (§3): four little-endian u32 fields.
const descriptorSize = 16

// Transfer descriptor status flags.
const (
	descStatusHold  = 1 << 31
	descStatusError = 1 << 30
	descStatusChain = 1 << 4
	descStatusFirst = 1 << 3
	descStatusLast  = 1 << 2
	descStatusNoIRQ = 1 << 1

	descAddrMask = 0xFFFFFFFC
)

// descriptor is the DMA transfer descriptor format from §3, decoded
// from its 16-byte guest-memory representation.
type descriptor struct {
	status uint32
	size   uint32
	addr   uint32
	next   uint32
}

func decodeDescriptor(buf []byte) descriptor {
	return descriptor{
		status: binary.LittleEndian.Uint32(buf[0:4]),
		size:   binary.LittleEndian.Uint32(buf[4:8]),
		addr:   binary.LittleEndian.Uint32(buf[8:12]),
		next:   binary.LittleEndian.Uint32(buf[12:16]),
	}
}

func (desc descriptor) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], desc.status)
	binary.LittleEndian.PutUint32(buf[4:8], desc.size)
	binary.LittleEndian.PutUint32(buf[8:12], desc.addr)
	binary.LittleEndian.PutUint32(buf[12:16], desc.next)
}

// segmentSize returns how many bytes this descriptor covers: size==0
// means 64 KiB (§3), never zero.
func (desc descriptor) segmentSize() uint32 {
	if desc.size == 0 {
		return 0x10000
	}
	return desc.size
}

func (desc descriptor) bufferAddr() uint32 {
	return desc.addr & descAddrMask
}
