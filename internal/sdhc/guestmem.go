package sdhc

// guestRead and guestWrite are the two host-physical memory primitives
// the DMA Descriptor Walker is built on (§9's design note): byte-slice
// in, byte-slice out, with no aliasing of host and guest memory
// through a raw pointer. Both are thin wrappers over the platform's
// io.ReaderAt/io.WriterAt-shaped VirtualMachine.
func (d *Device) guestRead(addr uint32, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := d.vm.ReadAt(buf, int64(addr)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Device) guestWrite(addr uint32, buf []byte) error {
	_, err := d.vm.WriteAt(buf, int64(addr))
	return err
}
