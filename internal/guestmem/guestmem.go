// Package guestmem provides an mmap-backed guest memory region for
// hosting SDHC and its companions outside of a real hypervisor: the
// inspector and replay tools need something that implements
// io.ReaderAt/io.WriterAt over a flat byte range the way a VM's RAM
// does, without pulling in a full hypervisor backend.
package guestmem

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a fixed-size block of host memory, mmap'd from a backing
// file so its contents can outlive the process if the file is kept.
type Region struct {
	file *os.File
	data []byte
}

// New creates or truncates path to size bytes and maps it read-write.
func New(path string, size int64) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("guestmem: open %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("guestmem: truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("guestmem: mmap %s: %w", path, err)
	}

	return &Region{file: f, data: data}, nil
}

// Close unmaps the region and closes the backing file.
func (r *Region) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("guestmem: munmap: %w", err)
	}
	return r.file.Close()
}

// Size returns the region's length in bytes.
func (r *Region) Size() uint64 { return uint64(len(r.data)) }

// ReadAt implements io.ReaderAt.
func (r *Region) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(r.data)) {
		return 0, fmt.Errorf("guestmem: read offset %d out of range", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("guestmem: short read at offset %d", off)
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (r *Region) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(r.data)) {
		return 0, fmt.Errorf("guestmem: write offset %d out of range", off)
	}
	n := copy(r.data[off:], p)
	if n < len(p) {
		return n, fmt.Errorf("guestmem: short write at offset %d", off)
	}
	return n, nil
}

// Bytes returns the region's backing slice directly, for tools that
// want to dump or diff memory without going through ReadAt.
func (r *Region) Bytes() []byte { return r.data }
