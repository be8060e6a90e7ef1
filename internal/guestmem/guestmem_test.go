package guestmem

import (
	"path/filepath"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.bin")
	r, err := New(path, 4096)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	want := []byte("hello guest memory")
	if _, err := r.WriteAt(want, 100); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(want))
	if _, err := r.ReadAt(got, 100); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadAt = %q, want %q", got, want)
	}
}

func TestSizeMatchesRequested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.bin")
	r, err := New(path, 8192)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Size() != 8192 {
		t.Errorf("Size() = %d, want 8192", r.Size())
	}
}

func TestOutOfRangeAccessErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.bin")
	r, err := New(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.ReadAt(make([]byte, 4), 100); err == nil {
		t.Error("expected error reading past end of region")
	}
	if _, err := r.WriteAt(make([]byte, 4), -1); err == nil {
		t.Error("expected error writing at negative offset")
	}
}

func TestBytesReflectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.bin")
	r, err := New(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.WriteAt([]byte{0xAA}, 0); err != nil {
		t.Fatal(err)
	}
	if r.Bytes()[0] != 0xAA {
		t.Errorf("Bytes()[0] = 0x%x, want 0xAA", r.Bytes()[0])
	}
}
