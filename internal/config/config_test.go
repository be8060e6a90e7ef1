package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0x1c0f000
  irq_line: 32
ccu:
  base: 0x1c20000
syscon:
  base: 0x1c00000
card:
  image: sdcard.img
  size: 1048576
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SDHC.Base != 0x1c0f000 {
		t.Errorf("SDHC.Base = 0x%x, want 0x1c0f000", cfg.SDHC.Base)
	}
	if cfg.Card.Size != 1048576 {
		t.Errorf("Card.Size = %d, want 1048576", cfg.Card.Size)
	}
}

func TestLoadMissingCardImageFails(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0x1c0f000
ccu:
  base: 0x1c20000
syscon:
  base: 0x1c00000
card:
  size: 1024
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for missing card.image")
	}
}

func TestLoadOverlappingDevicesFails(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0x1000
ccu:
  base: 0x1000
syscon:
  base: 0x2000
card:
  image: sdcard.img
  size: 1024
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for overlapping sdhc/ccu regions")
	}
}

func TestLoadNonexistentFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/layout.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadZeroBaseFails(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0
ccu:
  base: 0x1c20000
syscon:
  base: 0x1c00000
card:
  image: sdcard.img
  size: 1024
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for a zero sdhc.base")
	}
}

func TestLoadUndersizedMmioWindowFails(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0x1c0f000
  size: 0x100
ccu:
  base: 0x1c20000
syscon:
  base: 0x1c00000
card:
  image: sdcard.img
  size: 1024
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for an sdhc.size smaller than its register footprint")
	}
}

func TestLoadDescriptorChainLimitIsOptional(t *testing.T) {
	path := writeTempConfig(t, `
sdhc:
  base: 0x1c0f000
  descriptor_chain_limit: 16
ccu:
  base: 0x1c20000
syscon:
  base: 0x1c00000
card:
  image: sdcard.img
  size: 1024
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SDHC.DescriptorChainLimit != 16 {
		t.Errorf("SDHC.DescriptorChainLimit = %d, want 16", cfg.SDHC.DescriptorChainLimit)
	}
}
