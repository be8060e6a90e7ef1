// Command sdhcinspect assembles an SDHC core and its register-file
// companions from a device-layout config and prints their register
// state, the way a JTAG register dump or a QEMU "info mtree" would, for
// a core that otherwise only speaks MMIO.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/sdhcore/ah3sdhc/internal/ccu"
	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/config"
	"github.com/sdhcore/ah3sdhc/internal/fdt"
	"github.com/sdhcore/ah3sdhc/internal/guestmem"
	"github.com/sdhcore/ah3sdhc/internal/machine"
	"github.com/sdhcore/ah3sdhc/internal/sdbus"
	"github.com/sdhcore/ah3sdhc/internal/sdhc"
	"github.com/sdhcore/ah3sdhc/internal/syscon"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sdhcinspect: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "device layout YAML file")
	scratchPath := flag.String("scratch", "", "backing file for scratch guest memory (default: temp file)")
	fdtPath := flag.String("fdt", "", "write a device-tree blob for this layout to this path and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *configPath == "" {
		flag.Usage()
		return fmt.Errorf("-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if *fdtPath != "" {
		blob, err := fdt.Build(cfg.DeviceTree())
		if err != nil {
			return fmt.Errorf("build device tree: %w", err)
		}
		if err := os.WriteFile(*fdtPath, blob, 0o644); err != nil {
			return fmt.Errorf("write device tree: %w", err)
		}
		return nil
	}

	scratch := *scratchPath
	if scratch == "" {
		f, err := os.CreateTemp("", "sdhcinspect-mem-*")
		if err != nil {
			return fmt.Errorf("create scratch memory file: %w", err)
		}
		scratch = f.Name()
		f.Close()
		defer os.Remove(scratch)
	}

	mem, err := guestmem.New(scratch, 1<<20)
	if err != nil {
		return fmt.Errorf("map scratch memory: %w", err)
	}
	defer mem.Close()

	mach := machine.New(mem)

	card := sdbus.NewMemCard(int(cfg.Card.Size))
	card.SetReadOnly(cfg.Card.ReadOnly)

	sdhcIRQ := chipset.LineInterruptFromFunc(func(level bool) {
		mach.SetIRQ(cfg.SDHC.IRQLine, level)
	})
	host := sdhc.New(sdhc.Config{Base: cfg.SDHC.Base, IRQLine: sdhcIRQ, Bus: card, MaxDescriptorChain: cfg.SDHC.DescriptorChainLimit})
	if err := mach.AddDevice(host); err != nil {
		return fmt.Errorf("add sdhc device: %w", err)
	}

	clk := ccu.New(ccu.Config{Base: cfg.CCU.Base})
	if err := mach.AddDevice(clk); err != nil {
		return fmt.Errorf("add ccu device: %w", err)
	}

	sys := syscon.New(syscon.Config{Base: cfg.Syscon.Base})
	if err := mach.AddDevice(sys); err != nil {
		return fmt.Errorf("add syscon device: %w", err)
	}

	if err := mach.Build(); err != nil {
		return err
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))

	printHeader(fmt.Sprintf("sdhc @ 0x%08x", cfg.SDHC.Base), color)
	if err := dumpSDHC(mach, cfg.SDHC.Base, color); err != nil {
		return err
	}

	fmt.Println()
	printHeader(fmt.Sprintf("irq line %d level: %v", cfg.SDHC.IRQLine, mach.IRQLevel(cfg.SDHC.IRQLine)), color)

	return nil
}

func printHeader(title string, color bool) {
	width := 72
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	if len(title) > width {
		title = title[:width]
	}
	if color {
		title = ansi.Style{}.Bold().Styled(title)
	}
	fmt.Println(title)
}

func dumpSDHC(mach *machine.Machine, base uint64, color bool) error {
	for _, reg := range sdhc.NamedRegisters() {
		var buf [4]byte
		if err := mach.DispatchMMIO(base+reg.Offset, buf[:], false); err != nil {
			return fmt.Errorf("read %s: %w", reg.Name, err)
		}
		value := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		line := fmt.Sprintf("  %-14s 0x%03x = 0x%08x", reg.Name, reg.Offset, value)
		if color && value != 0 {
			line = ansi.Style{}.Bold().Styled(line)
		} else if color {
			line = ansi.Style{}.Faint().Styled(line)
		}
		fmt.Println(line)
	}
	return nil
}
