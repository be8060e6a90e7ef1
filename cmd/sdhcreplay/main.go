// Command sdhcreplay feeds a YAML scenario fixture of register
// accesses through an assembled SDHC core outside of `go test`, the
// same S1-S7 scenarios the package tests exercise, for manual
// poking and for scripted smoke runs against the device.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/sdhcore/ah3sdhc/internal/ccu"
	"github.com/sdhcore/ah3sdhc/internal/chipset"
	"github.com/sdhcore/ah3sdhc/internal/config"
	"github.com/sdhcore/ah3sdhc/internal/guestmem"
	"github.com/sdhcore/ah3sdhc/internal/machine"
	"github.com/sdhcore/ah3sdhc/internal/replay"
	"github.com/sdhcore/ah3sdhc/internal/sdbus"
	"github.com/sdhcore/ah3sdhc/internal/sdhc"
	"github.com/sdhcore/ah3sdhc/internal/syscon"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sdhcreplay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "device layout YAML file")
	scenarioPath := flag.String("scenario", "", "scenario YAML fixture")
	scratchPath := flag.String("scratch", "", "backing file for scratch guest memory (default: temp file)")
	flag.Parse()

	if *configPath == "" || *scenarioPath == "" {
		flag.Usage()
		return fmt.Errorf("-config and -scenario are both required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	scn, err := replay.Load(*scenarioPath)
	if err != nil {
		return err
	}

	scratch := *scratchPath
	if scratch == "" {
		f, err := os.CreateTemp("", "sdhcreplay-mem-*")
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

	targets := map[string]replay.Target{
		"sdhc":   {Base: cfg.SDHC.Base},
		"ccu":    {Base: cfg.CCU.Base},
		"syscon": {Base: cfg.Syscon.Base},
	}

	bar := progressbar.Default(int64(len(scn.Steps)), scn.Name)
	failures := 0
	results, err := replay.Run(mach, targets, scn, func(res replay.Result) {
		bar.Add(1)
		if !res.Pass {
			failures++
		}
	})
	bar.Close()
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Pass {
			continue
		}
		if res.Err != nil {
			fmt.Printf("FAIL %s: %v\n", res.Step.Name, res.Err)
			continue
		}
		fmt.Printf("FAIL %s: offset 0x%x got 0x%08x want 0x%08x\n",
			res.Step.Name, res.Step.Offset, res.Value, *res.Step.Expect)
	}

	fmt.Printf("%d/%d steps passed\n", len(results)-failures, len(results))
	if failures > 0 {
		return fmt.Errorf("%d step(s) failed", failures)
	}
	return nil
}
