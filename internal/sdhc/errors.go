package sdhc

import (
	"log/slog"

	"github.com/sdhcore/ah3sdhc/internal/guestlog"
)

// guestErrorLog adds the SDHC-specific guest-misuse cases (FIFO
// underrun, response-length mismatch) on top of the shared
// rate-limited offset logger in internal/guestlog.
type guestErrorLog struct {
	*guestlog.Log
}

func newGuestErrorLog() *guestErrorLog {
	return &guestErrorLog{Log: guestlog.New("sdhc")}
}

func (l *guestErrorLog) badOffset(offset uint64, op string)    { l.BadOffset(offset, op) }
func (l *guestErrorLog) badAccessSize(offset uint64, size int) { l.BadAccessSize(offset, size) }

func (l *guestErrorLog) fifoNotReady() {
	if l.Allow(RegFIFO) {
		slog.Warn("sdhc: guest read FIFO with no data ready")
	}
}

func (l *guestErrorLog) responseMismatch(cmd uint8, gotLen int) {
	if l.Allow(RegCMDR) {
		slog.Warn("sdhc: card response length mismatch",
			"cmd", cmd, "len", gotLen)
	}
}
