// Package guestlog implements the rate-limited guest-misuse logging
// policy shared by the board's register-file peripherals: log once per
// offset at a bounded rate, then let the caller fall back to a benign
// value instead of aborting. Extracted out of the SDHC core so the CCU
// and SYSCON companions get the same policy without duplicating the
// limiter bookkeeping three times.
package guestlog

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// Log rate-limits warnings per register offset for one device.
type Log struct {
	device string

	mu       sync.Mutex
	limiters map[uint64]*rate.Limiter
}

// New creates a Log whose lines are tagged with device (e.g. "sdhc",
// "ccu", "syscon").
func New(device string) *Log {
	return &Log{device: device, limiters: make(map[uint64]*rate.Limiter)}
}

// Allow reports whether a line for offset may be logged right now,
// creating that offset's limiter on first use. One token per second
// with a burst of one: the first occurrence always logs, repeats
// beyond that trickle in at 1 Hz.
func (l *Log) Allow(offset uint64) bool {
	l.mu.Lock()
	lim, ok := l.limiters[offset]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(1), 1)
		l.limiters[offset] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// BadOffset logs a guest access to an offset the device's register
// table doesn't recognize.
func (l *Log) BadOffset(offset uint64, op string) {
	if l.Allow(offset) {
		slog.Warn(l.device+": guest accessed unrecognized register",
			"op", op, "offset", fmt.Sprintf("0x%x", offset))
	}
}

// BadAccessSize logs a non-32-bit access at offset.
func (l *Log) BadAccessSize(offset uint64, size int) {
	if l.Allow(offset) {
		slog.Warn(l.device+": guest used unsupported access size",
			"offset", fmt.Sprintf("0x%x", offset), "size", size)
	}
}
