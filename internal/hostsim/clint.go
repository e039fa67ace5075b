package hostsim

import (
	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/log"
)

// clint.go is a minimal CLINT-like device: a free-running mtime counter, a
// per-hart mtimecmp comparator, and a per-hart msip software-interrupt
// register. Grounded on internal/vm/kbd.go's device-driver shape (a small
// struct wired to the hart's port methods instead of to the LC-3's
// memory-mapped I/O bus, since CSR/MMIO decoding is out of internal/hart's
// scope).
type CLINT struct {
	h *hart.Hart

	mtime    uint64
	mtimecmp uint64
	msip     bool

	log *log.Logger
}

// NewCLINT creates a CLINT wired to h.
func NewCLINT(h *hart.Hart) *CLINT {
	return &CLINT{h: h, mtimecmp: ^uint64(0), log: log.DefaultLogger()}
}

// Tick advances mtime by one and re-evaluates the timer comparator,
// asserting or deasserting the machine-timer-interrupt port as needed.
// Called once per retired instruction or once per host clock tick,
// depending on how precisely the surrounding kernel wants to model time.
func (c *CLINT) Tick() {
	c.mtime++
	c.updateTimer()
}

func (c *CLINT) updateTimer() {
	pending := c.mtime >= c.mtimecmp
	c.h.SetInterruptPending(0, uint(hart.MTimerInterrupt), pending)
}

// SetMtimecmp programs the comparator. Writing a value not yet reached
// clears any currently pending timer interrupt, per the standard CLINT's
// level-triggered semantics.
func (c *CLINT) SetMtimecmp(v uint64) {
	c.mtimecmp = v
	c.updateTimer()
}

func (c *CLINT) Mtime() uint64 { return c.mtime }

// SetMSIP sets or clears the machine-software-interrupt line.
func (c *CLINT) SetMSIP(v bool) {
	c.msip = v
	c.h.SetSoftwareInterrupt(v)
}

func (c *CLINT) MSIP() bool { return c.msip }
