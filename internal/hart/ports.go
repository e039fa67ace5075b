package hart

import "fmt"

// ports.go is the External Signal Port boundary (spec.md section 4.7): the
// handful of level- and edge-triggered lines the host or a debug transport
// drives into the hart. Grounded on internal/vm/intr.go's Interrupt line and
// generalized to the full RISC-V set of reset/nmi/haltreq/external-id ports.

// riscvReset executes the section-4.7 reset sequence: privilege forced to
// Machine, debug mode cleared, all pending bits dropped, PC set to
// Config.ResetAddr, and observers notified. resethaltreq is level-latched
// across the reset edge and sampled into resethaltreqS, which the Fetch
// Gate consults on the first fetch out of reset to decide whether to halt
// in debug mode instead of running from ResetAddr (spec.md section 4.8).
func (h *Hart) riscvReset() {
	h.privilege = Machine
	h.debug = false
	h.disable = DisableSet(0)

	for i := range h.ip {
		h.ip[i] = 0
	}

	h.swip = 0
	h.state = intState{}

	resethaltreq := h.net.resethaltreq
	h.net = netValue{resethaltreq: resethaltreq, resethaltreqS: resethaltreq}

	if h.stepTimer != 0 {
		h.host.TimerDelete(h.stepTimer)
		h.stepTimer = 0
	}

	h.host.SetPC(h.config.ResetAddr)
	h.observers.notifyReset()
}

// Reset asserts the external reset port. A level-triggered reset holds the
// hart disabled until ReleaseReset is called; riscvReset runs once, on the
// falling edge, matching real reset-controller behavior.
func (h *Hart) Reset() {
	if h.net.reset {
		return
	}

	h.net.reset = true
	h.disable.Set(DisableReset)
	h.host.Halted(DisableReset)
}

// ReleaseReset deasserts the external reset port and runs the reset
// sequence.
func (h *Hart) ReleaseReset() {
	if !h.net.reset {
		return
	}

	h.net.reset = false
	h.riscvReset()
	h.disable.Clear(DisableReset)
	h.host.Restarted(DisableReset)
}

// NMI asserts the non-maskable-interrupt port. Unlike standard interrupts,
// an NMI is not subject to delegation, priority arbitration, or the global
// enable bits: it is taken immediately at the next instruction boundary by
// jumping directly to Config.NMIAddr, saving only enough state (via mepc
// and mstatus.mpp/mpie, the same fields an ordinary M-mode trap uses) to
// resume, writing mcause as 0, and mirroring the asserted level into
// dcsr.nmip. Calling it is idempotent while already latched.
func (h *Hart) NMI() {
	if h.net.nmi {
		return
	}

	h.net.nmi = true
	h.csr.SetDCSRNMIP(true)

	previous := h.privilege
	oldIE := h.csr.MIE()

	h.csr.SetMPIE(oldIE)
	h.csr.SetMIE(false)
	h.csr.SetMPP(previous)
	h.csr.SetCause(Machine, Exception(0))
	h.csr.SetEPC(Machine, h.host.PC())

	h.privilege = Machine
	h.host.SetPC(h.config.NMIAddr)
}

// ClearNMI deasserts the NMI port, allowing a subsequent edge to retrigger
// it. The architecture leaves acknowledgement to implementation-defined
// means; here it is simply clearing the latch once the handler has noticed
// it via the DebugAccessor's NMIP-mirroring field.
func (h *Hart) ClearNMI() {
	h.net.nmi = false
	h.csr.SetDCSRNMIP(false)
}

// HaltReq asserts the external haltreq debug-module signal. Per spec.md
// section 4.7, a rising edge outside debug mode does not enter debug
// synchronously from the port write: it posts a synchronous interrupt so
// the Fetch Gate enters debug mode at the next fetch (section 4.8, step 2),
// preserving the suspension-point ordering model in section 5.
func (h *Hart) HaltReq() {
	rising := !h.net.haltreq
	h.net.haltreq = true

	if rising && !h.debug {
		h.host.PostInterrupt()
	}
}

// ClearHaltReq deasserts haltreq.
func (h *Hart) ClearHaltReq() {
	h.net.haltreq = false
}

// ResetHaltReq asserts resethaltreq: the hart halts in debug mode
// immediately after the next reset, instead of running from ResetAddr.
func (h *Hart) ResetHaltReq() {
	h.net.resethaltreq = true
}

// ClearResetHaltReq deasserts resethaltreq.
func (h *Hart) ClearResetHaltReq() {
	h.net.resethaltreq = false
}

// SetInterruptPending sets or clears one local interrupt-pending line, word
// i, bit within the word. Writing a standard cause's bit in word 0 (e.g.
// MExternalInterrupt) is how a host models a level-sensitive external
// interrupt controller; MSoftwareInterrupt/MTimerInterrupt are ordinarily
// driven by the CLINT instead (through SetSoftwareInterrupt and its timer
// comparator). Every write re-runs the arbiter, per spec.md section 4.5's
// "every relevant port write" rule. The pending vector is sized at
// construction; a word index outside it panics.
func (h *Hart) SetInterruptPending(word int, bit uint, level bool) {
	if word < 0 || word >= len(h.ip) {
		panic(fmt.Sprintf("hart: interrupt-pending word %d out of range (%d words)", word, len(h.ip)))
	}

	mask := uint64(1) << bit

	if level {
		h.ip[word] |= mask
	} else {
		h.ip[word] &^= mask
	}

	if word == 0 && h.disable.Has(DisableWFI) {
		h.wake()
	}

	h.Arbitrate()
}

// SetSoftwareInterrupt sets or clears the machine-software-interrupt line,
// the one standard interrupt source architecturally driven by a CSR write
// (msip) rather than a dedicated port.
func (h *Hart) SetSoftwareInterrupt(level bool) {
	mask := uint64(1) << uint(MSoftwareInterrupt)

	if level {
		h.swip |= mask
	} else {
		h.swip &^= mask
	}

	if h.disable.Has(DisableWFI) {
		h.wake()
	}

	h.Arbitrate()
}

// ClaimExternal sets the per-mode external-interrupt ID substituted into
// mcause/scause/ucause on report, per section 4.3 step 7. id of zero clears
// the claim.
func (h *Hart) ClaimExternal(mode Privilege, id uint64) {
	if id == 0 {
		delete(h.extInt, mode)
		return
	}

	h.extInt[mode] = id
}
