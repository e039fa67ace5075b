package hart

// wfi.go is the WFI (Wait For Interrupt) handler, spec.md section 4.9.
// Grounded on internal/vm/cpu.go's RTI-adjacent halt/resume bookkeeping,
// generalized to RISC-V's "wake on any pending bit, regardless of global
// enable or delegation" rule.

// WFI executes the WFI instruction: the hart halts until any bit of mip
// becomes pending, without regard to mie, mideleg, or sideleg. A pending
// bit that is masked from ever causing a trap under the current
// configuration still wakes the hart; it simply resumes at the
// instruction after WFI instead of trapping.
func (h *Hart) WFI() {
	if h.debug {
		return
	}

	if h.mip() != 0 {
		return
	}

	h.disable.Set(DisableWFI)
	h.host.Halted(DisableWFI)
}

// wake is called on every write to a pending-interrupt port while the hart
// is halted in WFI. It restarts the hart when any mip bit is pending after
// the write, regardless of mie or delegation; a write that leaves mip zero
// keeps the hart halted.
func (h *Hart) wake() {
	if !h.disable.Has(DisableWFI) || h.mip() == 0 {
		return
	}

	h.disable.Clear(DisableWFI)
	h.host.Restarted(DisableWFI)
}
