package hart

// delegation.go computes the target privilege mode for a trap from the
// medeleg/mideleg/sedeleg/sideleg CSRs. Grounded on the delegation branch of
// tinyrange-cc's internal/hv/riscv/rv64/csr.go HandleTrap, restated as the
// small standalone function spec.md's section 4.2 describes.

// targetMode computes the privilege mode a trap with the given cause should
// be delivered to, per spec.md section 4.2. The result is never lower than
// h.privilege, the hart's privilege mode at the time of the trap.
func (h *Hart) targetMode(cause Cause) Privilege {
	mMask := h.csr.EDeleg(Machine)
	sMask := h.csr.EDeleg(Supervisor)

	if cause.Interrupt {
		mMask = h.csr.IDeleg(Machine)
		sMask = h.csr.IDeleg(Supervisor)
	}

	// Resolved Open Question #2 (see DESIGN.md): never trust the CSR bank
	// alone to zero these masks when a level is absent from the ISA.
	if !h.config.ISA.Has(ISASupervisor) {
		mMask = 0
		sMask = 0
	}

	if !h.config.ISA.Has(ISAUser) {
		sMask = 0
	}

	bit := uint64(1) << uint(cause.Code)

	var target Privilege

	switch {
	case mMask&bit == 0:
		target = Machine
	case sMask&bit == 0:
		target = Supervisor
	default:
		target = User
	}

	return max(target, h.privilege)
}
