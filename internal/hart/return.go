package hart

// return.go is the Trap Return Engine (spec.md section 4.4). Grounded on
// tinyrange-cc's execute.go handleMret/handleSret and the
// privilege-restoring stack-swap pattern in internal/vm/ops.go's rti.

// isImplemented reports whether mode is part of the hart's configured ISA.
func (h *Hart) isImplemented(mode Privilege) bool {
	switch mode {
	case User:
		return h.config.ISA.Has(ISAUser)
	case Supervisor:
		return h.config.ISA.Has(ISASupervisor)
	case Hypervisor:
		return h.config.ISA.Has(ISAHypervisor)
	case Machine:
		return true
	default:
		return false
	}
}

// minSupportedMode is the lowest implemented privilege: U if implemented,
// else M.
func (h *Hart) minSupportedMode() Privilege {
	if h.config.ISA.Has(ISAUser) {
		return User
	}

	return Machine
}

// clampMode silently clamps an unimplemented target privilege to the
// lowest implemented one.
func (h *Hart) clampMode(mode Privilege) Privilege {
	if h.isImplemented(mode) {
		return mode
	}

	return h.minSupportedMode()
}

// eretCommon is the common postlude shared by MRET/SRET/URET/DRET.
func (h *Hart) eretCommon(newMode Privilege, pc uint64) {
	if h.config.ISA.Has(ISACompressed) {
		pc &^= 0x1
	} else {
		pc &^= 0x3
	}

	h.privilege = newMode
	h.host.SetPC(pc)
	h.observers.notifyERET(newMode, pc)
	h.Arbitrate()
}

// MRET executes the M-mode exception return.
func (h *Hart) MRET() {
	if h.debug {
		return
	}

	newMode := h.clampMode(h.csr.MPP())

	if h.config.ClearExclusiveOnERET {
		h.state.exclusiveTag = false
	}

	h.csr.SetMIE(h.csr.MPIE())
	h.csr.SetMPIE(true)
	h.csr.SetMPP(h.minSupportedMode())

	if h.config.MPRVClearOnLowerPrivilege && newMode != Machine {
		h.csr.SetMPRV(false)
	}

	h.eretCommon(newMode, h.csr.EPC(Machine))
}

// SRET executes the S-mode exception return.
func (h *Hart) SRET() {
	if h.debug {
		return
	}

	newMode := h.clampMode(h.csr.SPP())

	if h.config.ClearExclusiveOnERET {
		h.state.exclusiveTag = false
	}

	h.csr.SetSIE(h.csr.SPIE())
	h.csr.SetSPIE(true)
	h.csr.SetSPP(h.minSupportedMode())

	if h.config.MPRVClearOnLowerPrivilege && newMode != Machine {
		h.csr.SetMPRV(false)
	}

	h.eretCommon(newMode, h.csr.EPC(Supervisor))
}

// URET executes the U-mode exception return. There is no UPP field: U is
// the lowest mode, so the return target is always User.
func (h *Hart) URET() {
	if h.debug {
		return
	}

	if h.config.ClearExclusiveOnERET {
		h.state.exclusiveTag = false
	}

	h.csr.SetUIE(h.csr.UPIE())
	h.csr.SetUPIE(true)

	h.eretCommon(User, h.csr.EPC(User))
}

// DRET executes the debug-mode exception return. Outside of debug mode it
// is an illegal instruction.
func (h *Hart) DRET() {
	if !h.debug {
		h.IllegalInstruction(0)
		return
	}

	h.leaveDM()
}
