package hart

// entry.go is the Trap Entry Engine (spec.md section 4.3). Grounded on
// tinyrange-cc's internal/hv/riscv/rv64/csr.go HandleTrap for the mode
// switch / PIE-IE save-clear / vectored-PC arithmetic, and on the
// error-as-trap pattern in internal/vm/intr.go's interrupt/acv types for the
// convenience-entry-point shape.

// TakeException is the Trap Entry Engine. cause identifies the trap; tval
// is the architectural trap value (faulting address, raw instruction word,
// or zero, depending on the trap).
func (h *Hart) TakeException(cause Cause, tval uint64) {
	if h.debug {
		// A trap raised while already in debug mode aborts any
		// in-progress program-buffer repeat instruction and simply
		// re-enters debug (enterDM is idempotent when DM is already
		// set: it only refreshes the stall).
		h.host.AbortRepeat()
		h.enterDM(DebugNone)

		return
	}

	if !isRetireExcluded(cause) && !h.csr.InstructionRetireInhibited() {
		h.csr.IncrementInstructions()
	}

	if !cause.Interrupt && isAccessFaultCode(cause.Code) {
		h.state.afErrorOut = h.state.afErrorIn
	} else {
		h.state.afErrorOut = false
	}

	h.state.exclusiveTag = false

	target := h.targetMode(cause)
	reported := h.reportedCause(cause, target)
	previous := h.privilege

	oldIE := getXIE(h.csr, target)
	setXPIE(h.csr, target, oldIE)
	setXIE(h.csr, target, false)

	h.csr.SetCause(target, reported)
	h.csr.SetEPC(target, h.host.PC())
	h.csr.SetTVal(target, tval)

	if target == Supervisor || target == Machine {
		setXPP(h.csr, target, previous)
	}

	base, tvecMode := h.csr.Tvec(target)
	handler := h.computeHandlerPC(base, tvecMode, reported)

	h.privilege = target
	h.lastException = reported
	h.host.SetPC(handler)

	h.observers.notifyTrap(reported, target)
}

// reportedCause substitutes the claimed external-interrupt ID for the
// architectural code, per spec.md section 4.3 step 7.
func (h *Hart) reportedCause(cause Cause, target Privilege) Cause {
	if !cause.Interrupt || !isExternalInterruptCode(cause.Code) {
		return cause
	}

	if id := h.extInt[target]; id != 0 {
		return Interrupted(ExceptionCode(id))
	}

	return cause
}

// computeHandlerPC implements section 4.3 step 9, including the resolution
// of Open Question #1 from the design notes: the legacy custom-mode
// override is consulted only when the standard tvec.MODE field reads zero.
func (h *Hart) computeHandlerPC(base uint64, tvecMode TvecMode, cause Cause) uint64 {
	if tvecMode == TvecVectored && cause.Interrupt {
		return base + 4*uint64(cause.Code)
	}

	if tvecMode == TvecDirect && h.config.LegacyVectorMode && h.config.CustomVector != nil {
		if addr, ok := h.config.CustomVector(h.privilege, cause); ok {
			return addr
		}
	}

	return base
}

func isRetireExcluded(cause Cause) bool {
	if cause.Interrupt {
		return false
	}

	switch cause.Code {
	case Breakpoint, ECallFromU, ECallFromS, ECallFromH, ECallFromM:
		return true
	default:
		return false
	}
}

func isAccessFaultCode(code ExceptionCode) bool {
	switch code {
	case InstructionAccessFault, LoadAccessFault, StoreAMOAccessFault:
		return true
	default:
		return false
	}
}

func isExternalInterruptCode(code ExceptionCode) bool {
	switch code {
	case UExternalInterrupt, SExternalInterrupt, MExternalInterrupt:
		return true
	default:
		return false
	}
}

// Mode-field accessors. Design Notes section 9 calls for replacing the
// macro-generated TARGET_MODE_X code paths with a table keyed by target
// mode; since the per-mode CSR fields live on an interface rather than a
// concrete struct, the table is expressed as a switch rather than a map of
// closures, but it plays the same role: one place that knows which mstatus
// field corresponds to which privilege level.
func getXIE(csr MstatusAccessor, mode Privilege) bool {
	switch mode {
	case Machine:
		return csr.MIE()
	case Supervisor:
		return csr.SIE()
	default:
		return csr.UIE()
	}
}

func setXIE(csr MstatusAccessor, mode Privilege, v bool) {
	switch mode {
	case Machine:
		csr.SetMIE(v)
	case Supervisor:
		csr.SetSIE(v)
	default:
		csr.SetUIE(v)
	}
}

func setXPIE(csr MstatusAccessor, mode Privilege, v bool) {
	switch mode {
	case Machine:
		csr.SetMPIE(v)
	case Supervisor:
		csr.SetSPIE(v)
	default:
		csr.SetUPIE(v)
	}
}

func getXPIE(csr MstatusAccessor, mode Privilege) bool {
	switch mode {
	case Machine:
		return csr.MPIE()
	case Supervisor:
		return csr.SPIE()
	default:
		return csr.UPIE()
	}
}

func setXPP(csr MstatusAccessor, mode Privilege, pp Privilege) {
	switch mode {
	case Machine:
		csr.SetMPP(pp)
	case Supervisor:
		csr.SetSPP(pp)
	}
}

func getXPP(csr MstatusAccessor, mode Privilege) Privilege {
	switch mode {
	case Machine:
		return csr.MPP()
	case Supervisor:
		return csr.SPP()
	default:
		return User
	}
}

// Convenience entry points (spec.md section 4.3).

// IllegalInstruction takes the illegal-instruction exception. tval is zero
// unless the hart is configured to report the raw instruction word.
func (h *Hart) IllegalInstruction(instr uint64) {
	tval := uint64(0)
	if h.config.TValInstructionCode {
		tval = instr
	}

	h.TakeException(Exception(IllegalInstruction), tval)
}

// InstructionAddressMisaligned takes the misaligned-fetch exception.
func (h *Hart) InstructionAddressMisaligned(addr uint64) {
	h.TakeException(Exception(InstructionAddressMisaligned), addr&^1)
}

// ECall takes the environment-call exception appropriate to the current
// privilege mode.
func (h *Hart) ECall() {
	code := ECallFromU + ExceptionCode(h.privilege)
	h.TakeException(Exception(code), 0)
}

// MemoryFault takes a misaligned/access/page-fault memory exception, first
// applying fault-only-first suppression when the hart is configured with
// the vector extension and a first-only-fault vector instruction is in
// flight. vectorElement is the index of the element that faulted; pass 0
// for non-vector accesses, which can never suppress.
func (h *Hart) MemoryFault(code ExceptionCode, addr uint64, vectorElement uint64) {
	if h.config.ISA.Has(ISAVector) {
		h.csr.SetVStart(vectorElement)

		if h.csr.FirstFault() && h.csr.VStart() > 0 {
			h.csr.SetVL(h.csr.VStart())
			h.csr.SetFirstFault(false)
			h.csr.RefreshPolymorphicKey()

			return
		}
	}

	h.TakeException(Exception(code), addr)
}
