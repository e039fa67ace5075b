package hart

// fetchgate.go is the Fetch Gate (spec.md section 4.8): the single
// checkpoint a host's fetch loop must consult before committing to an
// instruction fetch at a given address. Grounded on the fetch-decode
// boundary in internal/vm/exec.go, generalized from the LC-3's single flat
// address space to page-fault-capable translation plus pending interrupts.

// FetchGate implements the five-step algorithm of section 4.8: the
// resethaltreqS check, the haltreq check, the interrupt arbiter, and the
// executability check, in that order. address is the PC the host is about
// to fetch from. complete is false for a speculative probe (e.g.
// prefetch/branch-prediction) that must not commit any state change, and
// true for the fetch the host is actually about to execute.
//
// On FetchException the host must re-read PC: TakeException has already
// redirected it to the handler. On FetchNone the host may fetch at address
// unchanged. FetchPending is returned for a speculative (complete=false)
// probe that would trap or hit a non-executable address, and for any call,
// committed or not, while the hart is in debug mode, held in reset, or
// stopped in WFI.
func (h *Hart) FetchGate(address uint64, complete bool) FetchStatus {
	if h.debug || h.disable.Has(DisableReset) {
		return FetchPending
	}

	if h.disable.Has(DisableWFI) {
		return FetchPending
	}

	if h.net.resethaltreqS {
		if !complete {
			return FetchPending
		}

		h.net.resethaltreqS = false
		h.enterDM(DebugResetHaltReq)

		return FetchException
	}

	if h.net.haltreq {
		if !complete {
			return FetchPending
		}

		h.HaltRequest()

		return FetchException
	}

	if !complete {
		if cause, ok := h.SelectInterrupt(); ok {
			_ = cause
			return FetchPending
		}

		if !h.host.Executable(address) {
			return FetchPending
		}

		return FetchNone
	}

	if cause, ok := h.SelectInterrupt(); ok {
		h.TakeException(cause, 0)
		return FetchException
	}

	if !h.host.Executable(address) {
		h.host.Miss(address)

		if !h.host.Executable(address) {
			h.MemoryFault(InstructionAccessFault, address, 0)
			return FetchException
		}
	}

	return FetchNone
}
