package hart

// debug.go is the Debug-Mode Controller (spec.md section 4.6). Grounded on
// the halt/restart bookkeeping in internal/vm/cpu.go's service-routine
// handling, generalized from the single LC-3 TRAP-halt case to the five
// independent debug-entry causes external debug hardware can assert.

// enterDM drives the hart into debug mode for the given cause. Calling it
// while already in debug mode is idempotent: it only updates dcsr.cause on
// the first call for a given halt, matching the "debug cause is sticky
// until the next DM entry from run mode" rule external debuggers rely on.
func (h *Hart) enterDM(cause DebugCause) {
	alreadyIn := h.debug

	if !alreadyIn {
		h.csr.SetDPC(h.host.PC())
		h.csr.SetDCSRPrv(h.privilege)
		h.csr.SetDCSRCause(cause)
		h.privilege = Machine
	}

	h.debug = true
	h.disable.Set(DisableDebug)

	if h.stepTimer != 0 {
		h.host.TimerDelete(h.stepTimer)
		h.stepTimer = 0
	}

	if !alreadyIn {
		switch h.config.DebugPolicy {
		case DebugEntryInterrupt:
			h.host.PostInterrupt()
		default:
			h.host.Halted(DisableDebug)
		}
	}
}

// leaveDM executes DRET: restores privilege and PC from dpc/dcsr.prv and
// resumes normal execution. If single-step was requested (dcsr.step) it
// arms a one-instruction model-timer that re-enters debug mode on the next
// retired instruction.
func (h *Hart) leaveDM() {
	h.debug = false
	h.disable.Clear(DisableDebug)

	target := h.clampMode(h.csr.DCSRPrv())
	pc := h.csr.DPC()

	if h.csr.DCSRStep() {
		h.stepTimer = h.host.TimerCreate(func() {
			h.enterDM(DebugStep)
		})
		h.host.TimerSet(h.stepTimer, 1)
	}

	h.host.Restarted(DisableDebug)
	h.eretCommon(target, pc)
}

// EBreak executes the EBREAK instruction: it enters debug mode when the
// current privilege's dcsr.ebreak{u,s,m} bit is set, and otherwise takes
// the ordinary Breakpoint exception. Entering debug mode normally inhibits
// instruction retirement, so when dcsr.stopcount is set, the EBREAK that
// triggers entry is pre-incremented here to count as retired before that
// inhibit takes effect.
func (h *Hart) EBreak() {
	if h.csr.DCSREBreak(h.privilege) {
		if h.csr.DCSRStopCount() {
			h.csr.IncrementInstructions()
		}

		h.enterDM(DebugEBreak)

		return
	}

	h.TakeException(Exception(Breakpoint), h.host.PC())
}

// HaltRequest asserts the external haltreq debug signal (spec.md section
// 4.7). It is level-triggered: calling it while already halted in debug
// mode has no further effect. Invoked by the Fetch Gate, not by the haltreq
// port write itself: see HaltReq in ports.go.
func (h *Hart) HaltRequest() {
	if h.debug {
		return
	}

	h.enterDM(DebugHaltReq)
}
