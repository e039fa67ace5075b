package hart

// arbiter.go is the Interrupt Arbiter (spec.md section 4.5). Grounded on
// tinyrange-cc's internal/hv/riscv/rv64/csr.go CheckInterrupt fixed-priority
// scan, restated as the static priority table Design Notes section 9 calls
// for instead of a sequence of if-statements.

// interruptPriority is the fixed architectural priority within a
// destination mode: lower rank wins. Causes absent from the table (locals,
// custom) share the lowest rank and are then broken by numeric code, per
// Design Notes section 9.
var interruptPriority = map[ExceptionCode]int{
	MExternalInterrupt: 0,
	MSoftwareInterrupt: 1,
	MTimerInterrupt:    2,
	SExternalInterrupt: 3,
	SSoftwareInterrupt: 4,
	STimerInterrupt:    5,
	UExternalInterrupt: 6,
	USoftwareInterrupt: 7,
	UTimerInterrupt:    8,
}

const localPriorityBase = 1 << 16

func priorityRank(code ExceptionCode) int {
	if r, ok := interruptPriority[code]; ok {
		return r
	}

	return localPriorityBase + int(code)
}

// effectiveEnable implements "MIE_eff = current<M ? 1 : current>M ? 0 : MIE"
// (and the symmetric rule for SIE/UIE), using the fact that Privilege's
// iota order (User < Supervisor < Hypervisor < Machine) matches the
// architectural privilege ordering.
func effectiveEnable(current, level Privilege, raw bool) bool {
	switch {
	case current < level:
		return true
	case current > level:
		return false
	default:
		return raw
	}
}

// mip returns the CSR-visible machine interrupt-pending value: ip[0] | swip,
// per invariant 2.
func (h *Hart) mip() uint64 {
	return h.ip[0] | h.swip
}

// pendingEnabled computes the pending-and-enabled set per spec.md section
// 4.5, masked to zero while in debug mode.
func (h *Hart) pendingEnabled() uint64 {
	if h.debug {
		return 0
	}

	pending := h.csr.IE(Machine) & h.mip()

	mideleg := h.csr.IDeleg(Machine)
	sideleg := h.csr.IDeleg(Supervisor)

	if !h.config.ISA.Has(ISASupervisor) {
		mideleg = 0
		sideleg = 0
	}

	if !h.config.ISA.Has(ISAUser) {
		sideleg = 0
	}

	mMask := ^mideleg
	sMask := mideleg &^ sideleg
	uMask := sideleg & mideleg

	if !effectiveEnable(h.privilege, Machine, h.csr.MIE()) {
		pending &^= mMask
	}

	if !effectiveEnable(h.privilege, Supervisor, h.csr.SIE()) {
		pending &^= sMask
	}

	if !effectiveEnable(h.privilege, User, h.csr.UIE()) {
		pending &^= uMask
	}

	return pending
}

// SelectInterrupt picks the highest-priority pending-and-enabled interrupt,
// grouping by destination mode first and then by the fixed architectural
// priority table, per spec.md section 4.5.
func (h *Hart) SelectInterrupt() (Cause, bool) {
	pending := h.pendingEnabled()
	if pending == 0 {
		return Cause{}, false
	}

	var (
		found    bool
		bestCode ExceptionCode
		bestMode Privilege
		bestRank int
	)

	for bit := 0; bit < 64; bit++ {
		if pending&(uint64(1)<<uint(bit)) == 0 {
			continue
		}

		code := ExceptionCode(bit)
		mode := h.targetMode(Interrupted(code))
		rank := priorityRank(code)

		if !found || mode > bestMode || (mode == bestMode && rank < bestRank) {
			found = true
			bestMode = mode
			bestRank = rank
			bestCode = code
		}
	}

	if !found {
		return Cause{}, false
	}

	return Interrupted(bestCode), true
}

// Arbitrate re-runs the interrupt arbiter and, if a pending-and-enabled
// interrupt is found, dispatches it via TakeException. It returns true if a
// trap was taken. Called after every port write that could change the
// pending set, after ERET's common postlude, and from the Fetch Gate.
func (h *Hart) Arbitrate() bool {
	cause, ok := h.SelectInterrupt()
	if !ok {
		return false
	}

	h.TakeException(cause, 0)

	return true
}
