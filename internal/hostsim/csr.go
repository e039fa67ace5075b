package hostsim

import "github.com/rvhart/hart/internal/hart"

// csr.go is the reference CSR bank: a bit-packed implementation of
// hart.CSRAccessor. CSR encoding (which register holds which field, how
// privilege selects among m/s/u variants) is explicitly out of scope for
// internal/hart per the module boundary; this bank is one concrete way to
// satisfy it, grounded on the mstatus/mcause field layout the Privileged
// Architecture defines and on the bitset-field style of
// internal/vm/vm.go's ProcessorStatus.

// Bank is a reference CSR bank for a single hart.
type Bank struct {
	mstatus uint64

	mcause, scause, ucause uint64
	mepc, sepc, uepc       uint64
	mtval, stval, utval    uint64
	mtvec, stvec, utvec    uint64
	mie, sie, uie          uint64

	medeleg, sedeleg uint64
	mideleg, sideleg uint64

	mcountinhibit uint32
	instret       uint64

	dcsr uint32
	dpc  uint64

	vstart     uint64
	vl         uint64
	firstFault bool

	// hasSupervisor and hasUser gate medeleg/mideleg/sedeleg/sideleg to
	// zero regardless of what is written to them, per Open Question #2's
	// resolution (see DESIGN.md): a CSR bank built for a machine-mode-only
	// hart must not let a stray write fabricate delegation.
	hasSupervisor bool
	hasUser       bool
}

// NewBank creates a CSR bank. hasSupervisor/hasUser must match the ISA bits
// the owning hart.Config carries, since this bank enforces the
// no-delegation-without-the-mode invariant independently of hart's own
// defensive gating.
func NewBank(hasSupervisor, hasUser bool) *Bank {
	return &Bank{hasSupervisor: hasSupervisor, hasUser: hasUser}
}

// mstatus bit offsets (RV64 layout; the fields internal/hart touches all
// fit in the low 32 bits shared with RV32).
const (
	bitUIE  = 0
	bitSIE  = 1
	bitMIE  = 3
	bitUPIE = 4
	bitSPIE = 5
	bitMPIE = 7
	bitSPP  = 8
	bitMPRV = 17

	maskSPP = 1 << bitSPP
	maskMPP = 0b11 << 11
)

func (b *Bank) bit(offset uint) bool      { return b.mstatus&(1<<offset) != 0 }
func (b *Bank) setBit(offset uint, v bool) {
	if v {
		b.mstatus |= 1 << offset
	} else {
		b.mstatus &^= 1 << offset
	}
}

func (b *Bank) MIE() bool     { return b.bit(bitMIE) }
func (b *Bank) SetMIE(v bool) { b.setBit(bitMIE, v) }
func (b *Bank) SIE() bool     { return b.bit(bitSIE) }
func (b *Bank) SetSIE(v bool) { b.setBit(bitSIE, v) }
func (b *Bank) UIE() bool     { return b.bit(bitUIE) }
func (b *Bank) SetUIE(v bool) { b.setBit(bitUIE, v) }

func (b *Bank) MPIE() bool     { return b.bit(bitMPIE) }
func (b *Bank) SetMPIE(v bool) { b.setBit(bitMPIE, v) }
func (b *Bank) SPIE() bool     { return b.bit(bitSPIE) }
func (b *Bank) SetSPIE(v bool) { b.setBit(bitSPIE, v) }
func (b *Bank) UPIE() bool     { return b.bit(bitUPIE) }
func (b *Bank) SetUPIE(v bool) { b.setBit(bitUPIE, v) }

func (b *Bank) MPP() hart.Privilege {
	return hart.Privilege((b.mstatus & maskMPP) >> 11)
}

func (b *Bank) SetMPP(p hart.Privilege) {
	b.mstatus = (b.mstatus &^ maskMPP) | (uint64(p)<<11)&maskMPP
}

func (b *Bank) SPP() hart.Privilege {
	if b.bit(bitSPP) {
		return hart.Supervisor
	}

	return hart.User
}

func (b *Bank) SetSPP(p hart.Privilege) {
	b.setBit(bitSPP, p == hart.Supervisor)
}

func (b *Bank) MPRV() bool     { return b.bit(bitMPRV) }
func (b *Bank) SetMPRV(v bool) { b.setBit(bitMPRV, v) }

func (b *Bank) Cause(mode hart.Privilege) hart.Cause {
	return unpackCause(*b.causeReg(mode))
}

func (b *Bank) SetCause(mode hart.Privilege, c hart.Cause) {
	*b.causeReg(mode) = packCause(c)
}

func (b *Bank) causeReg(mode hart.Privilege) *uint64 {
	switch mode {
	case hart.Machine:
		return &b.mcause
	case hart.Supervisor:
		return &b.scause
	default:
		return &b.ucause
	}
}

func packCause(c hart.Cause) uint64 {
	v := uint64(c.Code)
	if c.Interrupt {
		v |= 1 << 63
	}

	return v
}

func unpackCause(v uint64) hart.Cause {
	return hart.Cause{Code: hart.ExceptionCode(v &^ (1 << 63)), Interrupt: v&(1<<63) != 0}
}

func (b *Bank) EPC(mode hart.Privilege) uint64 { return *b.epcReg(mode) }

func (b *Bank) SetEPC(mode hart.Privilege, pc uint64) { *b.epcReg(mode) = pc }

func (b *Bank) epcReg(mode hart.Privilege) *uint64 {
	switch mode {
	case hart.Machine:
		return &b.mepc
	case hart.Supervisor:
		return &b.sepc
	default:
		return &b.uepc
	}
}

func (b *Bank) TVal(mode hart.Privilege) uint64 { return *b.tvalReg(mode) }

func (b *Bank) SetTVal(mode hart.Privilege, v uint64) { *b.tvalReg(mode) = v }

func (b *Bank) tvalReg(mode hart.Privilege) *uint64 {
	switch mode {
	case hart.Machine:
		return &b.mtval
	case hart.Supervisor:
		return &b.stval
	default:
		return &b.utval
	}
}

func (b *Bank) Tvec(mode hart.Privilege) (base uint64, tvecMode hart.TvecMode) {
	v := *b.tvecReg(mode)
	return v &^ 0b11, hart.TvecMode(v & 0b11)
}

// SetTvec is a bank-specific setter, not part of hart.CSRAccessor: real CSR
// writes go through whatever instruction-level CSR-write path the host
// decoder implements, which is out of internal/hart's scope.
func (b *Bank) SetTvec(mode hart.Privilege, base uint64, tvecMode hart.TvecMode) {
	*b.tvecReg(mode) = (base &^ 0b11) | uint64(tvecMode)
}

func (b *Bank) tvecReg(mode hart.Privilege) *uint64 {
	switch mode {
	case hart.Machine:
		return &b.mtvec
	case hart.Supervisor:
		return &b.stvec
	default:
		return &b.utvec
	}
}

// IE returns the enabled-interrupt bitmask for mode. Machine mode can see
// every source; supervisor and user modes only ever gate the bits
// delegated to them, since hart.pendingEnabled already masks by delegation
// before consulting the global enable.
func (b *Bank) IE(mode hart.Privilege) uint64 {
	switch mode {
	case hart.Machine:
		return b.mie
	case hart.Supervisor:
		return b.sie
	default:
		return b.uie
	}
}

// SetIE is a bank-specific setter for the mie/sie/uie CSRs.
func (b *Bank) SetIE(mode hart.Privilege, v uint64) {
	switch mode {
	case hart.Machine:
		b.mie = v
	case hart.Supervisor:
		b.sie = v
	default:
		b.uie = v
	}
}

func (b *Bank) EDeleg(mode hart.Privilege) uint64 {
	if !b.hasSupervisor {
		return 0
	}

	if mode == hart.Machine {
		return b.medeleg
	}

	if !b.hasUser {
		return 0
	}

	return b.sedeleg
}

func (b *Bank) IDeleg(mode hart.Privilege) uint64 {
	if !b.hasSupervisor {
		return 0
	}

	if mode == hart.Machine {
		return b.mideleg
	}

	if !b.hasUser {
		return 0
	}

	return b.sideleg
}

// SetEDeleg/SetIDeleg are bank-specific setters. Writes to sedeleg/sideleg
// are dropped when the bank was built without supervisor/user support,
// enforcing the zero-delegation invariant at the storage layer too.
func (b *Bank) SetEDeleg(mode hart.Privilege, v uint64) {
	if !b.hasSupervisor {
		return
	}

	if mode == hart.Machine {
		b.medeleg = v
		return
	}

	if b.hasUser {
		b.sedeleg = v
	}
}

func (b *Bank) SetIDeleg(mode hart.Privilege, v uint64) {
	if !b.hasSupervisor {
		return
	}

	if mode == hart.Machine {
		b.mideleg = v
		return
	}

	if b.hasUser {
		b.sideleg = v
	}
}

func (b *Bank) InstructionRetireInhibited() bool { return b.mcountinhibit&0x1 != 0 }

func (b *Bank) IncrementInstructions() { b.instret++ }

// Instret exposes the free-running instruction counter for tests.
func (b *Bank) Instret() uint64 { return b.instret }

const (
	dcsrPrvShift   = 0
	dcsrStep       = 1 << 2
	dcsrNMIP       = 1 << 3
	dcsrStopCount  = 1 << 10
	dcsrEBreakU    = 1 << 12
	dcsrEBreakS    = 1 << 13
	dcsrEBreakM    = 1 << 15
	dcsrCauseShift = 6
	dcsrCauseMask  = 0b111 << dcsrCauseShift
)

func (b *Bank) DCSRPrv() hart.Privilege { return hart.Privilege(b.dcsr & 0b11) }

func (b *Bank) SetDCSRPrv(p hart.Privilege) {
	b.dcsr = (b.dcsr &^ 0b11) | uint32(p)&0b11
}

func (b *Bank) DCSRCause() hart.DebugCause {
	return hart.DebugCause((b.dcsr & dcsrCauseMask) >> dcsrCauseShift)
}

func (b *Bank) SetDCSRCause(c hart.DebugCause) {
	b.dcsr = (b.dcsr &^ dcsrCauseMask) | (uint32(c)<<dcsrCauseShift)&dcsrCauseMask
}

func (b *Bank) DCSRStep() bool { return b.dcsr&dcsrStep != 0 }

// SetDCSRStep is a bank-specific setter, written through the host's CSR
// write path rather than internal/hart's trap engine.
func (b *Bank) SetDCSRStep(v bool) { b.setDCSRFlag(dcsrStep, v) }

func (b *Bank) DCSRNMIP() bool     { return b.dcsr&dcsrNMIP != 0 }
func (b *Bank) SetDCSRNMIP(v bool) { b.setDCSRFlag(dcsrNMIP, v) }

func (b *Bank) DCSRStopCount() bool     { return b.dcsr&dcsrStopCount != 0 }
func (b *Bank) SetDCSRStopCount(v bool) { b.setDCSRFlag(dcsrStopCount, v) }

func (b *Bank) DCSREBreak(mode hart.Privilege) bool {
	switch mode {
	case hart.Machine:
		return b.dcsr&dcsrEBreakM != 0
	case hart.Supervisor:
		return b.dcsr&dcsrEBreakS != 0
	default:
		return b.dcsr&dcsrEBreakU != 0
	}
}

// SetDCSREBreak is a bank-specific setter for the dcsr.ebreak{u,s,m} bit
// corresponding to mode.
func (b *Bank) SetDCSREBreak(mode hart.Privilege, v bool) {
	switch mode {
	case hart.Machine:
		b.setDCSRFlag(dcsrEBreakM, v)
	case hart.Supervisor:
		b.setDCSRFlag(dcsrEBreakS, v)
	default:
		b.setDCSRFlag(dcsrEBreakU, v)
	}
}

func (b *Bank) setDCSRFlag(mask uint32, v bool) {
	if v {
		b.dcsr |= mask
	} else {
		b.dcsr &^= mask
	}
}

func (b *Bank) DPC() uint64     { return b.dpc }
func (b *Bank) SetDPC(pc uint64) { b.dpc = pc }

func (b *Bank) VStart() uint64     { return b.vstart }
func (b *Bank) SetVStart(v uint64) { b.vstart = v }

func (b *Bank) FirstFault() bool     { return b.firstFault }
func (b *Bank) SetFirstFault(v bool) { b.firstFault = v }

func (b *Bank) VL() uint64     { return b.vl }
func (b *Bank) SetVL(v uint64) { b.vl = v }

// RefreshPolymorphicKey is a no-op in this reference bank: it has no
// instruction-decode cache keyed on vl/vstart to invalidate. A host with a
// polymorphic-vector decoder would override this behavior at its own layer.
func (b *Bank) RefreshPolymorphicKey() {}

var _ hart.CSRAccessor = (*Bank)(nil)
