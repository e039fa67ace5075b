package hart

// csr.go declares the CSR Accessor boundary: the core reads and writes
// named CSR fields through these interfaces but never defines how a field
// is packed into a register value. A reference implementation lives in
// package hostsim.

// MstatusAccessor is typed access to the mstatus fields this core cares
// about.
type MstatusAccessor interface {
	MIE() bool
	SetMIE(bool)
	SIE() bool
	SetSIE(bool)
	UIE() bool
	SetUIE(bool)
	MPIE() bool
	SetMPIE(bool)
	SPIE() bool
	SetSPIE(bool)
	UPIE() bool
	SetUPIE(bool)
	MPP() Privilege
	SetMPP(Privilege)
	SPP() Privilege
	SetSPP(Privilege)
	MPRV() bool
	SetMPRV(bool)
}

// TrapAccessor is typed access to the per-mode xcause/xepc/xtval/xtvec/xie
// registers. mode selects which of the m/s/u triple is addressed.
type TrapAccessor interface {
	Cause(mode Privilege) Cause
	SetCause(mode Privilege, c Cause)

	EPC(mode Privilege) uint64
	SetEPC(mode Privilege, pc uint64)

	TVal(mode Privilege) uint64
	SetTVal(mode Privilege, tval uint64)

	// Tvec returns the trap-vector base address (already shifted) and mode.
	Tvec(mode Privilege) (base uint64, tvecMode TvecMode)

	// IE returns the xie bits that are currently enabled, as a bitmask
	// indexed by ExceptionCode.
	IE(mode Privilege) uint64
}

// DelegationAccessor exposes the medeleg/mideleg (read at mode==Machine) and
// sedeleg/sideleg (read at mode==Supervisor) registers.
type DelegationAccessor interface {
	EDeleg(mode Privilege) uint64
	IDeleg(mode Privilege) uint64
}

// CounterAccessor exposes the one mcountinhibit field the trap entry engine
// consults.
type CounterAccessor interface {
	InstructionRetireInhibited() bool
	IncrementInstructions()
}

// DebugAccessor is typed access to dcsr and dpc.
type DebugAccessor interface {
	DCSRPrv() Privilege
	SetDCSRPrv(Privilege)

	DCSRCause() DebugCause
	SetDCSRCause(DebugCause)

	DCSRStep() bool

	DCSRNMIP() bool
	SetDCSRNMIP(bool)

	// DCSREBreak reports dcsr.ebreak{u,s,m} for the given mode.
	DCSREBreak(mode Privilege) bool

	DCSRStopCount() bool

	DPC() uint64
	SetDPC(uint64)
}

// VectorAccessor is typed access to the vector-extension fields consulted by
// fault-only-first suppression. Harts without the vector extension may
// implement this with VStart always zero and FirstFault always false.
type VectorAccessor interface {
	VStart() uint64
	SetVStart(uint64)

	FirstFault() bool
	SetFirstFault(bool)

	VL() uint64
	SetVL(uint64)

	// RefreshPolymorphicKey invalidates any cached vector-instruction
	// decode that depended on the old VL/vstart.
	RefreshPolymorphicKey()
}

// CSRAccessor is the full CSR boundary a Hart is constructed with.
type CSRAccessor interface {
	MstatusAccessor
	TrapAccessor
	DelegationAccessor
	CounterAccessor
	DebugAccessor
	VectorAccessor
}
