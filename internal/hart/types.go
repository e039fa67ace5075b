package hart

// types.go holds the small value types shared by the rest of the package:
// privilege levels, trap causes, ISA feature bits, and the disable bitset
// that decides whether the hart is runnable.

import "fmt"

// Privilege is a RISC-V execution privilege level.
type Privilege uint8

const (
	User Privilege = iota
	Supervisor
	Hypervisor
	Machine
)

func (p Privilege) String() string {
	switch p {
	case User:
		return "U"
	case Supervisor:
		return "S"
	case Hypervisor:
		return "H"
	case Machine:
		return "M"
	default:
		return fmt.Sprintf("Privilege(%d)", uint8(p))
	}
}

// max returns the numerically higher (more privileged) of two levels.
func max(a, b Privilege) Privilege {
	if a > b {
		return a
	}

	return b
}

// ExceptionCode is the architectural cause code, excluding the interrupt bit.
// The same numeric value is reused by both a synchronous exception and an
// interrupt; [Cause.Interrupt] disambiguates, exactly as the hardware
// mcause/scause registers do with their top bit.
type ExceptionCode uint

// Standard synchronous exception codes (Privileged Architecture table 3.6).
const (
	InstructionAddressMisaligned ExceptionCode = 0
	InstructionAccessFault       ExceptionCode = 1
	IllegalInstruction           ExceptionCode = 2
	Breakpoint                   ExceptionCode = 3
	LoadAddressMisaligned        ExceptionCode = 4
	LoadAccessFault              ExceptionCode = 5
	StoreAMOAddressMisaligned    ExceptionCode = 6
	StoreAMOAccessFault          ExceptionCode = 7
	ECallFromU                   ExceptionCode = 8
	ECallFromS                   ExceptionCode = 9
	ECallFromH                   ExceptionCode = 10
	ECallFromM                   ExceptionCode = 11
	InstructionPageFault         ExceptionCode = 12
	LoadPageFault                ExceptionCode = 13
	StoreAMOPageFault            ExceptionCode = 15
)

// Standard interrupt codes, one per {U,S,M} x {software,timer,external}.
const (
	USoftwareInterrupt ExceptionCode = 0
	SSoftwareInterrupt ExceptionCode = 1
	MSoftwareInterrupt ExceptionCode = 3
	UTimerInterrupt    ExceptionCode = 4
	STimerInterrupt    ExceptionCode = 5
	MTimerInterrupt    ExceptionCode = 7
	UExternalInterrupt ExceptionCode = 8
	SExternalInterrupt ExceptionCode = 9
	MExternalInterrupt ExceptionCode = 11
)

// Cause identifies a trap: a code plus whether it is an interrupt. It is the
// decoded form of the architectural mcause/scause/ucause value; packing it
// into the register's bit layout is the CSR bank's job, not this package's.
type Cause struct {
	Code      ExceptionCode
	Interrupt bool
}

// Exception builds a synchronous-exception cause.
func Exception(code ExceptionCode) Cause { return Cause{Code: code} }

// Interrupted builds an interrupt cause.
func Interrupted(code ExceptionCode) Cause { return Cause{Code: code, Interrupt: true} }

func (c Cause) String() string {
	if c.Interrupt {
		return fmt.Sprintf("INT(%d)", c.Code)
	}

	return fmt.Sprintf("EXC(%d)", c.Code)
}

// ISA is a bitset of optional architectural features a hart is configured
// with. Exception-table entries and delegation logic are filtered by these
// bits.
type ISA uint32

const (
	ISASupervisor  ISA = 1 << iota // S: supervisor mode implemented
	ISAUser                        // U: user mode implemented
	ISAUserIntr                    // N: user-level interrupts
	ISAHypervisor                  // H: hypervisor extension
	ISAVector                      // V: vector extension (first-only-fault)
	ISACompressed                  // C: compressed instructions (eret PC masking)
)

func (isa ISA) Has(bit ISA) bool { return isa&bit != 0 }

// TvecMode is the encoding of the low two bits of an xtvec CSR.
type TvecMode uint8

const (
	TvecDirect   TvecMode = 0
	TvecVectored TvecMode = 1
)

// DisableReason is one bit of the reason the hart is not running.
type DisableReason uint8

const (
	DisableReset DisableReason = 1 << iota
	DisableWFI
	DisableDebug
	DisableRestartPending
)

func (r DisableReason) String() string {
	switch r {
	case DisableReset:
		return "reset"
	case DisableWFI:
		return "wfi"
	case DisableDebug:
		return "debug"
	case DisableRestartPending:
		return "restart-pending"
	default:
		return fmt.Sprintf("DisableReason(%#x)", uint8(r))
	}
}

// DisableSet is the union of reasons a hart is halted. The hart runs iff the
// set is empty.
type DisableSet uint8

func (s *DisableSet) Set(r DisableReason)   { *s |= DisableSet(r) }
func (s *DisableSet) Clear(r DisableReason) { *s &^= DisableSet(r) }
func (s DisableSet) Has(r DisableReason) bool { return s&DisableSet(r) != 0 }
func (s DisableSet) Empty() bool              { return s == 0 }

func (s DisableSet) String() string {
	if s.Empty() {
		return "running"
	}

	out := ""

	for _, r := range []DisableReason{DisableReset, DisableWFI, DisableDebug, DisableRestartPending} {
		if s.Has(r) {
			if out != "" {
				out += "|"
			}

			out += r.String()
		}
	}

	return out
}

// DebugCause records why the hart entered debug mode.
type DebugCause uint8

const (
	DebugNone DebugCause = iota
	DebugHaltReq
	DebugStep
	DebugEBreak
	DebugResetHaltReq
)

func (c DebugCause) String() string {
	switch c {
	case DebugNone:
		return "none"
	case DebugHaltReq:
		return "haltreq"
	case DebugStep:
		return "step"
	case DebugEBreak:
		return "ebreak"
	case DebugResetHaltReq:
		return "resethaltreq"
	default:
		return fmt.Sprintf("DebugCause(%d)", uint8(c))
	}
}

// DebugEntryPolicy controls how entering debug mode is surfaced to the host.
type DebugEntryPolicy uint8

const (
	// DebugEntryHalt halts the hart directly via the disable bitset.
	DebugEntryHalt DebugEntryPolicy = iota
	// DebugEntryInterrupt posts a synchronous interrupt so the host's
	// scheduler yields before the hart is halted.
	DebugEntryInterrupt
)

// FetchStatus is the result of a FetchGate call.
type FetchStatus uint8

const (
	// FetchNone means no trap was taken; the host may proceed to fetch.
	FetchNone FetchStatus = iota
	// FetchException means a trap was taken and the PC now points at a
	// handler; the host must not fetch at the originally requested address.
	FetchException
	// FetchPending means either a trap would be taken on a committed
	// fetch but this call was only a speculative probe, or the hart is in
	// debug mode, held in reset, or stopped in WFI and must not fetch.
	FetchPending
)

func (s FetchStatus) String() string {
	switch s {
	case FetchNone:
		return "none"
	case FetchException:
		return "exception"
	case FetchPending:
		return "pending"
	default:
		return fmt.Sprintf("FetchStatus(%d)", uint8(s))
	}
}
