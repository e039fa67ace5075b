package hart

import "github.com/rvhart/hart/internal/log"

// hart.go assembles the Hart from its parts and the collaborators it is
// given at construction, and declares the construction-time configuration.
// Grounded on internal/vm/vm.go's New(opts ...OptionFn) two-phase
// constructor, simplified to a single initialization pass since, unlike the
// LC-3 machine, a Hart owns no devices to map before options can run.

// Config is the construction-time configuration of a Hart: everything that
// does not change once the hart is built, as opposed to the live state
// (privilege, pending interrupts, debug mode) tracked by Hart itself.
type Config struct {
	// ISA is the set of optional architectural features implemented.
	ISA ISA

	// Locals is the number of implementation-defined local interrupt
	// lines above the 16 standard codes.
	Locals int

	// ResetAddr is the PC value after riscvReset.
	ResetAddr uint64

	// NMIAddr is the PC value taken on a non-maskable interrupt, per
	// spec.md section 4.9. NMIs bypass delegation and xtvec: the hart
	// writes mepc, mstatus.MPP/MPIE/MIE and mcause (as Exception(0), i.e.
	// code 0 with Interrupt=false) through the CSR bank and jumps here
	// directly.
	NMIAddr uint64

	// DebugPolicy controls how the Debug-Mode Controller surfaces entry
	// to the host: a direct halt, or a posted synchronous interrupt.
	DebugPolicy DebugEntryPolicy

	// LegacyVectorMode and CustomVector resolve Open Question #1 (design
	// notes section 9): when true, and the standard xtvec.MODE field
	// reads Direct, CustomVector is consulted for a non-standard handler
	// address before falling back to the direct base. A nil CustomVector
	// disables the override even when LegacyVectorMode is set.
	LegacyVectorMode bool
	CustomVector     func(mode Privilege, cause Cause) (addr uint64, ok bool)

	// TValInstructionCode reports the raw instruction word as tval on an
	// illegal-instruction exception, instead of zero.
	TValInstructionCode bool

	// ClearExclusiveOnERET drops any outstanding LR/SC reservation on
	// every trap return, matching implementations that do not track
	// reservations across privilege changes.
	ClearExclusiveOnERET bool

	// MPRVClearOnLowerPrivilege clears mstatus.MPRV whenever an MRET or
	// SRET lowers the hart below Machine mode, per the Privileged
	// Architecture's recommended (but not mandatory) behavior.
	MPRVClearOnLowerPrivilege bool
}

// netValue latches the level of an external signal port between arbiter
// passes. See ports.go. resethaltreqS is the sampled-at-reset copy of
// resethaltreq the Fetch Gate consults on the first fetch out of reset
// (spec.md section 4.8); it is distinct from resethaltreq itself, which
// stays latched across reset so a host that asserts it once before the
// reset edge still gets a debug entry.
type netValue struct {
	reset         bool
	nmi           bool
	haltreq       bool
	resethaltreq  bool
	resethaltreqS bool
}

// intState bundles the diagnostic state that outlives a single instruction
// but, unlike privilege/debug/disable, is not itself architectural CSR
// state: the LR/SC reservation tag (cleared by entry.go and return.go) and
// the access-fault error latch entry.go copies on instruction, load and
// store/AMO access faults.
type intState struct {
	exclusiveTag bool
	afErrorIn    bool
	afErrorOut   bool
}

// Hart is the trap-and-interrupt engine of one RISC-V hardware thread. It
// owns no instruction decoder, no execution unit, and no address
// translation: those are the host's job, reached only through the Host and
// CSRAccessor interfaces.
type Hart struct {
	host Host
	csr  CSRAccessor

	config Config

	privilege Privilege
	debug     bool
	disable   DisableSet

	// ip is the word-addressed local-interrupt-pending vector described
	// in spec.md section 4.1: ip[0]'s low bits are the standard
	// interrupt-pending causes; mip only ever reflects ip[0] | swip.
	ip   []uint64
	swip uint64

	// extInt is the per-mode claimed external-interrupt ID substituted
	// for the architectural code on report, per section 4.3 step 7.
	extInt map[Privilege]uint64

	net   netValue
	state intState

	lastException Cause

	observers observerList

	excCache []Descriptor

	stepTimer TimerID

	log *log.Logger
}

// OptionFn customizes a Hart during construction.
type OptionFn func(h *Hart)

// NewHart builds a Hart from its configuration and collaborators, applies
// opts in order, and leaves the hart in the post-reset state (see
// riscvReset in ports.go).
func NewHart(cfg Config, host Host, csr CSRAccessor, opts ...OptionFn) *Hart {
	h := &Hart{
		host:   host,
		csr:    csr,
		config: cfg,
		ip:     make([]uint64, 1+(cfg.Locals+63)/64),
		extInt: make(map[Privilege]uint64, 3),
		log:    log.DefaultLogger(),
	}

	for _, fn := range opts {
		fn(h)
	}

	h.riscvReset()

	return h
}

// WithObserver registers a derived-model observer at construction time.
func WithObserver(o Observer) OptionFn {
	return func(h *Hart) {
		h.observers.register(o)
	}
}

// WithLogger overrides the hart's logger.
func WithLogger(l *log.Logger) OptionFn {
	return func(h *Hart) {
		h.log = l
	}
}

// Privilege returns the hart's current privilege mode.
func (h *Hart) Privilege() Privilege { return h.privilege }

// InDebugMode reports whether the hart is halted in debug mode.
func (h *Hart) InDebugMode() bool { return h.debug }

// Disabled reports why the hart is not running; the zero DisableSet means
// the hart is runnable.
func (h *Hart) Disabled() DisableSet { return h.disable }

// LastException returns the most recently reported trap cause, for
// diagnostics and observer use.
func (h *Hart) LastException() Cause { return h.lastException }

// Exceptions returns the exception table implemented by this hart: the
// static table filtered by ISA and Config.Locals, plus anything contributed
// by registered observers, lazily built and cached on first call per
// Design Notes section 9.
func (h *Hart) Exceptions() []Descriptor {
	if h.excCache == nil {
		base := implementedExceptions(h.config.ISA, h.config.Locals, h.observers.derivedExceptions())
		h.excCache = base
	}

	return h.excCache
}
