package hart

// host.go declares the Host boundary: everything the hart core needs from
// the surrounding simulation kernel, consumed only through this interface
// per spec.md's "host simulation kernel... out of scope" line. A reference
// implementation lives in package hostsim, grounded on the Bus/CycleBus
// split in user-none-go-chip-m68k/cpu.go and the fetch loop in
// internal/vm/exec.go.

// TimerID names a model-timer created through Host.TimerCreate.
type TimerID uint64

// Host is everything the trap/interrupt core needs from the surrounding
// simulation kernel.
type Host interface {
	// PC and SetPC get and set the program counter.
	PC() uint64
	SetPC(uint64)

	// Halted and Restarted notify the host scheduler that the hart's
	// disable bitset became non-empty or empty, respectively. The hart
	// itself still tracks why via its own DisableSet.
	Halted(reason DisableReason)
	Restarted(reason DisableReason)

	// Executable reports whether addr currently holds an executable
	// mapping. False means the host could not say yes without doing more
	// work; the caller should call Miss and probe again.
	Executable(addr uint64) bool

	// Miss asks the host to materialize a translation (or otherwise
	// resolve) addr, e.g. by walking page tables. After Miss returns the
	// caller re-probes Executable.
	Miss(addr uint64)

	// PostInterrupt schedules a synchronous interrupt with the host so
	// its fetch loop invokes FetchGate again promptly, rather than
	// waiting for whatever the next natural suspension point would be.
	PostInterrupt()

	// TimerCreate registers a one-shot model-timer and returns its id.
	// TimerSet arms it to fire fn after the given number of retired
	// instructions (1, for the single-step debug feature). TimerDelete
	// disarms and releases it. Firing is implicitly one-shot; the host
	// does not need to be told to disarm after it fires.
	TimerCreate(fn func()) TimerID
	TimerSet(id TimerID, instructions uint64)
	TimerDelete(id TimerID)

	// FetchTval returns the raw instruction word at addr, used to
	// populate tval for illegal-instruction traps when so configured.
	FetchTval(addr uint64) uint64

	// AbortRepeat cancels any host-driven repeated-instruction sequence (an
	// abstract-command program-buffer repeat, e.g.) in flight when a trap
	// forces re-entry into debug mode. A host with no such feature may
	// implement this as a no-op.
	AbortRepeat()
}
