package hostsim

import (
	"context"
	"time"

	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/log"
)

// machine.go is the reference Host: flat physical memory, a program
// counter, and a model-timer scheduler. Grounded on internal/vm/mem.go's
// Memory controller for the flat-address-space storage and on
// internal/vm/exec.go's Run loop for the fetch/arbitrate/step cycle, with
// Executable reduced to a bounds check on the flat memory and Miss a no-op,
// since this reference host has no page tables to speak of.
type Machine struct {
	pc uint64

	mem []byte

	halted  hart.DisableSet
	running bool

	timers map[hart.TimerID]*timer
	nextID hart.TimerID

	log *log.Logger
}

type timer struct {
	remaining uint64
	fn        func()
}

// NewMachine allocates a flat address space of size bytes.
func NewMachine(size int) *Machine {
	return &Machine{
		mem:    make([]byte, size),
		timers: make(map[hart.TimerID]*timer),
		log:    log.DefaultLogger(),
	}
}

func (m *Machine) PC() uint64      { return m.pc }
func (m *Machine) SetPC(pc uint64) { m.pc = pc }

func (m *Machine) Halted(reason hart.DisableReason) {
	m.halted.Set(reason)
	m.log.Debug("halted", "reason", reason.String())
}

func (m *Machine) Restarted(reason hart.DisableReason) {
	m.halted.Clear(reason)
	m.log.Debug("restarted", "reason", reason.String())
}

// Executable reports whether addr lies within the flat address space. A
// real MMU-backed host would consult page-table permission bits here.
func (m *Machine) Executable(addr uint64) bool {
	return addr+3 < uint64(len(m.mem))
}

// Miss is a no-op: there is no page-table walk to perform in a flat address
// space, so an address that is not Executable before Miss never becomes
// Executable after it.
func (m *Machine) Miss(addr uint64) {}

// PostInterrupt marks that the scheduler should re-run the Fetch Gate
// before the next natural suspension point. The reference Run loop already
// calls FetchGate every iteration, so this is a no-op note logged for
// observability.
func (m *Machine) PostInterrupt() {
	m.log.Debug("interrupt posted")
}

func (m *Machine) TimerCreate(fn func()) hart.TimerID {
	m.nextID++
	m.timers[m.nextID] = &timer{fn: fn}

	return m.nextID
}

func (m *Machine) TimerSet(id hart.TimerID, instructions uint64) {
	if t, ok := m.timers[id]; ok {
		t.remaining = instructions
	}
}

func (m *Machine) TimerDelete(id hart.TimerID) {
	delete(m.timers, id)
}

// tick advances every armed timer by one retired instruction, firing (and
// disarming) any that reach zero. Called once per instruction from Run.
func (m *Machine) tick() {
	for id, t := range m.timers {
		if t.remaining == 0 {
			continue
		}

		t.remaining--

		if t.remaining == 0 {
			delete(m.timers, id)
			t.fn()
		}
	}
}

func (m *Machine) FetchTval(addr uint64) uint64 {
	if !m.Executable(addr) {
		return 0
	}

	return uint64(m.mem[addr]) | uint64(m.mem[addr+1])<<8 |
		uint64(m.mem[addr+2])<<16 | uint64(m.mem[addr+3])<<24
}

// AbortRepeat has nothing to abort: this reference host has no
// program-buffer repeat feature.
func (m *Machine) AbortRepeat() {}

// LoadByte and StoreByte give a surrounding decoder raw access to the flat
// address space; internal/hart never calls these directly.
func (m *Machine) LoadByte(addr uint64) byte       { return m.mem[addr] }
func (m *Machine) StoreByte(addr uint64, v byte)   { m.mem[addr] = v }

// Run drives h with this machine as its Host, stepping step once per loop
// iteration until ctx is cancelled or step returns an error. A hart held in
// reset, WFI or debug mode does not end the loop: Run keeps polling so a
// later port write can resume it.
func (m *Machine) Run(ctx context.Context, h *hart.Hart, step func() error) error {
	m.running = true
	defer func() { m.running = false }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if h.Disabled().Has(hart.DisableReset) {
			time.Sleep(time.Millisecond)
			continue
		}

		if status := h.FetchGate(m.pc, true); status == hart.FetchException {
			continue
		}

		if h.Disabled().Has(hart.DisableWFI) || h.Disabled().Has(hart.DisableDebug) {
			time.Sleep(time.Millisecond)
			continue
		}

		if err := step(); err != nil {
			return err
		}

		m.tick()
		h.Arbitrate()
	}
}

var _ hart.Host = (*Machine)(nil)
