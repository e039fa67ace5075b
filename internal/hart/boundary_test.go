package hart_test

import (
	"context"
	"testing"
	"time"

	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
)

func newTestHart(isa hart.ISA) (*hart.Hart, *hostsim.Machine, *hostsim.Bank) {
	machine := hostsim.NewMachine(1 << 16)
	bank := hostsim.NewBank(isa.Has(hart.ISASupervisor), isa.Has(hart.ISAUser))
	h := hart.NewHart(hart.Config{
		ISA:                       isa,
		ClearExclusiveOnERET:      true,
		MPRVClearOnLowerPrivilege: true,
	}, machine, bank)

	return h, machine, bank
}

// Boundary scenario 1: delegated ECALL.
func TestDelegatedECall(t *testing.T) {
	isa := hart.ISASupervisor | hart.ISAUser
	h, machine, bank := newTestHart(isa)

	bank.SetEDeleg(hart.Machine, 1<<uint(hart.ECallFromU))
	bank.SetTvec(hart.Supervisor, 0x80, hart.TvecDirect)

	// Force current mode to User from the post-reset Machine state: MPP
	// defaults to 0 (User), so MRET would also land in User; here SRET
	// with SPP=User drops straight to User.
	bank.SetSPP(hart.User)
	machine.SetPC(0x1000)
	h.SRET()

	if h.Privilege() != hart.User {
		t.Fatalf("setup: want User, got %s", h.Privilege())
	}

	machine.SetPC(0x1000)
	h.ECall()

	if got := bank.Cause(hart.Supervisor); got.Code != hart.ECallFromU || got.Interrupt {
		t.Errorf("scause: want ECallFromU, got %s", got)
	}

	if got := bank.EPC(hart.Supervisor); got != 0x1000 {
		t.Errorf("sepc: want 0x1000, got %#x", got)
	}

	if got := bank.TVal(hart.Supervisor); got != 0 {
		t.Errorf("stval: want 0, got %#x", got)
	}

	if h.Privilege() != hart.Supervisor {
		t.Errorf("mode: want Supervisor, got %s", h.Privilege())
	}

	if got := machine.PC(); got != 0x80 {
		t.Errorf("pc: want 0x80, got %#x", got)
	}

	if bank.SPP() != hart.User {
		t.Errorf("mstatus.SPP: want User, got %s", bank.SPP())
	}

	if bank.SIE() {
		t.Errorf("mstatus.SIE: want false after trap entry")
	}
}

// Boundary scenario 2: non-delegated M-timer interrupt while in U-mode.
func TestNonDelegatedTimerInterrupt(t *testing.T) {
	isa := hart.ISASupervisor | hart.ISAUser
	h, machine, bank := newTestHart(isa)

	bank.SetTvec(hart.Machine, 0x100, hart.TvecVectored)
	bank.SetIE(hart.Machine, 1<<uint(hart.MTimerInterrupt))
	bank.SetMIE(true)
	bank.SetSPP(hart.User)
	machine.SetPC(0)
	h.SRET()

	h.SetInterruptPending(0, uint(hart.MTimerInterrupt), true)

	if h.Privilege() != hart.Machine {
		t.Fatalf("mode: want Machine, got %s", h.Privilege())
	}

	if got := machine.PC(); got != 0x11C {
		t.Errorf("pc: want 0x11c, got %#x", got)
	}

	if got := bank.Cause(hart.Machine); got.Code != hart.MTimerInterrupt || !got.Interrupt {
		t.Errorf("mcause: want INT(7), got %s", got)
	}

	if bank.MPP() != hart.User {
		t.Errorf("mstatus.MPP: want User, got %s", bank.MPP())
	}

	if !bank.MPIE() {
		t.Errorf("mstatus.MPIE: want true")
	}

	if bank.MIE() {
		t.Errorf("mstatus.MIE: want false")
	}
}

// Boundary scenario 3: priority tiebreak between MEIP and MTIP. Both bits
// are latched with the global enable still off, so neither latching write
// dispatches a trap on its own; mstatus.MIE is then raised directly (as an
// ordinary CSR write would) and Arbitrate is invoked once, with both
// sources simultaneously pending and enabled.
func TestPriorityTiebreak(t *testing.T) {
	isa := hart.ISA(0) // machine-mode only
	h, _, bank := newTestHart(isa)

	bank.SetIE(hart.Machine, 1<<uint(hart.MExternalInterrupt)|1<<uint(hart.MTimerInterrupt))

	h.SetInterruptPending(0, uint(hart.MTimerInterrupt), true)
	h.SetInterruptPending(0, uint(hart.MExternalInterrupt), true)

	bank.SetMIE(true)
	h.Arbitrate()

	if got := bank.Cause(hart.Machine); got.Code != hart.MExternalInterrupt {
		t.Errorf("selected cause: want MExternalInterrupt, got %s", got)
	}
}

// Boundary scenario 4: MRET clamp when Supervisor is unimplemented but User
// is.
func TestMRETClamp(t *testing.T) {
	isa := hart.ISAUser
	h, _, bank := newTestHart(isa)

	bank.SetMPP(hart.Supervisor)

	h.MRET()

	if h.Privilege() != hart.User {
		t.Errorf("mode: want User (clamped), got %s", h.Privilege())
	}

	if bank.MPP() != hart.User {
		t.Errorf("mstatus.MPP: want User, got %s", bank.MPP())
	}
}

// Boundary scenario 5: fault-only-first suppression.
func TestFaultOnlyFirstSuppression(t *testing.T) {
	isa := hart.ISAVector
	h, machine, bank := newTestHart(isa)

	bank.SetFirstFault(true)
	bank.SetVL(8)
	machine.SetPC(0x3000)

	h.MemoryFault(hart.LoadAccessFault, 0x4000, 3)

	if machine.PC() != 0x3000 {
		t.Errorf("pc: want unchanged 0x3000 (no trap), got %#x", machine.PC())
	}

	if got := bank.VL(); got != 3 {
		t.Errorf("vl: want clamped to 3, got %d", got)
	}

	if bank.FirstFault() {
		t.Errorf("vFirstFault: want false after suppression")
	}
}

// Boundary scenario 6: debug single-step. A debugger halts the hart, sets
// dcsr.step, and leaves debug mode; the next retired instruction must land
// back in debug mode with dcsr.cause=STEP.
func TestDebugSingleStep(t *testing.T) {
	isa := hart.ISASupervisor | hart.ISAUser
	h, machine, bank := newTestHart(isa)

	// haltreq only latches the port; entry is deferred to the Fetch Gate's
	// next committed fetch (spec.md section 4.8).
	machine.SetPC(0x4000)
	h.HaltReq()

	if status := h.FetchGate(machine.PC(), true); status != hart.FetchException {
		t.Fatalf("setup: want FetchException entering debug via haltreq, got %v", status)
	}

	if !h.InDebugMode() {
		t.Fatalf("setup: want debug mode entered via haltreq")
	}

	// A real debug host deasserts haltreq before resuming; otherwise the
	// Fetch Gate would re-enter debug on the very next fetch instead of
	// single-stepping.
	h.ClearHaltReq()

	bank.SetDCSRStep(true)
	bank.SetDPC(0x5000)
	h.DRET() // leaves debug mode; arms the one-instruction step timer

	if h.InDebugMode() {
		t.Fatalf("setup: want debug mode left after DRET")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- machine.Run(ctx, h, func() error { return nil }) }()

	for !h.InDebugMode() {
		select {
		case <-ctx.Done():
			t.Fatalf("timed out waiting for single-step debug entry")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done

	if got := bank.DCSRCause(); got != hart.DebugStep {
		t.Errorf("dcsr.cause: want STEP, got %s", got)
	}

	if got := bank.DCSRPrv(); got != hart.Machine {
		t.Errorf("dcsr.prv: want Machine, got %s", got)
	}

	if h.Privilege() != hart.Machine {
		t.Errorf("mode: want Machine, got %s", h.Privilege())
	}
}

// Boundary scenario 7: EBREAK with dcsr.stopcount set pre-increments instret
// for the breakpoint instruction itself, since debug mode would otherwise
// inhibit its retirement from ever being counted.
func TestEBreakStopCountPreIncrementsInstret(t *testing.T) {
	isa := hart.ISASupervisor | hart.ISAUser
	h, _, bank := newTestHart(isa)

	bank.SetDCSREBreak(hart.Machine, true)
	bank.SetDCSRStopCount(true)

	before := bank.Instret()

	h.EBreak()

	if !h.InDebugMode() {
		t.Fatalf("setup: want debug mode entered via EBREAK")
	}

	if got := bank.Instret(); got != before+1 {
		t.Errorf("instret: want pre-incremented to %d, got %d", before+1, got)
	}
}
