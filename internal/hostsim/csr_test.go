package hostsim_test

import (
	"testing"

	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
)

func TestBankDelegationGatedByHasSupervisorUser(t *testing.T) {
	b := hostsim.NewBank(false, false)

	b.SetEDeleg(hart.Machine, 0xff)
	b.SetIDeleg(hart.Machine, 0xff)

	if got := b.EDeleg(hart.Machine); got != 0 {
		t.Errorf("medeleg: want forced 0 without supervisor, got %#x", got)
	}

	if got := b.IDeleg(hart.Machine); got != 0 {
		t.Errorf("mideleg: want forced 0 without supervisor, got %#x", got)
	}
}

func TestBankSedelegGatedByHasUser(t *testing.T) {
	b := hostsim.NewBank(true, false)

	b.SetEDeleg(hart.Supervisor, 0xff)

	if got := b.EDeleg(hart.Supervisor); got != 0 {
		t.Errorf("sedeleg: want forced 0 without user mode, got %#x", got)
	}

	// Machine-mode delegation is unaffected by the absence of user mode.
	b.SetEDeleg(hart.Machine, 0x3)
	if got := b.EDeleg(hart.Machine); got != 0x3 {
		t.Errorf("medeleg: want 0x3, got %#x", got)
	}
}

func TestBankMstatusBitFields(t *testing.T) {
	b := hostsim.NewBank(true, true)

	b.SetMPP(hart.Supervisor)
	if got := b.MPP(); got != hart.Supervisor {
		t.Errorf("MPP: want Supervisor, got %s", got)
	}

	b.SetSPP(hart.Supervisor)
	if got := b.SPP(); got != hart.Supervisor {
		t.Errorf("SPP: want Supervisor, got %s", got)
	}

	b.SetSPP(hart.User)
	if got := b.SPP(); got != hart.User {
		t.Errorf("SPP: want User, got %s", got)
	}

	b.SetMIE(true)
	b.SetMPIE(false)
	if !b.MIE() || b.MPIE() {
		t.Errorf("MIE/MPIE: want true/false, got %v/%v", b.MIE(), b.MPIE())
	}
}

func TestBankCauseRoundTrip(t *testing.T) {
	b := hostsim.NewBank(true, true)

	want := hart.Interrupted(hart.MExternalInterrupt)
	b.SetCause(hart.Machine, want)

	if got := b.Cause(hart.Machine); got != want {
		t.Errorf("Cause round trip: want %s, got %s", want, got)
	}

	want = hart.Exception(hart.IllegalInstruction)
	b.SetCause(hart.Supervisor, want)

	if got := b.Cause(hart.Supervisor); got != want {
		t.Errorf("Cause round trip: want %s, got %s", want, got)
	}
}

func TestBankInstret(t *testing.T) {
	a := hostsim.NewBank(true, true)
	b := hostsim.NewBank(true, true)

	a.IncrementInstructions()
	a.IncrementInstructions()

	if a.Instret() != 2 {
		t.Errorf("a.Instret(): want 2, got %d", a.Instret())
	}

	if b.Instret() != 0 {
		t.Errorf("b.Instret(): want 0 (independent counters), got %d", b.Instret())
	}
}
