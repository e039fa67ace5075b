package hostsim_test

import (
	"testing"

	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
)

func TestCLINTFiresOnMtimeReachingMtimecmp(t *testing.T) {
	machine := hostsim.NewMachine(4096)
	bank := hostsim.NewBank(false, false)
	h := hart.NewHart(hart.Config{}, machine, bank)

	bank.SetIE(hart.Machine, 1<<uint(hart.MTimerInterrupt))
	bank.SetMIE(true)

	clint := hostsim.NewCLINT(h)
	clint.SetMtimecmp(3)

	for i := 0; i < 3; i++ {
		clint.Tick()
	}

	if clint.Mtime() != 3 {
		t.Fatalf("mtime: want 3, got %d", clint.Mtime())
	}

	cause := bank.Cause(hart.Machine)
	if !cause.Interrupt || cause.Code != hart.MTimerInterrupt {
		t.Errorf("want a dispatched machine-timer interrupt, got %s", cause)
	}
}

func TestCLINTMSIP(t *testing.T) {
	machine := hostsim.NewMachine(4096)
	bank := hostsim.NewBank(false, false)
	h := hart.NewHart(hart.Config{}, machine, bank)

	bank.SetIE(hart.Machine, 1<<uint(hart.MSoftwareInterrupt))
	bank.SetMIE(true)

	clint := hostsim.NewCLINT(h)
	clint.SetMSIP(true)

	if !clint.MSIP() {
		t.Errorf("MSIP: want true")
	}

	cause := bank.Cause(hart.Machine)
	if !cause.Interrupt || cause.Code != hart.MSoftwareInterrupt {
		t.Errorf("want a dispatched machine-software interrupt, got %s", cause)
	}
}
