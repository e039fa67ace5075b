package hostsim_test

import (
	"context"
	"testing"
	"time"

	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
)

func TestMachineExecutableBounds(t *testing.T) {
	m := hostsim.NewMachine(16)

	if !m.Executable(0) {
		t.Errorf("addr 0: want executable")
	}

	if m.Executable(13) {
		t.Errorf("addr 13: want not executable (13+3 == 16, out of bounds)")
	}

	if m.Executable(20) {
		t.Errorf("addr 20: want not executable (beyond memory)")
	}
}

func TestMachineFetchTval(t *testing.T) {
	m := hostsim.NewMachine(16)
	m.StoreByte(4, 0x13)
	m.StoreByte(5, 0x00)
	m.StoreByte(6, 0x00)
	m.StoreByte(7, 0x00)

	if got, want := m.FetchTval(4), uint64(0x13); got != want {
		t.Errorf("FetchTval(4): want %#x, got %#x", want, got)
	}

	if got := m.FetchTval(100); got != 0 {
		t.Errorf("FetchTval out of bounds: want 0, got %#x", got)
	}
}

func TestMachineRunStopsOnCancel(t *testing.T) {
	m := hostsim.NewMachine(4096)
	bank := hostsim.NewBank(false, false)
	h := hart.NewHart(hart.Config{}, m, bank)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	steps := 0
	err := m.Run(ctx, h, func() error { steps++; return nil })

	if err != context.DeadlineExceeded {
		t.Errorf("Run error: want DeadlineExceeded, got %v", err)
	}

	if steps == 0 {
		t.Errorf("want at least one step executed before cancellation")
	}
}
