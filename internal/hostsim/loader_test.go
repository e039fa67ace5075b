package hostsim_test

import (
	"errors"
	"testing"

	"github.com/rvhart/hart/internal/hostsim"
)

func TestLoaderLoadRaw(t *testing.T) {
	m := hostsim.NewMachine(16)
	l := hostsim.NewLoader(m)

	if err := l.LoadRaw(4, []byte{1, 2, 3}); err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}

	if got := m.LoadByte(4); got != 1 {
		t.Errorf("mem[4]: want 1, got %d", got)
	}
}

func TestLoaderLoadRawOutOfBounds(t *testing.T) {
	m := hostsim.NewMachine(4)
	l := hostsim.NewLoader(m)

	err := l.LoadRaw(2, []byte{1, 2, 3})
	if !errors.Is(err, hostsim.ErrLoader) {
		t.Fatalf("want ErrLoader, got %v", err)
	}
}

func TestLoaderLoadEntrySetsPC(t *testing.T) {
	m := hostsim.NewMachine(16)
	l := hostsim.NewLoader(m)

	if err := l.LoadEntry(8, []byte{0xde, 0xad}); err != nil {
		t.Fatalf("LoadEntry: %v", err)
	}

	if m.PC() != 8 {
		t.Errorf("pc: want 8, got %#x", m.PC())
	}

	if got := m.LoadByte(8); got != 0xde {
		t.Errorf("mem[8]: want 0xde, got %#x", got)
	}
}

func TestLoaderLoadHex(t *testing.T) {
	m := hostsim.NewMachine(256)
	l := hostsim.NewLoader(m)

	image := ":03000000010203f7\n:00000001ff\n"

	n, err := l.LoadHex([]byte(image))
	if err != nil {
		t.Fatalf("LoadHex: %v", err)
	}

	if n != 3 {
		t.Errorf("bytes loaded: want 3, got %d", n)
	}

	if got := m.LoadByte(0); got != 1 {
		t.Errorf("mem[0]: want 1, got %d", got)
	}

	if got := m.LoadByte(2); got != 3 {
		t.Errorf("mem[2]: want 3, got %d", got)
	}
}
