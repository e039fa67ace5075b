package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rvhart/hart/internal/config"
	"github.com/rvhart/hart/internal/hart"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.Default()
	if cfg.ResetAddr != want.ResetAddr || cfg.MemorySize != want.MemorySize ||
		cfg.DebugPolicy != want.DebugPolicy || cfg.ISABits() != want.ISABits() {
		t.Errorf("want Default() for a missing file, got %+v", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hart.yml")
	yamlText := `
isa: ["S", "U", "V"]
locals: 2
reset_addr: 0x80000000
memory_size: 65536
debug_policy: interrupt
`
	if err := os.WriteFile(path, []byte(yamlText), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Locals != 2 {
		t.Errorf("Locals: want 2, got %d", cfg.Locals)
	}

	if cfg.MemorySize != 65536 {
		t.Errorf("MemorySize: want 65536, got %d", cfg.MemorySize)
	}

	want := hart.ISASupervisor | hart.ISAUser | hart.ISAVector
	if got := cfg.ISABits(); got != want {
		t.Errorf("ISABits: want %v, got %v", want, got)
	}

	if got := cfg.DebugEntryPolicy(); got != hart.DebugEntryInterrupt {
		t.Errorf("DebugEntryPolicy: want DebugEntryInterrupt, got %v", got)
	}
}

func TestToHartConfig(t *testing.T) {
	cfg := config.Default()

	hc := cfg.ToHartConfig()

	if hc.ISA != cfg.ISABits() {
		t.Errorf("ISA: want %v, got %v", cfg.ISABits(), hc.ISA)
	}

	if hc.ResetAddr != cfg.ResetAddr {
		t.Errorf("ResetAddr: want %#x, got %#x", cfg.ResetAddr, hc.ResetAddr)
	}

	if hc.DebugPolicy != hart.DebugEntryHalt {
		t.Errorf("DebugPolicy: want DebugEntryHalt, got %v", hc.DebugPolicy)
	}
}
