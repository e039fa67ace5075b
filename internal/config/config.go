// Package config loads hart and machine configuration from YAML files.
// Grounded on tinyrange-cc's cmd/ccapp/site_config.go LoadSiteConfig
// pattern: read the file if present, parse with gopkg.in/yaml.v3, and fall
// back to documented defaults rather than failing when the file is absent.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rvhart/hart/internal/hart"
)

// HartConfig is the on-disk configuration for one simulated hart.
type HartConfig struct {
	ISA                       []string `yaml:"isa"`
	Locals                    int      `yaml:"locals"`
	ResetAddr                 uint64   `yaml:"reset_addr"`
	NMIAddr                   uint64   `yaml:"nmi_addr"`
	MemorySize                int      `yaml:"memory_size"`
	DebugPolicy               string   `yaml:"debug_policy"` // "halt" or "interrupt"
	LegacyVectorMode          bool     `yaml:"legacy_vector_mode"`
	TValInstructionCode       bool     `yaml:"tval_instruction_code"`
	ClearExclusiveOnERET      bool     `yaml:"clear_exclusive_on_eret"`
	MPRVClearOnLowerPrivilege bool     `yaml:"mprv_clear_on_lower_privilege"`
}

// Default returns the configuration used when no file is found: a hart with
// supervisor mode, user mode and compressed instructions, 1MiB of memory,
// reset vector at 0x1000.
func Default() HartConfig {
	return HartConfig{
		ISA:                       []string{"S", "U", "C"},
		Locals:                    0,
		ResetAddr:                 0x1000,
		NMIAddr:                   0x0,
		MemorySize:                1 << 20,
		DebugPolicy:               "halt",
		ClearExclusiveOnERET:      true,
		MPRVClearOnLowerPrivilege: true,
	}
}

// Load reads and parses path. If path does not exist, Default is returned
// with no error, matching LoadSiteConfig's "missing file is not a failure"
// behavior.
func Load(path string) (HartConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}

// ISABits converts the configured feature-name list into a hart.ISA bitset.
func (c HartConfig) ISABits() hart.ISA {
	var isa hart.ISA

	for _, name := range c.ISA {
		switch name {
		case "S":
			isa |= hart.ISASupervisor
		case "U":
			isa |= hart.ISAUser
		case "N":
			isa |= hart.ISAUserIntr
		case "H":
			isa |= hart.ISAHypervisor
		case "V":
			isa |= hart.ISAVector
		case "C":
			isa |= hart.ISACompressed
		}
	}

	return isa
}

// DebugEntryPolicy converts the configured debug_policy string.
func (c HartConfig) DebugEntryPolicy() hart.DebugEntryPolicy {
	if c.DebugPolicy == "interrupt" {
		return hart.DebugEntryInterrupt
	}

	return hart.DebugEntryHalt
}

// ToHartConfig converts the parsed file into a hart.Config.
func (c HartConfig) ToHartConfig() hart.Config {
	return hart.Config{
		ISA:                       c.ISABits(),
		Locals:                    c.Locals,
		ResetAddr:                 c.ResetAddr,
		NMIAddr:                   c.NMIAddr,
		DebugPolicy:               c.DebugEntryPolicy(),
		LegacyVectorMode:          c.LegacyVectorMode,
		TValInstructionCode:       c.TValInstructionCode,
		ClearExclusiveOnERET:      c.ClearExclusiveOnERET,
		MPRVClearOnLowerPrivilege: c.MPRVClearOnLowerPrivilege,
	}
}
