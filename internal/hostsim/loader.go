package hostsim

import (
	"errors"
	"fmt"

	"github.com/rvhart/hart/internal/encoding"
	"github.com/rvhart/hart/internal/log"
)

// loader.go loads a binary image into a Machine. Grounded on
// internal/vm/loader.go's Loader, generalized from the LC-3's 16-bit-word
// object format to raw binary and Intel-Hex byte streams addressed into
// flat memory.

// ErrLoader is a wrapped error returned when an image cannot be loaded.
var ErrLoader = errors.New("loader error")

// Loader copies binary images into a Machine's address space.
type Loader struct {
	m   *Machine
	log *log.Logger
}

// NewLoader creates a loader for m.
func NewLoader(m *Machine) *Loader {
	return &Loader{m: m, log: log.DefaultLogger()}
}

// LoadRaw copies data verbatim starting at addr.
func (l *Loader) LoadRaw(addr uint64, data []byte) error {
	if addr+uint64(len(data)) > uint64(len(l.m.mem)) {
		return fmt.Errorf("%w: image does not fit in address space", ErrLoader)
	}

	copy(l.m.mem[addr:], data)
	l.log.Debug("loaded raw image", "addr", addr, "len", len(data))

	return nil
}

// LoadHex decodes an Intel-Hex text image and loads each segment at its
// recorded address.
func (l *Loader) LoadHex(text []byte) (int, error) {
	var enc encoding.HexEncoding

	if err := enc.UnmarshalText(text); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoader, err)
	}

	count := 0

	for _, seg := range enc.Code {
		if err := l.LoadRaw(seg.Addr, seg.Data); err != nil {
			return count, err
		}

		count += len(seg.Data)
	}

	return count, nil
}

// LoadEntry loads data at addr and sets the machine's program counter to
// addr, the common case of loading a hart's reset image.
func (l *Loader) LoadEntry(addr uint64, data []byte) error {
	if err := l.LoadRaw(addr, data); err != nil {
		return err
	}

	l.m.SetPC(addr)

	return nil
}
