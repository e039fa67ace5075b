package hart

import (
	"encoding/binary"
	"errors"
)

// serialize.go is the Hart state save/restore format. Grounded on the
// versioned binary.BigEndian layout in the m68k chip's CPU.Serialize: a
// one-byte version tag, fixed-width fields in a fixed order, with the
// collaborators (Host, CSRAccessor) excluded, exactly as that package
// excludes bus references.
//
// Per spec.md section 6, the format covers ip[], netValue (including the
// resethaltreqS sample), the intState diagnostic struct, and whether a
// single-step timer is armed; the step timer's own TimerID is host-specific
// and is not itself serialized, only re-armed on restore.

// hartSerializeVersion is incremented whenever the binary layout changes.
const hartSerializeVersion = 1

var errSerializeBuffer = errors.New("hart: serialize buffer too small")
var errSerializeVersion = errors.New("hart: unsupported serialize version")

// SerializeSize returns the number of bytes Serialize writes, which depends
// on the number of local-interrupt words configured.
func (h *Hart) SerializeSize() int {
	return 1 /* version */ +
		1 /* privilege */ +
		1 /* debug, bool-packed */ +
		1 /* disable */ +
		2 /* len(ip) */ + 8*len(h.ip) +
		8 /* swip */ +
		1 /* lastException.Interrupt */ + 8 /* lastException.Code */ +
		1 /* net, bool-packed (now includes resethaltreqS) */ +
		1 /* intState: exclusiveTag/afErrorIn/afErrorOut, bool-packed */ +
		1 /* step-timer pending, bool-packed */ +
		3 * (1 + 8) /* extInt[User,Supervisor,Machine]: present flag + id */
}

// Serialize writes the full Hart state into buf, which must be at least
// SerializeSize() bytes. The Host and CSRAccessor collaborators are not
// included; callers are expected to serialize those separately and restore
// them before calling Deserialize.
func (h *Hart) Serialize(buf []byte) error {
	if len(buf) < h.SerializeSize() {
		return errSerializeBuffer
	}

	be := binary.BigEndian
	off := 0

	buf[off] = hartSerializeVersion
	off++

	buf[off] = uint8(h.privilege)
	off++

	buf[off] = boolByte(h.debug)
	off++

	buf[off] = uint8(h.disable)
	off++

	be.PutUint16(buf[off:], uint16(len(h.ip)))
	off += 2

	for _, w := range h.ip {
		be.PutUint64(buf[off:], w)
		off += 8
	}

	be.PutUint64(buf[off:], h.swip)
	off += 8

	buf[off] = boolByte(h.lastException.Interrupt)
	off++
	be.PutUint64(buf[off:], uint64(h.lastException.Code))
	off += 8

	buf[off] = boolByte(h.net.reset)<<0 |
		boolByte(h.net.nmi)<<1 |
		boolByte(h.net.haltreq)<<2 |
		boolByte(h.net.resethaltreq)<<3 |
		boolByte(h.net.resethaltreqS)<<4
	off++

	buf[off] = boolByte(h.state.exclusiveTag)<<0 |
		boolByte(h.state.afErrorIn)<<1 |
		boolByte(h.state.afErrorOut)<<2
	off++

	buf[off] = boolByte(h.stepTimer != 0)
	off++

	for _, mode := range []Privilege{User, Supervisor, Machine} {
		id, ok := h.extInt[mode]

		buf[off] = boolByte(ok)
		off++
		be.PutUint64(buf[off:], id)
		off += 8
	}

	return nil
}

// Deserialize restores Hart state from buf, which must have been produced
// by Serialize at a compatible version. The Host and CSRAccessor
// collaborators, observer list, and logger are left unchanged: callers
// restore those separately, then call Deserialize.
func (h *Hart) Deserialize(buf []byte) error {
	if len(buf) < 6 {
		return errSerializeBuffer
	}

	if buf[0] != hartSerializeVersion {
		return errSerializeVersion
	}

	be := binary.BigEndian
	off := 1

	h.privilege = Privilege(buf[off])
	off++

	h.debug = buf[off] != 0
	off++

	h.disable = DisableSet(buf[off])
	off++

	n := int(be.Uint16(buf[off:]))
	off += 2

	if len(buf) < off+8*n+8+9+1+1+1+3*9 {
		return errSerializeBuffer
	}

	h.ip = make([]uint64, n)
	for i := range h.ip {
		h.ip[i] = be.Uint64(buf[off:])
		off += 8
	}

	h.swip = be.Uint64(buf[off:])
	off += 8

	h.lastException.Interrupt = buf[off] != 0
	off++
	h.lastException.Code = ExceptionCode(be.Uint64(buf[off:]))
	off += 8

	netBits := buf[off]
	off++
	h.net = netValue{
		reset:         netBits&(1<<0) != 0,
		nmi:           netBits&(1<<1) != 0,
		haltreq:       netBits&(1<<2) != 0,
		resethaltreq:  netBits&(1<<3) != 0,
		resethaltreqS: netBits&(1<<4) != 0,
	}

	flagBits := buf[off]
	off++
	h.state = intState{
		exclusiveTag: flagBits&(1<<0) != 0,
		afErrorIn:    flagBits&(1<<1) != 0,
		afErrorOut:   flagBits&(1<<2) != 0,
	}

	stepTimerPending := buf[off] != 0
	off++

	h.extInt = make(map[Privilege]uint64, 3)

	for _, mode := range []Privilege{User, Supervisor, Machine} {
		present := buf[off] != 0
		off++
		id := be.Uint64(buf[off:])
		off += 8

		if present {
			h.extInt[mode] = id
		}
	}

	if h.stepTimer != 0 {
		h.host.TimerDelete(h.stepTimer)
		h.stepTimer = 0
	}

	if stepTimerPending {
		h.stepTimer = h.host.TimerCreate(func() {
			h.enterDM(DebugStep)
		})
		h.host.TimerSet(h.stepTimer, 1)
	}

	// Restore finishes by running the arbiter, so any interrupt that was
	// pending-and-enabled at save time but not yet dispatched is taken
	// immediately rather than waiting for the next port write or fetch.
	h.Arbitrate()

	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}
