package hart

// observers.go is the derived-model callback list: an ordered fan-out of
// observer hooks notified on trap entry, ERET, and reset. Grounded directly
// on internal/vm/disp.go's listener pattern (list []func(uint16), notify()),
// generalized from a single event type to the four hook slots a derived
// model may care about.

// Observer holds the optional notification functions a derived model may
// register. Any field may be left nil.
type Observer struct {
	// TrapNotifier is called after trap entry has fully committed (CSR
	// writes, mode switch, PC set), before the next fetch.
	TrapNotifier func(cause Cause, mode Privilege)

	// ERETNotifier is called after an MRET/SRET/URET/DRET has fully
	// committed.
	ERETNotifier func(mode Privilege, pc uint64)

	// ResetNotifier is called at the end of riscvReset.
	ResetNotifier func()

	// FirstException, if set, contributes additional exception
	// descriptors to the lazily-built exception cache.
	FirstException func() []Descriptor
}

// observerList is an ordered collection of Observer records. Iteration order
// is registration order; there are no cycles to worry about since observers
// are plain function values, not references back into the hart.
type observerList struct {
	observers []Observer
}

func (l *observerList) register(o Observer) {
	l.observers = append(l.observers, o)
}

func (l *observerList) notifyTrap(cause Cause, mode Privilege) {
	for _, o := range l.observers {
		if o.TrapNotifier != nil {
			o.TrapNotifier(cause, mode)
		}
	}
}

func (l *observerList) notifyERET(mode Privilege, pc uint64) {
	for _, o := range l.observers {
		if o.ERETNotifier != nil {
			o.ERETNotifier(mode, pc)
		}
	}
}

func (l *observerList) notifyReset() {
	for _, o := range l.observers {
		if o.ResetNotifier != nil {
			o.ResetNotifier()
		}
	}
}

func (l *observerList) derivedExceptions() []Descriptor {
	var out []Descriptor

	for _, o := range l.observers {
		if o.FirstException != nil {
			out = append(out, o.FirstException()...)
		}
	}

	return out
}
