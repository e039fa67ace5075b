package hart

// exctable.go is the static Exception Table: a pure data table describing
// every architectural trap this core knows about, independent of which ISA
// features a particular hart is configured with.

import "fmt"

// Descriptor describes one architectural trap.
type Descriptor struct {
	Name        string
	Code        ExceptionCode
	Interrupt   bool
	RequiredISA ISA // zero means always implemented
	Description string
}

// exceptions is the append-only table of standard synchronous exceptions.
// Terminated implicitly by the slice's length; no sentinel value is needed
// in Go the way the C macro table used one.
var exceptions = [...]Descriptor{
	{"instruction-address-misaligned", InstructionAddressMisaligned, false, 0,
		"fetch address is not aligned to an instruction boundary"},
	{"instruction-access-fault", InstructionAccessFault, false, 0,
		"fetch address is not executable"},
	{"illegal-instruction", IllegalInstruction, false, 0,
		"the decoder could not decode the instruction word"},
	{"breakpoint", Breakpoint, false, 0,
		"EBREAK executed outside of debug mode, or not routed to debug mode"},
	{"load-address-misaligned", LoadAddressMisaligned, false, 0,
		"load address is not naturally aligned"},
	{"load-access-fault", LoadAccessFault, false, 0,
		"load address is not readable"},
	{"store-amo-address-misaligned", StoreAMOAddressMisaligned, false, 0,
		"store/AMO address is not naturally aligned"},
	{"store-amo-access-fault", StoreAMOAccessFault, false, 0,
		"store/AMO address is not writable"},
	{"ecall-from-u", ECallFromU, false, ISAUser,
		"ECALL executed in user mode"},
	{"ecall-from-s", ECallFromS, false, ISASupervisor,
		"ECALL executed in supervisor mode"},
	{"ecall-from-h", ECallFromH, false, ISAHypervisor,
		"ECALL executed in hypervisor mode"},
	{"ecall-from-m", ECallFromM, false, 0,
		"ECALL executed in machine mode"},
	{"instruction-page-fault", InstructionPageFault, false, ISASupervisor,
		"fetch address failed the page-table walk"},
	{"load-page-fault", LoadPageFault, false, ISASupervisor,
		"load address failed the page-table walk"},
	{"store-amo-page-fault", StoreAMOPageFault, false, ISASupervisor,
		"store/AMO address failed the page-table walk"},
}

// interrupts is the append-only table of standard interrupts.
var interrupts = [...]Descriptor{
	{"u-software-interrupt", USoftwareInterrupt, true, ISAUser | ISAUserIntr, "user software interrupt"},
	{"s-software-interrupt", SSoftwareInterrupt, true, ISASupervisor, "supervisor software interrupt"},
	{"m-software-interrupt", MSoftwareInterrupt, true, 0, "machine software interrupt"},
	{"u-timer-interrupt", UTimerInterrupt, true, ISAUser | ISAUserIntr, "user timer interrupt"},
	{"s-timer-interrupt", STimerInterrupt, true, ISASupervisor, "supervisor timer interrupt"},
	{"m-timer-interrupt", MTimerInterrupt, true, 0, "machine timer interrupt"},
	{"u-external-interrupt", UExternalInterrupt, true, ISAUser | ISAUserIntr, "user external interrupt"},
	{"s-external-interrupt", SExternalInterrupt, true, ISASupervisor, "supervisor external interrupt"},
	{"m-external-interrupt", MExternalInterrupt, true, 0, "machine external interrupt"},
}

// implementedExceptions returns the standard exceptions and interrupts whose
// RequiredISA bits are all present in isa, plus any derived-model and local
// interrupt contributions. It is the backing data for the lazily-built
// exception cache in hart.go.
func implementedExceptions(isa ISA, locals int, derived []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(exceptions)+len(interrupts)+len(derived)+locals)

	for _, d := range exceptions {
		if isa&d.RequiredISA == d.RequiredISA {
			out = append(out, d)
		}
	}

	for _, d := range interrupts {
		if isa&d.RequiredISA == d.RequiredISA {
			out = append(out, d)
		}
	}

	out = append(out, derived...)

	for i := 0; i < locals; i++ {
		out = append(out, Descriptor{
			Name:        fmt.Sprintf("local-interrupt-%d", i),
			Code:        ExceptionCode(16 + i),
			Interrupt:   true,
			Description: "implementation-defined local interrupt",
		})
	}

	return out
}
