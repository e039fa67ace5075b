/*
Package hart implements the trap-and-interrupt subsystem of a RISC-V hart:
exception entry and return, interrupt delegation and arbitration, debug-mode
transitions, WFI, NMI, reset, and the external signal ports a surrounding
simulation host uses to drive all of the above.

The package does not decode or execute ordinary instructions, translate
virtual addresses, or define how CSR bits are packed into a register value —
those are the job of the host (see [Host]) and the CSR bank (see
[CSRAccessor]), both of which this package only consumes through interfaces.
A reference implementation of both lives in package hostsim.

# Traps are not Go errors

Architectural traps are not represented as Go error values: TakeException
and the convenience entry points (IllegalInstruction, ECall, MemoryFault,
...) perform trap entry directly and return nothing. A RISC-V trap always
knows its own handler address (it is read straight out of [CSRAccessor]'s
tvec), so there is no separate dispatch table: TakeException both classifies
the trap and performs entry in one call.

# Suspension points

A [Hart] does not run a loop of its own. The host steps it: before every
fetch the host calls FetchGate, and on MRET/SRET/URET/DRET or a synchronous
exception the host calls the trap engines directly. Port callbacks
(Reset, NMI, HaltReq, SetInterruptPending, ...) may be invoked by the host at
any of those suspension points.
*/
package hart
