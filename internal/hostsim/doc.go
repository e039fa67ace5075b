// Package hostsim is a reference implementation of the collaborators
// internal/hart consumes only through interfaces: a flat-memory Host and a
// bit-packed CSR bank. It exists to drive internal/hart's engine end to end
// in tests and the hartsim command, the way internal/vm.LC3 is itself the
// memory controller, device map, and fetch loop for the elsie virtual
// machine. A production simulator kernel would replace this package with
// its own MMU-aware Host and a CSR bank matching its decoder's bit layout.
package hostsim
