// Package transport defines the bus transport boundary consumed by the
// protocol packages, and provides an in-memory implementation for tests and
// tooling.
//
// The transport performs raw address-based quadlet-aligned reads and writes
// plus synchronous command/response exchanges. Bus enumeration, topology
// discovery and isochronous streaming live below this boundary and are out
// of scope.
//
// # Access splitting
//
// Hardware limits a single bus transaction to 512 bytes. Read and Write on
// the provided implementations split larger accesses into frame-sized
// transactions at consecutive addresses, the way device firmware expects.
//
// # Transport classes
//
// Implementations register themselves by class name via Register; runtime
// binaries open a transport with Open(class, cardID). The "mem" class is
// always available.
package transport
