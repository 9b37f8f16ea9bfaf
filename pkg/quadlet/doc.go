// Package quadlet implements serialization between native values and the
// big-endian 32-bit words used by the device register space.
//
// The quadlet (4 bytes) is the atomic transfer unit of the bus. Every scalar
// occupies exactly one quadlet regardless of its native width, so a bool and
// a uint8 both consume 4 bytes on the wire.
//
// # Text regions
//
// Device firmware stores text with the bytes of each quadlet reversed
// (little-endian byte order inside a big-endian word). Label lists pack
// multiple names into one region, separated by '\' and terminated by "\\",
// with the remainder of the region NUL padded. ParseLabels/BuildLabels and
// ParseLabel/BuildLabel round-trip both layouts.
//
// The package is pure: it never touches a transport and is independently
// testable.
package quadlet
