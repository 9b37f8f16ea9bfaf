// Package models holds the device catalog: per-model records naming the
// vendor/model identity and the capability set that configures one generic
// engine instance. Capabilities are data tables consumed by shared protocol
// code, not per-device types; a model implements a subset of the capability
// interfaces and leaves the rest nil.
//
// The package also implements the AV/C Audio Subunit FUNCTION_BLOCK command
// (opcode 0xb8) the feature and selector capabilities are built on.
package models
