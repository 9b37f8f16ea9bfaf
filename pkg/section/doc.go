// Package section implements the sectioned register protocol of the device
// family: named, offset-addressed regions of the register space with typed
// parameter sets, cached in memory and re-synchronized incrementally from
// hardware notification words.
package section
