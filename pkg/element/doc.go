// Package element bridges typed register parameters onto control-surface
// elements: flat identifiers with boolean, enumerated or integer values.
//
// Each Bridge owns a group of elements, translating between surface values
// and parameter fields with explicit tables whose order is the wire order.
// Validation happens before any bus transaction, and every mutating write
// runs inside the device lock bracket.
package element
