// Package avc implements the AV/C command/response transaction client used
// by devices built around a unit/subunit command protocol.
//
// A transaction sends one opcode with an operand buffer to a unit or subunit
// address and classifies the response code returned by the device. Control
// commands expect Accepted and status commands expect ImplementedStable; a
// small, fixed per-opcode quirk table additionally admits one reserved code
// for opcodes whose firmware is known to answer incorrectly.
//
// The client is stateless between calls and performs no retries: a response
// code outside the policy is surfaced as an error carrying the opcode and
// the code.
package avc
