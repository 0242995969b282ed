// Package emulator provides an in-process DLPC350 controller.
//
// Device implements transport.Transport: packets sent to it are reassembled
// into frames, executed against a simulated register file, and answered
// with one reply packet. The mailbox and both lookup tables are modelled so
// uploads can be inspected, and the validation register is computed from
// the uploaded sequence and the configured pattern period.
//
// Test hooks inject failures per opcode (error bit in the reply, or no reply
// at all), delay read-back of mode changes, and record every executed frame.
//
// Device is safe for concurrent use, so it can also sit behind the network
// bridge in package server.
package emulator
