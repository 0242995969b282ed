// Package protocol implements the DLPC350 USB transaction protocol.
//
// The controller exchanges fixed-size 64-byte packets with the host. A
// transaction frame is laid out as:
//
//	[0]     flags          destination:3 reserved:2 error:1 reply:1 rw:1 (LSB first)
//	[1]     sequence       always 0
//	[2-3]   length         payload length (little-endian uint16)
//	[4-5]   opcode         CMD3, CMD2 (short commands)
//	[6+]    parameters     command parameters
//
// Bulk writes (mailbox data) carry raw bytes after the opcode and may be
// longer than one packet. The serialized frame is cut into 64-byte packets:
// the first packet holds the header and up to 60 payload bytes, every later
// packet holds up to 64 overflow bytes.
//
// Replies are decoded from exactly one packet. The reply payload starts right
// after the 4-byte header and holds at most 60 bytes. Opcodes whose reply
// would span several packets are not supported.
//
// # Usage Example
//
//	codec := protocol.NewCodec(t)
//	frame := protocol.Encode(protocol.Read, 0x1A0A, nil)
//	data, err := codec.Transact(frame)
//	if err != nil {
//	    if protocol.IsDeviceRejected(err) {
//	        // error bit set by the controller
//	    }
//	    return err
//	}
//
// # Error Handling
//
// Every failure is reported as *Error carrying an ErrorType:
//   - TransportFailure: send/receive failure or read timeout
//   - DeviceRejected: reply error bit set or empty read reply
//   - PreconditionViolation: the caller broke a documented invariant
//   - Capacity: a frame or sequence exceeds a fixed device limit
//
// # Thread Safety
//
// Codec serializes transactions with a mutex; the protocol has no
// multiplexing, so a second transaction waits for the previous reply.
package protocol
