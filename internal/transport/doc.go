// Package transport provides packet-sized byte channels to a DLPC350
// controller.
//
// Every adapter exchanges fixed 64-byte packets. The protocol package frames
// and fragments transactions on top of this interface and never sees the
// underlying medium.
//
// # Adapters
//
//   - HID: the LightCrafter 4500 USB HID interface (VID 0x0451, PID 0x6401)
//   - Serial: a UART bridge that forwards raw 64-byte packets
//   - WebSocket: a remote bridge carrying one packet per binary message
//
// Wrap any adapter with NewLogged to trace packets through the zap logger.
//
// # Connection Lifecycle
//
// A transport is opened once at startup and closed at shutdown. A failed
// Send or Receive (other than a read timeout) closes the adapter, after
// which IsConnected reports false. There is no automatic reconnect.
package transport
